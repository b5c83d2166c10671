package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/runner"
	"github.com/christopherklint97/plantbill/internal/store"
	"github.com/christopherklint97/plantbill/internal/timesheet"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import raw timesheet documents from JSON files (- for stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull timesheets and asset rates from the remote document API",
	RunE:  runSync,
}

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage asset hire rates",
}

var assetSetCmd = &cobra.Command{
	Use:   "set ID",
	Short: "Create or update an asset's rates",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetSet,
}

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets and their rates",
	RunE:  runAssetList,
}

func init() {
	addRangeFlags(syncCmd)
	syncCmd.Flags().String("entity", "", "Only sync this entity")

	assetSetCmd.Flags().String("name", "", "Asset name")
	assetSetCmd.Flags().Float64("dry", 0, "Dry hire rate per billable hour")
	assetSetCmd.Flags().Float64("wet", 0, "Wet hire rate per billable hour")
	assetSetCmd.Flags().Float64("daily", 0, "Daily rate")

	assetCmd.AddCommand(assetSetCmd)
	assetCmd.AddCommand(assetListCmd)

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(assetCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	total := 0
	for _, path := range args {
		docs, err := readDocuments(cmd, path)
		if err != nil {
			return err
		}
		ids, err := db.InsertDocuments(cmd.Context(), "import", docs)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		e.logger.Info("imported documents", "file", path, "count", len(ids))
		total += len(ids)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d document(s).\n", total)
	return nil
}

func readDocuments(cmd *cobra.Command, path string) ([]timesheet.Document, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	docs, err := timesheet.DecodeDocuments(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return docs, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	rng, err := rangeFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}
	entity, _ := cmd.Flags().GetString("entity")

	client, err := e.remoteClient()
	if err != nil {
		return err
	}
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := runner.New(db, e.logger).Sync(cmd.Context(), client, db, entity, rng.StartDate(), rng.EndDate())
	if err != nil {
		return fmt.Errorf("syncing: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d document(s) and %d asset(s) for %s.\n", stats.Documents, stats.Assets, rng)
	return nil
}

func runAssetSet(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	a := store.Asset{ID: args[0]}
	if existing, err := db.GetAsset(ctx, a.ID); err != nil {
		return err
	} else if existing != nil {
		a = *existing
	}

	if cmd.Flags().Changed("name") {
		a.Name, _ = cmd.Flags().GetString("name")
	}
	a.Rates = ratesFromFlags(cmd, a.Rates)

	if err := db.UpsertAsset(ctx, a); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (rate %.2f).\n", a.ID, a.Rates.Resolve())
	return nil
}

// ratesFromFlags overrides the rates whose flags were given.
func ratesFromFlags(cmd *cobra.Command, r eph.Rates) eph.Rates {
	set := func(name string, dst **float64) {
		if !cmd.Flags().Changed(name) {
			return
		}
		v, _ := cmd.Flags().GetFloat64(name)
		*dst = &v
	}
	set("dry", &r.DryRate)
	set("wet", &r.WetRate)
	set("daily", &r.DailyRate)
	return r
}

func runAssetList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	assets, err := db.ListAssets(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(assets) == 0 {
		fmt.Fprintln(out, "No assets found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d assets:\n\n", len(assets))
	for _, a := range assets {
		fmt.Fprintf(out, "  %-12s %-24s dry %8s  wet %8s  daily %8s\n",
			a.ID, a.Name, rate(a.Rates.DryRate), rate(a.Rates.WetRate), rate(a.Rates.DailyRate))
	}
	return nil
}

func rate(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *p)
}
