package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/notify"
	"github.com/christopherklint97/plantbill/internal/report"
	"github.com/christopherklint97/plantbill/internal/runner"
	"github.com/christopherklint97/plantbill/internal/tui"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate billable hours and EPH totals",
	RunE:  runCalc,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review EPH totals interactively",
	RunE:  runReview,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the JSON report",
	RunE:  runSchema,
}

func addCalcFlags(cmd *cobra.Command) {
	addRangeFlags(cmd)
	cmd.Flags().StringSlice("entity", nil, "Entities to calculate (default: every entity with timesheets)")
	cmd.Flags().String("method", "", "Preview with this billing method on every day type (PER_HOUR or MINIMUM_BILLING), without saving")
}

func init() {
	addCalcFlags(calcCmd)
	calcCmd.Flags().String("format", "", "Output format: text, json or xlsx (default from report.format)")
	calcCmd.Flags().StringP("out", "o", "", "Write the report to this file")
	calcCmd.Flags().Bool("notify", false, "Send a desktop notification when the report is written")

	addCalcFlags(reviewCmd)

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(schemaCmd)
}

// calculation returns a function running the calculation selected by the
// command's flags.
func calculation(cmd *cobra.Command, e *env, src runner.Source) (func(ctx context.Context) (*runner.Result, error), error) {
	rng, err := rangeFromFlags(cmd, time.Now())
	if err != nil {
		return nil, err
	}

	bc, err := e.cfg.BillingConfig()
	if err != nil {
		return nil, err
	}
	if m, _ := cmd.Flags().GetString("method"); m != "" {
		method, err := billing.ParseMethod(m)
		if err != nil {
			return nil, err
		}
		bc = billing.ApplyMethodToAllDayTypes(bc, method)
	}

	entities, _ := cmd.Flags().GetStringSlice("entity")

	return func(ctx context.Context) (*runner.Result, error) {
		holidays, err := e.holidays(ctx, rng)
		if err != nil {
			return nil, err
		}
		return runner.New(src, e.logger).Run(ctx, runner.Options{
			Range:     rng,
			EntityIDs: entities,
			Billing:   bc,
			Holidays:  holidays,
			Workers:   e.cfg.Report.Workers,
		})
	}, nil
}

func runCalc(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag == "" {
		formatFlag = e.cfg.Report.Format
	}
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")
	if format == report.FormatXLSX && outPath == "" {
		return fmt.Errorf("xlsx output needs --out")
	}

	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	calc, err := calculation(cmd, e, db)
	if err != nil {
		return err
	}
	res, err := calc(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := report.Write(w, format, res); err != nil {
		return err
	}

	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s.\n", outPath)
		notifyFlag, _ := cmd.Flags().GetBool("notify")
		n := notify.New(notifyFlag || e.cfg.Notifications.Enabled, e.logger)
		n.Send("plantbill", fmt.Sprintf("EPH report for %s written to %s", res.Range, outPath))
	}
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	calc, err := calculation(cmd, e, db)
	if err != nil {
		return err
	}

	app := tui.NewApp(calc)
	p := tea.NewProgram(app, tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := report.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
