package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/plantbill/internal/calendar"
	"github.com/christopherklint97/plantbill/internal/config"
	"github.com/christopherklint97/plantbill/internal/eph"
	"github.com/christopherklint97/plantbill/internal/logging"
	"github.com/christopherklint97/plantbill/internal/remote"
	"github.com/christopherklint97/plantbill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "plantbill",
	Short: "Timesheet reconciliation and EPH billing for plant hire",
	Long: "plantbill reconciles operator, plant manager and admin timesheet submissions, " +
		"converts hours into billable hours per day type and aggregates EPH totals per asset.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/plantbill/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "Database file (overrides store.path)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env bundles what every command needs.
type env struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	return &env{
		cfg:        cfg,
		configPath: path,
		logger:     logging.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format),
	}, nil
}

func (e *env) openStore() (*store.DB, error) {
	db, err := store.Open(e.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (e *env) remoteClient() (*remote.Client, error) {
	if e.cfg.Remote.URL == "" {
		return nil, fmt.Errorf("remote URL not configured, run 'plantbill config' or set PLANTBILL_REMOTE_URL")
	}
	return remote.NewClient(e.cfg.Remote.APIKey, e.cfg.Remote.URL, e.cfg.CacheTTL(), e.logger), nil
}

// holidays merges the configured feed and static dates that fall in rng.
func (e *env) holidays(ctx context.Context, rng eph.DateRange) (calendar.Holidays, error) {
	h := calendar.Holidays{}
	if src := e.cfg.Holidays.Source; src != "" {
		fetched, err := calendar.FetchHolidays(ctx, src, rng)
		if err != nil {
			return nil, fmt.Errorf("loading holidays: %w", err)
		}
		h = fetched
	}
	for _, d := range e.cfg.Holidays.Dates {
		date, err := parseISODate(d)
		if err != nil {
			return nil, fmt.Errorf("holidays.dates: %w", err)
		}
		if rng.Contains(date) {
			h.Add(date, "Public holiday")
		}
	}
	e.logger.Debug("holidays loaded", "range", rng.String(), "count", len(h))
	return h, nil
}
