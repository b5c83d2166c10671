package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/plantbill/internal/billing"
	"github.com/christopherklint97/plantbill/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

var setMethodCmd = &cobra.Command{
	Use:   "set-method METHOD",
	Short: "Set the billing method of every day type (PER_HOUR or MINIMUM_BILLING)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetMethod,
}

func init() {
	configCmd.AddCommand(setMethodCmd)
	rootCmd.AddCommand(configCmd)
}

const defaultConfigFile = `[store]
# path = "~/.config/plantbill/plantbill.db"

[remote]
url = ""
api_key = ""
cache_ttl_minutes = 10

[billing.weekday]
enabled = true
billing_method = "PER_HOUR"
min_hours = 0.0
rate_multiplier = 1.0

[billing.saturday]
enabled = true
billing_method = "PER_HOUR"
min_hours = 0.0
rate_multiplier = 1.0

[billing.sunday]
enabled = true
billing_method = "PER_HOUR"
min_hours = 0.0
rate_multiplier = 1.0

[billing.public_holiday]
enabled = true
billing_method = "PER_HOUR"
min_hours = 0.0
rate_multiplier = 1.0

[billing.rain_day]
enabled = true
min_hours = 0.0
threshold_hours = 0.0

[billing.breakdown]
enabled = true

[holidays]
source = ""
dates = []

[report]
format = "text"
workers = 4

[log]
level = "warn"
format = "text"

[notifications]
enabled = false
`

func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.ConfigPath()
}

func runConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigFile), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	if p, err := exec.LookPath(editor); err == nil {
		editor = p
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s with %s...\n", path, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, path}, &proc)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Could not open editor. Config file is at: %s\n", path)
		return nil
	}
	_, err = process.Wait()
	return err
}

func runSetMethod(cmd *cobra.Command, args []string) error {
	method, err := billing.ParseMethod(args[0])
	if err != nil {
		return err
	}
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	if err := config.SaveBillingMethod(path, method); err != nil {
		return fmt.Errorf("saving billing method: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Billing method set to %s for every day type.\n", method)
	return nil
}
