package cmd

import (
	"fmt"
	"os"

	"github.com/bcdannyboy/dprice/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "dprice",
	Short:         "Price European options with Black-Scholes and Monte Carlo and cross-check the engines",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", "", "Env file to load (defaults to .env when present)")
	flags.String("log-level", config.DefaultLogLevel, "Log level: trace, debug, info, warn, error")
	flags.String("output", config.DefaultOutput, "Report format: table, json or csv")
	flags.Int("workers", 0, "Workers for batch evaluation (defaults to physical cores)")
	flags.Bool("quiet", false, "Hide progress bars")

	rootCmd.AddCommand(bsCmd, mcCmd, greeksCmd, batchCmd, compareCmd, coverageCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig(cmd *cobra.Command) error {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return err
	}

	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if cfg, err = config.Load(files...); err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		if cfg.LogLevel, err = log.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if cmd.Flags().Changed("output") {
		output, _ := cmd.Flags().GetString("output")
		if cfg.Output, err = config.ParseOutput(output); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("workers") {
		workers, _ := cmd.Flags().GetInt("workers")
		if workers < 1 {
			return fmt.Errorf("--workers must be positive, got %d", workers)
		}
		cfg.Workers = workers
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel)
	log.WithFields(log.Fields{
		"workers":     cfg.Workers,
		"simulations": cfg.Simulations,
		"output":      cfg.Output,
	}).Debug("configuration loaded")

	return nil
}
