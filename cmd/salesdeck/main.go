package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ncanzani/salesdeck/internal/config"
)

var version = "dev"

var (
	noColor     bool
	baseURLFlag string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "salesdeck",
	Short:         "Operator console for the WhatsApp sales-automation backend",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level := zerolog.WarnLevel
	if cfg, err := config.Load(); err == nil {
		if l, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && l != zerolog.NoLevel {
			level = l
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(webhookURLCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
