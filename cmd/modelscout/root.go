package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelscout",
		Short: "Modelscout - local image generation model advisor",
		Long: `Modelscout recommends local image generation models for your hardware.

It filters a model catalog against your machine's resources, scores the
survivors against your stated preferences, and ranks them with an
explainable multi-criteria method.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRecommendCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPresetsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
