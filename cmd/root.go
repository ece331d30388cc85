package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel     string // Log verbosity level
	settingsPath string // Settings file, created by --save
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hydrogen",
	Short: "Frame-decoupling patch layer for a fixed-timestep game loop",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "hydrogen.yaml", "Settings file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
}
