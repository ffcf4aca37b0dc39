package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	rootCmd := &cobra.Command{Use: "bitbloq"}
	rootCmd.PersistentFlags().StringVar(
		&loggingLevel, "logging-level", "info", "logging level",
	)
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level, err := log.ParseLevel(loggingLevel)
		if err != nil {
			level = log.InfoLevel
		}
		log.SetLevel(level)
	}
	rootCmd.AddCommand(cmdScene, cmdProgram)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var loggingLevel string
