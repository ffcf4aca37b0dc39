// Package config reads the csg worker configuration from command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
)

// Config is the csg worker configuration.
type Config struct {
	// Address is the host:port the worker listens on.
	Address string

	// Workers is the number of boolean computations run concurrently.
	Workers int

	LoggingLevel string
}

// Read parses the configuration from command-line flags.
// It calls os.Exit when the configuration is invalid.
func Read() Config {
	config := Config{}

	flag.StringVar(&config.Address, "address", "localhost:8787", "listen host:port")
	flag.IntVar(&config.Workers, "workers", runtime.NumCPU(), "number of concurrent csg computations")
	flag.StringVar(&config.LoggingLevel, "logging-level", "info", "logging level, one of: "+availableLoggingLevelsString)
	flag.Parse()

	config.LoggingLevel = strings.ToLower(config.LoggingLevel)

	invalidConfig := false
	if !regexp.MustCompile(`^.*?:\d+$`).MatchString(config.Address) {
		fmt.Fprintf(os.Stderr, "Invalid address: \"%s\"\n", config.Address)
		invalidConfig = true
	}

	if config.Workers < 1 {
		fmt.Fprintf(os.Stderr, "Invalid workers: %d\n", config.Workers)
		invalidConfig = true
	}

	if !validateLoggingLevel(config.LoggingLevel) {
		fmt.Fprintf(os.Stderr, "Invalid loggingLevel: \"%s\"\n", config.LoggingLevel)
		invalidConfig = true
	}

	if invalidConfig {
		fmt.Fprintf(os.Stderr, "\n")
		flag.Usage()
		os.Exit(1)
	}

	return config
}

var availableLoggingLevels = []string{"panic", "fatal", "error", "warn", "info", "debug"}
var availableLoggingLevelsString = strings.Join(availableLoggingLevels, ", ")

func validateLoggingLevel(loggingLevel string) bool {
	for _, l := range availableLoggingLevels {
		if l == loggingLevel {
			return true
		}
	}
	return false
}
