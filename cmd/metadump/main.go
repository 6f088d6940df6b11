/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"os"
)

const appName = "metadump"

var (
	flagEnvFiles []string
	flagLogLevel string
)

func main() {
	rootCmd.AddCommand(newLoadCmd(), versionCmd)

	rootCmd.PersistentFlags().StringArrayVar(&flagEnvFiles, "env", nil,
		"env file with ENTITYMETA_* settings (repeatable; default: .env if present)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level (debug, info, warn, error); overrides ENTITYMETA_LOG_LEVEL")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}
