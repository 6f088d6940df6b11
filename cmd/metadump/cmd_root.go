/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/entitymeta/config"
)

var rootCmd = &cobra.Command{
	Use:   appName + " [command]",
	Short: "Inspect persistence descriptors",
	Long: appName + " loads persistence descriptor files, archives and units the way the\n" +
		"registry does at runtime and prints what was registered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// loadConfig reads the configuration for a CLI run. There are no Go types
// behind the descriptors here, so backing types are not required and the
// inline channel is off.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagEnvFiles...)
	if err != nil {
		return nil, err
	}
	cfg.RequireBackingTypes = false
	cfg.AllowInline = false
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg, nil
}
