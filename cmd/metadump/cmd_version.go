/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/entitymeta"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := entitymeta.GetVersionInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s version %s\n", appName, info.Version)
		fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
		fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		return nil
	},
}
