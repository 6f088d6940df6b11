/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/entitymeta"
	"github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/loader"
	"github.com/suparena/entitymeta/metadata"
)

type loadOptions struct {
	files    []string
	archives []string
	units    []string
	types    []string
	roots    []string
	summary  bool
}

func newLoadCmd() *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load descriptor sources and print the registered descriptor files",
		Example: "  " + appName + " load -f model/shop/Order.meta.yaml\n" +
			"  " + appName + " load --unit persistence.toml --summary\n" +
			"  " + appName + " load --root model --type example.com/shop.Order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runLoad(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "descriptor file or store:<key> document (repeatable)")
	cmd.Flags().StringArrayVar(&opts.archives, "archive", nil, "zip, tar.gz or tar.zst archive (repeatable)")
	cmd.Flags().StringArrayVar(&opts.units, "unit", nil, "TOML unit descriptor (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.types, "type", "t", nil, "fully-qualified type name to locate and load (repeatable)")
	cmd.Flags().StringArrayVar(&opts.roots, "root", nil, "directory searched for the descriptors of --type names (repeatable)")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print one line per descriptor instead of YAML")
	return cmd
}

// runLoad loads every input, prints what got registered and returns the
// collected failures as one error.
func runLoad(ctx context.Context, out, errOut io.Writer, cfg *config.Config, opts *loadOptions) error {
	if len(opts.files)+len(opts.archives)+len(opts.units)+len(opts.types) == 0 {
		return errors.NewValidationError("input", "nothing to load: pass --file, --archive, --unit or --type")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := entitymeta.New(ctx, cfg, entitymeta.WithRoots(opts.roots...))
	if err != nil {
		return err
	}
	defer m.Close()
	reg := m.Registry()

	var errs []error
	collect := func(_ []*metadata.DescriptorFile, err error) {
		errs = append(errs, errors.Causes(err)...)
	}
	if len(opts.files) > 0 {
		collect(reg.LoadFiles(ctx, opts.files))
	}
	for _, a := range opts.archives {
		collect(reg.LoadArchive(ctx, a))
	}
	for _, u := range opts.units {
		collect(m.LoadUnitFile(ctx, u))
	}
	if len(opts.types) > 0 {
		collect(reg.LoadTypes(ctx, opts.types))
	}

	for _, f := range reg.FileDescriptors() {
		if opts.summary {
			printSummary(out, f)
			continue
		}
		body, err := loader.EncodeFile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "# %s (%s)\n", f.Key, f.Origin)
		if _, err := out.Write(body); err != nil {
			return err
		}
	}

	for _, err := range errs {
		fmt.Fprintln(errOut, "  -", err)
	}
	m.Logger().Debug("metadump finished",
		zap.Int("files", len(reg.FileDescriptors())),
		zap.Int("errors", len(errs)))
	return errors.NewLoadError("metadump", errs)
}

func printSummary(out io.Writer, f *metadata.DescriptorFile) {
	fmt.Fprintf(out, "%s\n", f.Key)
	for _, td := range f.Types() {
		state := td.State().String()
		if sup := td.SuperclassName(); sup != "" {
			fmt.Fprintf(out, "  %-12s %s extends %s\n", state, td.Name, sup)
			continue
		}
		fmt.Fprintf(out, "  %-12s %s\n", state, td.Name)
	}
}
