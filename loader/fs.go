/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

const (
	// DescriptorSuffix is the file suffix of a per-type descriptor file.
	DescriptorSuffix = ".meta.yaml"
	// PackageDescriptor is the file describing every type of a package directory.
	PackageDescriptor = "package" + DescriptorSuffix
)

// FS reads descriptor files from the local filesystem. Sources are paths;
// files are registered under their absolute path.
type FS struct {
	roots []string
}

// NewFS returns a filesystem source that locates descriptors below roots.
func NewFS(roots ...string) *FS {
	return &FS{roots: roots}
}

// Claims accepts every source without a store prefix.
func (f *FS) Claims(source string) bool {
	return !strings.HasPrefix(source, StorePrefix)
}

func (f *FS) Key(source string) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		return filepath.Clean(source)
	}
	return abs
}

// Load reads and parses every source. Unreadable or invalid files are
// skipped and reported together.
func (f *FS) Load(ctx context.Context, sources []string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, error) {
	var (
		files []*metadata.DescriptorFile
		errs  []error
	)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		key := f.Key(src)
		data, err := os.ReadFile(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("read descriptor file: %w", err))
			continue
		}
		file, err := ParseFile(key, data, resolver)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, file)
	}
	return files, errors.NewLoadError("read descriptor files", errs)
}

// Locate returns the descriptor files that by convention may describe
// typeName, most general first: package.meta.yaml in every directory from the
// root down to the package directory, then <Type>.meta.yaml.
func (f *FS) Locate(ctx context.Context, typeName string) []string {
	pkg := metadata.PackageOf(typeName)
	var found []string
	for _, root := range f.roots {
		for _, candidate := range candidates(root, pkg, metadata.ShortName(typeName)) {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}
	}
	return found
}

func candidates(root, pkg, short string) []string {
	out := []string{filepath.Join(root, PackageDescriptor)}
	dir := root
	if pkg != "" {
		for _, elem := range strings.Split(pkg, "/") {
			dir = filepath.Join(dir, elem)
			out = append(out, filepath.Join(dir, PackageDescriptor))
		}
	}
	return append(out, filepath.Join(dir, short+DescriptorSuffix))
}
