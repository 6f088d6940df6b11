/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// unitDoc is the TOML form of a unit descriptor:
//
//	name = "shop"
//	root = "model"
//	mapping-files = ["extra/audit.meta.yaml"]
//	archives = ["lib/catalog.zip"]
//	types = ["example.com/shop.Order"]
//	exclude-unlisted-types = false
//	validate = true
//
//	[properties]
//	datastore = "orders"
type unitDoc struct {
	Name            string            `toml:"name"`
	Root            string            `toml:"root"`
	MappingFiles    []string          `toml:"mapping-files"`
	Archives        []string          `toml:"archives"`
	Types           []string          `toml:"types"`
	ExcludeUnlisted bool              `toml:"exclude-unlisted-types"`
	Validate        bool              `toml:"validate"`
	Properties      map[string]string `toml:"properties"`
}

// ParseUnit parses a TOML unit descriptor. Relative paths are resolved
// against baseDir.
func ParseUnit(data []byte, baseDir string) (*metadata.Unit, error) {
	var doc unitDoc
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse unit: %w", err)
	}
	if doc.Name == "" {
		return nil, errors.NewValidationError("name", "unit name is required")
	}

	unit := &metadata.Unit{
		Name:            doc.Name,
		MappingFiles:    resolvePaths(baseDir, doc.MappingFiles),
		Archives:        resolvePaths(baseDir, doc.Archives),
		Types:           doc.Types,
		ExcludeUnlisted: doc.ExcludeUnlisted,
		Validate:        doc.Validate,
		Properties:      doc.Properties,
	}
	if doc.Root != "" {
		unit.Root = resolvePath(baseDir, doc.Root)
	}
	return unit, nil
}

// ReadUnit reads a unit descriptor file; relative paths in it are relative
// to the file's directory.
func ReadUnit(path string) (*metadata.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	return ParseUnit(data, filepath.Dir(path))
}

func resolvePath(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func resolvePaths(baseDir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(baseDir, p)
	}
	return out
}
