/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"context"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// Source is one kind of descriptor source.
type Source interface {
	Claims(source string) bool
	Key(source string) string
	Load(ctx context.Context, sources []string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, error)
	Locate(ctx context.Context, typeName string) []string
}

// Sources dispatches every source specifier to the first Source claiming it.
type Sources []Source

func (ss Sources) claim(source string) int {
	for i, s := range ss {
		if s.Claims(source) {
			return i
		}
	}
	return -1
}

func (ss Sources) Key(source string) string {
	if i := ss.claim(source); i >= 0 {
		return ss[i].Key(source)
	}
	return source
}

// Load hands each claimed group to its Source and returns the files in the
// order of sources.
func (ss Sources) Load(ctx context.Context, sources []string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, error) {
	var (
		groups = make([][]string, len(ss))
		slot   = make(map[string]int, len(sources))
		errs   []error
	)
	for i, src := range sources {
		j := ss.claim(src)
		if j < 0 {
			errs = append(errs, errors.NewValidationError("source", "no loader for "+src))
			continue
		}
		groups[j] = append(groups[j], src)
		if key := ss[j].Key(src); key != "" {
			if _, dup := slot[key]; !dup {
				slot[key] = i
			}
		}
	}

	ordered := make([][]*metadata.DescriptorFile, len(sources))
	var unplaced []*metadata.DescriptorFile
	for j, s := range ss {
		if len(groups[j]) == 0 {
			continue
		}
		loaded, err := s.Load(ctx, groups[j], resolver)
		for _, f := range loaded {
			if i, ok := slot[f.Key]; ok {
				ordered[i] = append(ordered[i], f)
			} else {
				unplaced = append(unplaced, f)
			}
		}
		errs = append(errs, errors.Causes(err)...)
	}

	var files []*metadata.DescriptorFile
	for _, fs := range ordered {
		files = append(files, fs...)
	}
	return append(files, unplaced...), errors.NewLoadError("read descriptors", errs)
}

func (ss Sources) Locate(ctx context.Context, typeName string) []string {
	var found []string
	for _, s := range ss {
		found = append(found, s.Locate(ctx, typeName)...)
	}
	return found
}
