/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// registerFile records f under its origin key and its descriptors under
// their names. A key registered before returns the existing file. Types that
// already have a descriptor keep it and are dropped from f.
func (r *Registry) registerFile(s *session, f *metadata.DescriptorFile) *metadata.DescriptorFile {
	if v, ok := r.fileByKey.Load(f.Key); ok {
		return v.(*metadata.DescriptorFile)
	}
	f.Link()
	names := make(map[string]struct{})
	f.Retain(func(td *metadata.TypeDescriptor) bool {
		if _, dup := names[td.Name]; dup {
			r.logger.Warn("type described twice in one file, first kept",
				zap.String("type", td.Name), zap.String("file", f.Key))
			return false
		}
		names[td.Name] = struct{}{}
		if td.Name == "" {
			r.logger.Warn("descriptor without a type name dropped", zap.String("file", f.Key))
			return false
		}
		if r.HasDescriptor(td.Name) {
			r.logger.Debug("type already described, keeping existing descriptor",
				zap.String("type", td.Name), zap.String("file", f.Key))
			return false
		}
		return true
	})

	r.fileByKey.Store(f.Key, f)
	r.metrics.Files.Inc()
	for _, td := range f.Types() {
		r.storeDescriptor(td)
		r.index.negative.Delete(td.Name)
	}
	r.named.register(f)

	if s != nil && s.depth > 0 {
		s.discovered = append(s.discovered, f)
	}
	r.logger.Debug("registered descriptor file",
		zap.String("file", f.Key),
		zap.Stringer("origin", f.Origin),
		zap.Int("types", len(f.Types())))
	return f
}

// loadSources registers the files behind sources, reusing files already
// registered under the same key. Files come back in the order of sources.
func (r *Registry) loadSources(s *session, sources []string) ([]*metadata.DescriptorFile, []error) {
	if len(sources) == 0 {
		return nil, nil
	}
	if !r.settings.allowExternal || r.files == nil {
		r.logger.Debug("external descriptors disabled, sources ignored", zap.Strings("sources", sources))
		return nil, nil
	}

	var (
		slots   = make([]*metadata.DescriptorFile, 0, len(sources))
		slot    = make(map[string]int, len(sources))
		pending []string
	)
	for _, src := range sources {
		key := r.files.Key(src)
		if _, dup := slot[key]; dup {
			continue
		}
		slot[key] = len(slots)
		f := r.FileDescriptor(key)
		slots = append(slots, f)
		if f == nil {
			pending = append(pending, src)
		}
	}

	var (
		unplaced []*metadata.DescriptorFile
		err      error
	)
	if len(pending) > 0 {
		var loaded []*metadata.DescriptorFile
		loaded, err = r.files.Load(s.ctx, pending, r.resolver)
		for _, f := range loaded {
			f = r.registerFile(s, f)
			if i, ok := slot[f.Key]; ok && slots[i] == nil {
				slots[i] = f
			} else {
				unplaced = append(unplaced, f)
			}
		}
	}

	out := make([]*metadata.DescriptorFile, 0, len(slots)+len(unplaced))
	for _, f := range slots {
		if f != nil {
			out = append(out, f)
		}
	}
	return append(out, unplaced...), errors.Causes(err)
}

// initializeFiles populates then initializes every descriptor of the files
// not yet initialized. A failure aborts the rest of its file only.
func (r *Registry) initializeFiles(s *session, files []*metadata.DescriptorFile) []error {
	var errs []error
	failed := make(map[*metadata.DescriptorFile]bool)

	for _, f := range files {
		if f.IsInitialized() {
			continue
		}
		for _, td := range f.Types() {
			if err := s.populate(td); err != nil {
				if r.evictIfLenient(td, err) {
					continue
				}
				errs = append(errs, fmt.Errorf("%s: %w", f.Key, err))
				failed[f] = true
				break
			}
		}
	}

	for _, f := range files {
		if f.IsInitialized() || failed[f] {
			continue
		}
		ok := true
		for _, td := range f.Types() {
			if err := s.initialize(td); err != nil {
				if r.evictIfLenient(td, err) {
					continue
				}
				errs = append(errs, fmt.Errorf("%s: %w", f.Key, err))
				ok = false
				break
			}
		}
		if ok {
			f.MarkInitialized()
		}
	}
	return errs
}

// sweepDiscovered initializes the files registered as a side effect of
// earlier initialization. At most settings.sweepPasses passes run; zero
// means until no new file appears.
func (r *Registry) sweepDiscovered(s *session) []error {
	var errs []error
	passes := 0
	for len(s.discovered) > 0 {
		if r.settings.sweepPasses > 0 && passes >= r.settings.sweepPasses {
			keys := make([]string, 0, len(s.discovered))
			for _, f := range s.discovered {
				keys = append(keys, f.Key)
			}
			r.logger.Debug("sweep limit reached, files left for a later load", zap.Strings("files", keys))
			break
		}
		batch := s.discovered
		s.discovered = nil
		errs = append(errs, r.initializeFiles(s, batch)...)
		passes++
	}
	s.discovered = nil
	r.metrics.Sweeps.Observe(float64(passes))
	return errs
}

// sweep runs the population/initialization sweep of a batch load.
func (r *Registry) sweep(s *session, files []*metadata.DescriptorFile) []error {
	errs := r.initializeFiles(s, files)
	return append(errs, r.sweepDiscovered(s)...)
}

// evictIfLenient drops td when err reports a missing backing type and the
// registry is lenient. It reports whether td was evicted.
func (r *Registry) evictIfLenient(td *metadata.TypeDescriptor, err error) bool {
	if !r.settings.lenient || !errors.IsMissingType(err) {
		return false
	}
	if f := td.File(); f != nil {
		f.Remove(td)
	}
	r.deleteDescriptor(td.Name)
	r.metrics.Evictions.Inc()
	r.logger.Warn("backing type missing, descriptor evicted", zap.String("type", td.Name), zap.Error(err))
	return true
}
