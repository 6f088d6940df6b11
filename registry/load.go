/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// Entry point labels used in logs and metrics.
const (
	entryFiles   = "files"
	entryTypes   = "types"
	entryArchive = "archive"
	entryUnit    = "unit"
	entryUser    = "user"
)

// LoadFiles registers and initializes the descriptor files behind sources.
// Every source is attempted; the files that loaded are initialized and
// returned together with one *errors.LoadError carrying all failures.
// When loading is not permitted it does nothing.
func (r *Registry) LoadFiles(ctx context.Context, sources []string) ([]*metadata.DescriptorFile, error) {
	return r.batch(ctx, entryFiles, func(s *session) ([]*metadata.DescriptorFile, []error) {
		return r.loadSources(s, sources)
	})
}

// LoadTypes loads the descriptors of the named types from whichever channel
// describes them. Names that cannot be resolved are logged and skipped.
func (r *Registry) LoadTypes(ctx context.Context, names []string) ([]*metadata.DescriptorFile, error) {
	return r.batch(ctx, entryTypes, func(s *session) ([]*metadata.DescriptorFile, []error) {
		return r.loadTypes(s, names)
	})
}

// LoadArchive loads the descriptor files packed in an archive and the
// descriptors of the types it lists.
func (r *Registry) LoadArchive(ctx context.Context, path string) ([]*metadata.DescriptorFile, error) {
	return r.batch(ctx, entryArchive, func(s *session) ([]*metadata.DescriptorFile, []error) {
		return r.loadArchive(s, path)
	})
}

// LoadUnit loads everything a unit names: its mapping files, the files found
// below its root unless unlisted sources are excluded, its archives and its
// types. Afterwards every registered descriptor that is still not
// initialized gets another attempt.
func (r *Registry) LoadUnit(ctx context.Context, unit *metadata.Unit) ([]*metadata.DescriptorFile, error) {
	if unit == nil {
		return nil, errors.NewValidationError("unit", "nil unit")
	}
	return r.batch(ctx, entryUnit, func(s *session) ([]*metadata.DescriptorFile, []error) {
		var (
			files []*metadata.DescriptorFile
			errs  []error
		)
		sources := append([]string(nil), unit.MappingFiles...)
		if !unit.ExcludeUnlisted && unit.Root != "" && r.scanner != nil {
			scanned, err := r.scanner.Scan(s.ctx, unit.Root)
			if err != nil {
				errs = append(errs, err)
			}
			sources = append(sources, scanned...)
		}
		fs, es := r.loadSources(s, sources)
		files, errs = append(files, fs...), append(errs, es...)

		for _, a := range unit.Archives {
			fs, es := r.loadArchive(s, a)
			files, errs = append(files, fs...), append(errs, es...)
		}
		fs, es = r.loadTypes(s, unit.Types)
		files, errs = append(files, fs...), append(errs, es...)

		r.logger.Info("loading unit",
			zap.String("unit", unit.Name),
			zap.Int("files", len(files)),
			zap.Bool("validate", unit.Validate))
		return dedupeFiles(files), errs
	}, r.initializeRemaining)
}

// LoadUserFile registers a caller-built file under a synthetic key and
// initializes it. It returns the descriptors that were registered.
func (r *Registry) LoadUserFile(ctx context.Context, f *metadata.DescriptorFile) ([]*metadata.TypeDescriptor, error) {
	if f == nil {
		return nil, errors.NewValidationError("file", "nil descriptor file")
	}
	files, err := r.batch(ctx, entryUser, func(s *session) ([]*metadata.DescriptorFile, []error) {
		f.Key = "user:" + uuid.NewString()
		f.Origin = metadata.OriginUser
		return []*metadata.DescriptorFile{r.registerFile(s, f)}, nil
	})
	if len(files) == 0 {
		return nil, err
	}
	return files[0].Types(), err
}

// batch is the protocol shared by every batch entry point: join or start a
// session, resolve inputs collecting errors, sweep, run the optional final
// steps and report all errors at once.
func (r *Registry) batch(
	ctx context.Context,
	entry string,
	resolve func(s *session) ([]*metadata.DescriptorFile, []error),
	finally ...func(s *session, files []*metadata.DescriptorFile) []error,
) ([]*metadata.DescriptorFile, error) {
	if r.closed.Load() {
		return nil, errors.ErrClosed
	}
	if !r.LoadPermitted() {
		r.logger.Debug("loading not permitted, batch ignored", zap.String("entry", entry))
		return nil, nil
	}
	s, originating, err := r.enter(ctx)
	if err != nil {
		return nil, err
	}
	if originating {
		defer r.exit(s)
	}
	r.metrics.Loads.WithLabelValues(entry).Inc()

	files, errs := resolve(s)
	errs = append(errs, r.sweep(s, files)...)
	for _, fn := range finally {
		errs = append(errs, fn(s, files)...)
	}

	if len(errs) > 0 {
		r.metrics.LoadErrors.WithLabelValues(entry).Add(float64(len(errs)))
		r.logger.Warn("metadata load finished with errors",
			zap.String("entry", entry), zap.Int("files", len(files)), zap.Int("errors", len(errs)))
	} else {
		r.logger.Debug("metadata load finished", zap.String("entry", entry), zap.Int("files", len(files)))
	}
	return files, errors.NewLoadError("load "+entry, errs)
}

func (r *Registry) loadTypes(s *session, names []string) ([]*metadata.DescriptorFile, []error) {
	var (
		files []*metadata.DescriptorFile
		errs  []error
	)
	for _, name := range names {
		if r.isWithoutPersistenceInfo(name) {
			continue
		}
		if r.resolver != nil {
			if _, ok := r.resolveType(name); !ok {
				r.logger.Error("listed type cannot be resolved", zap.String("type", name))
				continue
			}
		}
		td, err := r.ensureDescriptor(s, name)
		if err != nil {
			errs = append(errs, errors.NewResolutionError(name, err))
			continue
		}
		if td == nil {
			r.logger.Debug("listed type has no persistence descriptor", zap.String("type", name))
			continue
		}
		if f := td.File(); f != nil {
			files = append(files, f)
		}
	}
	return dedupeFiles(files), errs
}

func (r *Registry) loadArchive(s *session, path string) ([]*metadata.DescriptorFile, []error) {
	if r.archives == nil {
		return nil, []error{errors.NewValidationError("archive", "no archive loader configured")}
	}
	loaded, names, err := r.archives.LoadArchive(s.ctx, path, r.resolver)
	errs := errors.Causes(err)

	var files []*metadata.DescriptorFile
	if r.settings.allowExternal {
		for _, f := range loaded {
			files = append(files, r.registerFile(s, f))
		}
	}
	fs, es := r.loadTypes(s, names)
	return dedupeFiles(append(files, fs...)), append(errs, es...)
}

// initializeRemaining gives every registered but uninitialized descriptor
// outside the just-swept files another attempt.
func (r *Registry) initializeRemaining(s *session, swept []*metadata.DescriptorFile) []error {
	skip := make(map[*metadata.DescriptorFile]struct{}, len(swept))
	for _, f := range swept {
		skip[f] = struct{}{}
	}
	var pending []*metadata.TypeDescriptor
	r.primary.Range(func(_, v any) bool {
		td := v.(*metadata.TypeDescriptor)
		if td.IsInitialized() {
			return true
		}
		if _, ok := skip[td.File()]; !ok {
			pending = append(pending, td)
		}
		return true
	})
	var errs []error
	for _, td := range pending {
		if err := s.initialize(td); err != nil && !r.evictIfLenient(td, err) {
			errs = append(errs, err)
		}
	}
	return append(errs, r.sweepDiscovered(s)...)
}

func dedupeFiles(files []*metadata.DescriptorFile) []*metadata.DescriptorFile {
	seen := make(map[*metadata.DescriptorFile]struct{}, len(files))
	out := files[:0:0]
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
