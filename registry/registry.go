/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
	"github.com/suparena/entitymeta/monitoring"
)

// Registry caches and indexes type descriptors. Reads of ready descriptors
// are lock-free; every mutation happens inside a session holding mu.
type Registry struct {
	// mu is the update lock. Only the originating call of a session holds it.
	mu sync.Mutex

	closed        atomic.Bool
	loadPermitted atomic.Bool
	settings      settings

	resolver metadata.TypeResolver
	files    FileLoader
	inline   InlineExtractor
	archives ArchiveLoader
	scanner  UnitScanner

	logger  *zap.Logger
	metrics *monitoring.Metrics

	listeners listenerHub

	primary   sync.Map // map[string]*metadata.TypeDescriptor
	usable    sync.Map // map[string]*metadata.TypeDescriptor
	fileByKey sync.Map // map[string]*metadata.DescriptorFile

	index *indexSet
	named *namedIndex
}

type settings struct {
	allowExternal       bool
	allowInline         bool
	lenient             bool
	requireBackingTypes bool
	defaultNullable     bool
	sweepPasses         int
	skipStdlib          bool
	reserved            []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithTypeResolver sets the resolver used to find backing types.
func WithTypeResolver(resolver metadata.TypeResolver) Option {
	return func(r *Registry) { r.resolver = resolver }
}

// WithFileLoader sets the external-channel loader.
func WithFileLoader(l FileLoader) Option {
	return func(r *Registry) { r.files = l }
}

// WithInlineExtractor sets the inline-channel extractor.
func WithInlineExtractor(x InlineExtractor) Option {
	return func(r *Registry) { r.inline = x }
}

// WithArchiveLoader sets the loader used by LoadArchive and LoadUnit.
func WithArchiveLoader(l ArchiveLoader) Option {
	return func(r *Registry) { r.archives = l }
}

// WithUnitScanner sets the scanner used for unit roots.
func WithUnitScanner(s UnitScanner) Option {
	return func(r *Registry) { r.scanner = s }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New creates a registry. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) *Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Registry{
		settings: settings{
			allowExternal:       cfg.AllowExternal,
			allowInline:         cfg.AllowInline,
			lenient:             cfg.LenientMissingTypes,
			requireBackingTypes: cfg.RequireBackingTypes,
			defaultNullable:     cfg.DefaultNullable,
			sweepPasses:         cfg.SweepPasses,
			skipStdlib:          cfg.SkipStandardLibrary,
			reserved:            append([]string(nil), cfg.ReservedPrefixes...),
		},
		logger: zap.NewNop(),
		index:  newIndexSet(),
		named:  newNamedIndex(),
	}
	r.loadPermitted.Store(cfg.LoadPermitted)
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = monitoring.New(nil)
	}
	return r
}

// SetLoadPermitted allows or forbids loading. Once forbidden, lookups only
// see descriptors that are already initialized and batch loads are no-ops.
func (r *Registry) SetLoadPermitted(permitted bool) {
	r.loadPermitted.Store(permitted)
}

func (r *Registry) LoadPermitted() bool {
	return r.loadPermitted.Load() && !r.closed.Load()
}

// AddListener registers l and returns a function that removes it.
func (r *Registry) AddListener(l Listener) (remove func()) {
	return r.listeners.add(l)
}

// Close clears every cache and index and drops all listeners. Later loads
// fail with errors.ErrClosed and lookups report absent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Swap(true) {
		return
	}
	r.primary.Clear()
	r.usable.Clear()
	r.fileByKey.Clear()
	r.index.clear()
	r.named.clear()
	r.listeners.clear()
	r.metrics.Descriptors.Set(0)
	r.metrics.Files.Set(0)
	r.logger.Debug("registry closed")
}

// enter starts or joins a session. A ctx that already carries a session of
// this registry joins it without taking the lock; otherwise the caller is the
// originating call and must call exit.
func (r *Registry) enter(ctx context.Context) (s *session, originating bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s := sessionFrom(ctx); s != nil && s.r == r {
		return s, false, nil
	}
	r.mu.Lock()
	if r.closed.Load() {
		r.mu.Unlock()
		return nil, false, errors.ErrClosed
	}
	return newSession(ctx, r, r.listeners.snapshot()), true, nil
}

// exit releases the lock taken by enter and flushes the notification batch.
func (r *Registry) exit(s *session) {
	batch, listeners := s.notify, s.listeners
	s.notify = nil
	r.mu.Unlock()
	for _, td := range batch {
		for _, l := range listeners {
			l.OnInitialized(td)
		}
	}
}

func (r *Registry) resolveType(name string) (metadata.TypeHandle, bool) {
	if r.resolver == nil {
		return metadata.TypeHandle{Name: name}, false
	}
	return r.resolver.ResolveType(name)
}

// isWithoutPersistenceInfo reports names answered negatively without any
// resolution: reserved namespaces and the negative cache.
func (r *Registry) isWithoutPersistenceInfo(name string) bool {
	if name == "" {
		return true
	}
	if r.settings.skipStdlib && metadata.IsStandardLibrary(name) {
		return true
	}
	for _, p := range r.settings.reserved {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return r.index.isNegative(name)
}

func (r *Registry) storeDescriptor(td *metadata.TypeDescriptor) {
	if _, loaded := r.primary.Swap(td.Name, td); !loaded {
		r.metrics.Descriptors.Inc()
	}
}

func (r *Registry) deleteDescriptor(name string) (*metadata.TypeDescriptor, bool) {
	r.usable.Delete(name)
	v, ok := r.primary.LoadAndDelete(name)
	if !ok {
		return nil, false
	}
	r.metrics.Descriptors.Dec()
	return v.(*metadata.TypeDescriptor), true
}

// ReadDescriptor returns the registered descriptor for name in whatever state
// it is in, without loading anything.
func (r *Registry) ReadDescriptor(name string) *metadata.TypeDescriptor {
	if v, ok := r.primary.Load(name); ok {
		return v.(*metadata.TypeDescriptor)
	}
	return nil
}

// HasDescriptor reports whether a descriptor for name is registered.
func (r *Registry) HasDescriptor(name string) bool {
	_, ok := r.primary.Load(name)
	return ok
}

// TypesWithDescriptors returns the names of all registered descriptors, sorted.
func (r *Registry) TypesWithDescriptors() []string {
	var names []string
	r.primary.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// FileDescriptor returns the file registered under key.
func (r *Registry) FileDescriptor(key string) *metadata.DescriptorFile {
	if v, ok := r.fileByKey.Load(key); ok {
		return v.(*metadata.DescriptorFile)
	}
	return nil
}

// FileDescriptors returns every registered file, sorted by key.
func (r *Registry) FileDescriptors() []*metadata.DescriptorFile {
	var files []*metadata.DescriptorFile
	r.fileByKey.Range(func(_, v any) bool {
		files = append(files, v.(*metadata.DescriptorFile))
		return true
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files
}
