/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymeta

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/suparena/entitymeta/catalog"
	"github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/datastore"
	"github.com/suparena/entitymeta/datastore/ddb"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/loader"
	"github.com/suparena/entitymeta/logging"
	"github.com/suparena/entitymeta/metadata"
	"github.com/suparena/entitymeta/monitoring"
	"github.com/suparena/entitymeta/processor"
	"github.com/suparena/entitymeta/registry"
)

// Manager owns a metadata registry together with the type catalog, loaders,
// logger and metrics it runs with.
type Manager struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	types    *catalog.Catalog
	store    *loader.StoreSource
	registry *registry.Registry
}

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	types      *catalog.Catalog
	store      datastore.DescriptorStore
	roots      []string
	listeners  []registry.Listener
}

// Option configures a Manager.
type Option func(*options)

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegisterer registers the registry metrics with reg instead of a
// private Prometheus registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithCatalog uses an existing type catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) { o.types = c }
}

// WithDescriptorStore reads "store:" sources from store instead of the
// DynamoDB table named in the configuration.
func WithDescriptorStore(store datastore.DescriptorStore) Option {
	return func(o *options) { o.store = store }
}

// WithRoots sets the directories searched for the descriptor files of a type.
func WithRoots(roots ...string) Option {
	return func(o *options) { o.roots = append(o.roots, roots...) }
}

// WithListener registers l before the first load.
func WithListener(l registry.Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, l) }
}

// New builds a Manager. A nil cfg means config.Default(). When the
// configuration names a descriptor table and no store is given, a DynamoDB
// client is created for it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	types := o.types
	if types == nil {
		types = catalog.New()
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		metrics: monitoring.New(o.registerer),
		types:   types,
	}

	store := o.store
	if store == nil && cfg.Store.Enabled() {
		ds, err := ddb.NewDescriptorStore(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to create descriptor store: %w", err)
		}
		store = ds
	}
	var sources loader.Sources
	if store != nil {
		m.store = loader.NewStoreSource(store)
		sources = append(sources, m.store)
	}
	sources = append(sources, loader.NewFS(o.roots...))

	archive, err := loader.NewArchive(cfg.DescriptorPattern)
	if err != nil {
		return nil, err
	}
	scanner, err := loader.NewScanner(cfg.DescriptorPattern)
	if err != nil {
		return nil, err
	}

	m.registry = registry.New(cfg,
		registry.WithTypeResolver(types),
		registry.WithFileLoader(sources),
		registry.WithInlineExtractor(processor.New(types)),
		registry.WithArchiveLoader(archive),
		registry.WithUnitScanner(scanner),
		registry.WithLogger(logger),
		registry.WithMetrics(m.metrics),
	)
	for _, l := range o.listeners {
		m.registry.AddListener(l)
	}

	logger.Debug("metadata manager created",
		zap.Bool("store", m.store != nil),
		zap.Strings("roots", o.roots),
		zap.String("pattern", cfg.DescriptorPattern))
	return m, nil
}

func (m *Manager) Registry() *registry.Registry { return m.registry }

func (m *Manager) Catalog() *catalog.Catalog { return m.types }

func (m *Manager) Metrics() *monitoring.Metrics { return m.metrics }

func (m *Manager) Logger() *zap.Logger { return m.logger }

func (m *Manager) Config() *config.Config { return m.cfg }

// Descriptor returns the initialized descriptor of a fully-qualified type name.
func (m *Manager) Descriptor(ctx context.Context, name string) *metadata.TypeDescriptor {
	return m.registry.GetDescriptor(ctx, name)
}

// LoadUnitFile reads a TOML unit descriptor and loads everything it names.
func (m *Manager) LoadUnitFile(ctx context.Context, path string) ([]*metadata.DescriptorFile, error) {
	unit, err := loader.ReadUnit(path)
	if err != nil {
		return nil, err
	}
	m.logger.Info("loading unit file", zap.String("unit", unit.Name), zap.String("path", filepath.Clean(path)))
	return m.registry.LoadUnit(ctx, unit)
}

// Publish encodes f as YAML and stores it in the descriptor store under
// key, a type name or a package path. The next lookup that misses the
// registry caches can read it from there.
func (m *Manager) Publish(ctx context.Context, key string, f *metadata.DescriptorFile) error {
	if m.store == nil {
		return errors.NewValidationError("store", "no descriptor store configured")
	}
	body, err := loader.EncodeFile(f)
	if err != nil {
		return fmt.Errorf("failed to encode descriptor file: %w", err)
	}
	if err := m.store.Publish(ctx, key, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}
	m.logger.Debug("descriptor document published", zap.String("key", key))
	return nil
}

// Close closes the registry and flushes the logger.
func (m *Manager) Close() {
	m.registry.Close()
	_ = m.logger.Sync()
}
