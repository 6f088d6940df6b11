/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
	"github.com/suparena/entitymeta/monitoring"
)

const shop = "example.com/shop"

func qn(short string) string { return shop + "." + short }

type tdOption func(*metadata.TypeDescriptor)

func class(short string, opts ...tdOption) *metadata.TypeDescriptor {
	td := metadata.NewClass(qn(short), &metadata.ClassShape{})
	for _, o := range opts {
		o(td)
	}
	return td
}

func iface(short string) *metadata.TypeDescriptor {
	return metadata.NewInterface(qn(short), &metadata.InterfaceShape{})
}

func extends(short string) tdOption {
	return func(td *metadata.TypeDescriptor) { td.Class().Superclass = qn(short) }
}

func abstract() tdOption {
	return func(td *metadata.TypeDescriptor) { td.Class().Abstract = true }
}

func implements(shorts ...string) tdOption {
	return func(td *metadata.TypeDescriptor) {
		for _, s := range shorts {
			td.Class().Implements = append(td.Class().Implements, qn(s))
		}
	}
}

func pk(names ...string) tdOption {
	return func(td *metadata.TypeDescriptor) {
		for _, n := range names {
			td.Members = append(td.Members, &metadata.Member{Name: n, PrimaryKey: true})
		}
	}
}

func identity(id metadata.IdentityStrategy) tdOption {
	return func(td *metadata.TypeDescriptor) { td.Identity = id }
}

func objectID(name string) tdOption {
	return func(td *metadata.TypeDescriptor) { td.ObjectIDClass = name }
}

func entity(name string) tdOption {
	return func(td *metadata.TypeDescriptor) { td.EntityName = name }
}

func discriminator(strategy metadata.DiscriminatorStrategy, value string) tdOption {
	return func(td *metadata.TypeDescriptor) {
		td.Discriminator = &metadata.Discriminator{Strategy: strategy, Value: value}
	}
}

func file(key string, tds ...*metadata.TypeDescriptor) *metadata.DescriptorFile {
	return metadata.NewFile(key, metadata.OriginExternal, &metadata.PackageGroup{Name: shop, Types: tds})
}

// fakeFiles is an in-memory FileLoader. Documents are rebuilt on every load
// so a reload after Unload sees fresh descriptors.
type fakeFiles struct {
	mu      sync.Mutex
	docs    map[string]func() *metadata.DescriptorFile
	located map[string][]string
	fail    map[string]error
	loads   map[string]int
	locates map[string]int
	onLoad  func(ctx context.Context, source string)
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		docs:    make(map[string]func() *metadata.DescriptorFile),
		located: make(map[string][]string),
		fail:    make(map[string]error),
		loads:   make(map[string]int),
		locates: make(map[string]int),
	}
}

// add registers a document under key and makes every type it holds locate it.
func (f *fakeFiles) add(key string, build func() *metadata.DescriptorFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = build
	for _, td := range build().Types() {
		f.located[td.Name] = append(f.located[td.Name], key)
	}
}

func (f *fakeFiles) loadCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[key]
}

func (f *fakeFiles) locateCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locates[name]
}

func (f *fakeFiles) Key(source string) string { return source }

func (f *fakeFiles) Load(ctx context.Context, sources []string, _ metadata.TypeResolver) ([]*metadata.DescriptorFile, error) {
	var (
		out  []*metadata.DescriptorFile
		errs []error
	)
	for _, src := range sources {
		f.mu.Lock()
		f.loads[src]++
		build, failure, hook := f.docs[src], f.fail[src], f.onLoad
		f.mu.Unlock()

		if hook != nil {
			hook(ctx, src)
		}
		switch {
		case failure != nil:
			errs = append(errs, failure)
		case build == nil:
			errs = append(errs, errors.NewNotFoundError("descriptor file", src))
		default:
			out = append(out, build())
		}
	}
	return out, errors.NewLoadError("read", errs)
}

func (f *fakeFiles) Locate(_ context.Context, typeName string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locates[typeName]++
	return append([]string(nil), f.located[typeName]...)
}

// fakeInline serves inline descriptors from builders keyed by type name.
type fakeInline map[string]func() *metadata.TypeDescriptor

func (x fakeInline) Extract(h metadata.TypeHandle) (*metadata.DescriptorFile, error) {
	build, ok := x[h.Name]
	if !ok {
		return nil, nil
	}
	return metadata.NewFile("inline:"+h.Name, metadata.OriginInline,
		&metadata.PackageGroup{Name: metadata.PackageOf(h.Name), Types: []*metadata.TypeDescriptor{build()}}), nil
}

// fakeResolver knows the listed names.
type fakeResolver map[string]bool

func (r fakeResolver) ResolveType(name string) (metadata.TypeHandle, bool) {
	return metadata.TypeHandle{Name: name}, r[name]
}

func resolverFor(names ...string) fakeResolver {
	r := fakeResolver{}
	for _, n := range names {
		r[n] = true
	}
	return r
}

type fakeScanner map[string][]string

func (s fakeScanner) Scan(_ context.Context, root string) ([]string, error) {
	found, ok := s[root]
	if !ok {
		return nil, errors.NewNotFoundError("unit root", root)
	}
	return found, nil
}

type fakeArchive struct {
	files map[string]func() []*metadata.DescriptorFile
	types map[string][]string
}

func (a fakeArchive) LoadArchive(_ context.Context, path string, _ metadata.TypeResolver) ([]*metadata.DescriptorFile, []string, error) {
	build, ok := a.files[path]
	if !ok {
		return nil, nil, errors.NewNotFoundError("archive", path)
	}
	return build(), a.types[path], nil
}

// testConfig is the default configuration without backing-type checks, so
// tests can run without a resolver.
func testConfig(mutators ...func(*config.Config)) *config.Config {
	cfg := config.Default()
	cfg.RequireBackingTypes = false
	for _, m := range mutators {
		m(cfg)
	}
	return cfg
}

func newTestRegistry(t *testing.T, files *fakeFiles, cfg *config.Config, opts ...Option) *Registry {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	base := []Option{WithMetrics(monitoring.New(nil))}
	if files != nil {
		base = append(base, WithFileLoader(files))
	}
	r := New(cfg, append(base, opts...)...)
	t.Cleanup(r.Close)
	return r
}

// recorder is a Listener remembering notification batches.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) OnInitialized(td *metadata.TypeDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, td.Name)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
