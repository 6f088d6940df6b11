/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"

	"github.com/suparena/entitymeta/metadata"
)

// FileLoader turns source specifiers of the external channel into raw
// descriptor files.
type FileLoader interface {
	// Key returns the origin key a source is registered under.
	Key(source string) string

	// Load reads and parses sources. Files that could be read are returned
	// even when others failed; per-source failures are reported together,
	// typically as an *errors.LoadError.
	Load(ctx context.Context, sources []string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, error)

	// Locate returns the sources that by convention describe typeName.
	Locate(ctx context.Context, typeName string) []string
}

// InlineExtractor synthesizes a descriptor file from a type's own
// declarations. It returns nil when the type declares nothing.
type InlineExtractor interface {
	Extract(h metadata.TypeHandle) (*metadata.DescriptorFile, error)
}

// ArchiveLoader reads an archive and returns the descriptor files it carries
// and the type names it lists.
type ArchiveLoader interface {
	LoadArchive(ctx context.Context, path string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, []string, error)
}

// UnitScanner lists the descriptor sources below a unit root.
type UnitScanner interface {
	Scan(ctx context.Context, root string) ([]string, error)
}

// Listener is notified once per descriptor initialized during a top-level
// call, after that call has released the registry.
type Listener interface {
	OnInitialized(td *metadata.TypeDescriptor)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(td *metadata.TypeDescriptor)

func (f ListenerFunc) OnInitialized(td *metadata.TypeDescriptor) { f(td) }
