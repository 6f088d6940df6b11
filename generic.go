/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitymeta

import (
	"context"
	"reflect"

	"github.com/suparena/entitymeta/catalog"
	"github.com/suparena/entitymeta/metadata"
)

// Register adds T to the manager's catalog under its Go qualified name and
// returns that name.
func Register[T any](m *Manager) (string, error) {
	return catalog.Add[T](m.types)
}

// DescriptorFor returns the initialized descriptor of T, or nil when T has
// no persistence information.
func DescriptorFor[T any](ctx context.Context, m *Manager) *metadata.TypeDescriptor {
	return m.registry.GetDescriptorForType(ctx, reflect.TypeOf((*T)(nil)).Elem())
}

// IsPersistable reports whether T has a persistence-capable descriptor.
func IsPersistable[T any](ctx context.Context, m *Manager) bool {
	td := DescriptorFor[T](ctx, m)
	return td != nil && td.Persistence == metadata.PersistenceCapable
}
