/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// Catalog maps fully-qualified type names to Go types. It is the type
// resolver consulted by the registry and the inline extractor.
type Catalog struct {
	// mu serializes writers; readers go through the sync.Maps.
	mu     sync.Mutex
	byName sync.Map // map[string]reflect.Type
	byType sync.Map // map[reflect.Type]string
}

func New() *Catalog {
	return &Catalog{}
}

// NameOf returns the qualified name Go gives a named type, "pkgpath.Name".
// Pointers are dereferenced.
func NameOf(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Register associates name with t. Registering the same pair again is a
// no-op; a different type under a taken name is an AlreadyExistsError.
func (c *Catalog) Register(name string, t reflect.Type) error {
	if t == nil {
		return errors.NewValidationError("type", "nil reflect.Type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name == "" {
		name = NameOf(t)
	}
	if name == "" {
		return errors.NewValidationError("name", fmt.Sprintf("cannot derive a name for unnamed type %s", t))
	}

	if old, ok := c.byName.Load(name); ok {
		if old.(reflect.Type) == t {
			return nil
		}
		return errors.NewAlreadyExistsError("type", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.byName.Load(name); ok {
		if old.(reflect.Type) == t {
			return nil
		}
		return errors.NewAlreadyExistsError("type", name)
	}
	c.byName.Store(name, t)
	c.byType.Store(t, name)
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (c *Catalog) MustRegister(name string, t reflect.Type) {
	if err := c.Register(name, t); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
}

// Add registers T under its Go qualified name and returns that name.
func Add[T any](c *Catalog) (string, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := NameOf(t)
	return name, c.Register(name, t)
}

// ResolveType implements the registry's type resolver. It never fails; an
// unknown name reports false.
func (c *Catalog) ResolveType(name string) (metadata.TypeHandle, bool) {
	v, ok := c.byName.Load(name)
	if !ok {
		return metadata.TypeHandle{}, false
	}
	return metadata.TypeHandle{Name: name, Type: v.(reflect.Type)}, true
}

// Lookup returns the registered name of t.
func (c *Catalog) Lookup(t reflect.Type) (string, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "", false
	}
	v, ok := c.byType.Load(t)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Remove forgets name. It reports whether name was registered.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byName.LoadAndDelete(name)
	if ok {
		c.byType.Delete(v.(reflect.Type))
	}
	return ok
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	var names []string
	c.byName.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
