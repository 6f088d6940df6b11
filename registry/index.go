/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sort"
	"sync"

	"github.com/suparena/entitymeta/metadata"
)

// nameSets maps a key to a set of type names. Stored sets are never mutated;
// writers replace them, so readers need no lock.
type nameSets struct {
	m sync.Map // map[string]map[string]struct{}
}

func (x *nameSets) add(key, name string) {
	old, _ := x.m.Load(key)
	prev, _ := old.(map[string]struct{})
	if _, ok := prev[name]; ok {
		return
	}
	next := make(map[string]struct{}, len(prev)+1)
	for n := range prev {
		next[n] = struct{}{}
	}
	next[name] = struct{}{}
	x.m.Store(key, next)
}

func (x *nameSets) removeEverywhere(name string) {
	x.m.Range(func(k, v any) bool {
		set := v.(map[string]struct{})
		if _, ok := set[name]; !ok {
			return true
		}
		if len(set) == 1 {
			x.m.Delete(k)
			return true
		}
		next := make(map[string]struct{}, len(set)-1)
		for n := range set {
			if n != name {
				next[n] = struct{}{}
			}
		}
		x.m.Store(k, next)
		return true
	})
}

func (x *nameSets) drop(key string) {
	x.m.Delete(key)
}

// get returns the sorted members of key, or nil.
func (x *nameSets) get(key string) []string {
	v, ok := x.m.Load(key)
	if !ok {
		return nil
	}
	set := v.(map[string]struct{})
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (x *nameSets) contains(name string) bool {
	found := false
	x.m.Range(func(_, v any) bool {
		_, found = v.(map[string]struct{})[name]
		return !found
	})
	return found
}

// indexSet holds the lookup structures derived from initialized descriptors.
type indexSet struct {
	entityNames    sync.Map // entity name -> *metadata.TypeDescriptor
	discriminators sync.Map // discriminator value -> *metadata.TypeDescriptor
	lookups        sync.Map // root type name -> *metadata.DiscriminatorLookup
	direct         nameSets // superclass -> direct subclasses
	concrete       nameSets // ancestor -> concrete descendants
	identity       nameSets // identity class -> types using it
	implementers   nameSets // interface -> implementing classes
	negative       sync.Map // type name -> struct{}
}

func newIndexSet() *indexSet {
	return &indexSet{}
}

func (ix *indexSet) isNegative(name string) bool {
	_, ok := ix.negative.Load(name)
	return ok
}

func (ix *indexSet) lookupFor(root string) *metadata.DiscriminatorLookup {
	v, _ := ix.lookups.LoadOrStore(root, metadata.NewDiscriminatorLookup())
	return v.(*metadata.DiscriminatorLookup)
}

// setByName stores td under key and returns a different descriptor that held
// the key before, if any.
func setByName(m *sync.Map, key string, td *metadata.TypeDescriptor) *metadata.TypeDescriptor {
	prev, loaded := m.Swap(key, td)
	if !loaded {
		return nil
	}
	if p := prev.(*metadata.TypeDescriptor); p.Name != td.Name {
		return p
	}
	return nil
}

// removeByValue deletes every entry of m whose descriptor is named name.
func removeByValue(m *sync.Map, name string) {
	m.Range(func(k, v any) bool {
		if v.(*metadata.TypeDescriptor).Name == name {
			m.Delete(k)
		}
		return true
	})
}

// forget removes name from every index.
func (ix *indexSet) forget(name string) {
	removeByValue(&ix.entityNames, name)
	removeByValue(&ix.discriminators, name)
	ix.identity.removeEverywhere(name)
	ix.direct.drop(name)
	ix.direct.removeEverywhere(name)
	ix.concrete.drop(name)
	ix.concrete.removeEverywhere(name)
	ix.implementers.drop(name)
	ix.implementers.removeEverywhere(name)
	ix.lookups.Delete(name)
	ix.lookups.Range(func(_, v any) bool {
		v.(*metadata.DiscriminatorLookup).Remove(name)
		return true
	})
	ix.negative.Delete(name)
}

// references reports whether any index still refers to name.
func (ix *indexSet) references(name string) bool {
	found := false
	check := func(_, v any) bool {
		found = v.(*metadata.TypeDescriptor).Name == name
		return !found
	}
	ix.entityNames.Range(check)
	if !found {
		ix.discriminators.Range(check)
	}
	if found {
		return true
	}
	if ix.identity.contains(name) || ix.direct.contains(name) || ix.concrete.contains(name) || ix.implementers.contains(name) {
		return true
	}
	if ix.direct.get(name) != nil || ix.concrete.get(name) != nil {
		return true
	}
	if _, ok := ix.lookups.Load(name); ok {
		return true
	}
	ix.lookups.Range(func(_, v any) bool {
		_, found = v.(*metadata.DiscriminatorLookup).Value(name)
		return !found
	})
	return found
}

func (ix *indexSet) clear() {
	ix.entityNames.Clear()
	ix.discriminators.Clear()
	ix.lookups.Clear()
	ix.direct.m.Clear()
	ix.concrete.m.Clear()
	ix.identity.m.Clear()
	ix.implementers.m.Clear()
	ix.negative.Clear()
}
