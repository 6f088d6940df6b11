/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"sync"
)

// DiscriminatorLookup is the bidirectional value/type-name map of one
// inheritance root.
type DiscriminatorLookup struct {
	mu      sync.RWMutex
	byValue map[string]string
	byType  map[string]string
}

func NewDiscriminatorLookup() *DiscriminatorLookup {
	return &DiscriminatorLookup{
		byValue: make(map[string]string),
		byType:  make(map[string]string),
	}
}

// Add maps value to typeName and back. It returns the type name previously
// registered for value, if it was a different type.
func (l *DiscriminatorLookup) Add(typeName, value string) (previous string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.byValue[value]; ok && old != typeName {
		previous = old
		delete(l.byType, old)
	}
	if oldValue, ok := l.byType[typeName]; ok && oldValue != value {
		delete(l.byValue, oldValue)
	}
	l.byValue[value] = typeName
	l.byType[typeName] = value
	return previous
}

// TypeName returns the type registered for value.
func (l *DiscriminatorLookup) TypeName(value string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	name, ok := l.byValue[value]
	return name, ok
}

// Value returns the value registered for typeName.
func (l *DiscriminatorLookup) Value(typeName string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.byType[typeName]
	return v, ok
}

// Remove drops typeName and its value.
func (l *DiscriminatorLookup) Remove(typeName string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.byType[typeName]; ok {
		delete(l.byType, typeName)
		if l.byValue[v] == typeName {
			delete(l.byValue, v)
		}
	}
}

func (l *DiscriminatorLookup) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byType)
}
