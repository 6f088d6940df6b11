/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"sync/atomic"
)

// Origin is the declarative channel a DescriptorFile came from.
type Origin int

const (
	OriginExternal Origin = iota
	OriginInline
	OriginUser
)

func (o Origin) String() string {
	switch o {
	case OriginInline:
		return "inline"
	case OriginUser:
		return "user"
	default:
		return "external"
	}
}

// DescriptorFile groups the descriptors discovered together from one source.
// Package contents are only changed by the owning registry while it holds its
// update lock.
type DescriptorFile struct {
	Key          string
	Origin       Origin
	Packages     []*PackageGroup
	Queries      []*Query
	StoredProcs  []*StoredProc
	FetchPlans   []*FetchPlan
	QueryResults []*QueryResult

	initialized atomic.Bool
}

// PackageGroup is one package section of a DescriptorFile.
type PackageGroup struct {
	Name      string
	Types     []*TypeDescriptor
	Sequences []*Sequence

	file *DescriptorFile
}

// NewFile returns a file holding the given packages, linked to it.
func NewFile(key string, origin Origin, pkgs ...*PackageGroup) *DescriptorFile {
	f := &DescriptorFile{Key: key, Origin: origin, Packages: pkgs}
	f.Link()
	return f
}

// Link sets the back references from packages and descriptors. Loaders that
// build a DescriptorFile literal must call it before registration.
func (f *DescriptorFile) Link() {
	for _, p := range f.Packages {
		p.file = f
		for _, td := range p.Types {
			td.pkg = p
		}
		for _, s := range p.Sequences {
			if s.Package == "" {
				s.Package = p.Name
			}
		}
	}
}

// Types returns every descriptor in declaration order.
func (f *DescriptorFile) Types() []*TypeDescriptor {
	var out []*TypeDescriptor
	for _, p := range f.Packages {
		out = append(out, p.Types...)
	}
	return out
}

func (f *DescriptorFile) IsInitialized() bool { return f.initialized.Load() }

func (f *DescriptorFile) MarkInitialized() { f.initialized.Store(true) }

// Remove detaches td from its package group. It reports whether td was found.
func (f *DescriptorFile) Remove(td *TypeDescriptor) bool {
	for _, p := range f.Packages {
		for i, t := range p.Types {
			if t == td {
				p.Types = append(p.Types[:i:i], p.Types[i+1:]...)
				td.pkg = nil
				return true
			}
		}
	}
	return false
}

// Retain keeps only the descriptors for which keep returns true.
func (f *DescriptorFile) Retain(keep func(*TypeDescriptor) bool) {
	for _, p := range f.Packages {
		kept := p.Types[:0:0]
		for _, td := range p.Types {
			if keep(td) {
				kept = append(kept, td)
			} else {
				td.pkg = nil
			}
		}
		p.Types = kept
	}
}

// File is the DescriptorFile holding the package.
func (p *PackageGroup) File() *DescriptorFile { return p.file }

// Query is a named query, either file-level or attached to a type.
type Query struct {
	Name     string
	Language string
	Text     string
	Scope    string
}

// Key is "scope_name" for type-scoped queries and the plain name otherwise.
func (q *Query) Key() string {
	if q.Scope != "" {
		return q.Scope + "_" + q.Name
	}
	return q.Name
}

// StoredProc is a named stored-procedure query.
type StoredProc struct {
	Name       string
	Procedure  string
	Parameters []string
	Scope      string
}

// FetchPlan is a named set of fetch groups.
type FetchPlan struct {
	Name     string
	Groups   []string
	MaxDepth int
}

// Sequence is a named datastore sequence declared in a package.
type Sequence struct {
	Name              string
	DatastoreSequence string
	Strategy          string
	Package           string
}

// QualifiedName is "package.name", or the bare name outside a package.
func (s *Sequence) QualifiedName() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// QueryResult is a named mapping of query result columns.
type QueryResult struct {
	Name    string
	Columns []string
}
