/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"sync/atomic"
)

// PersistenceKind says how a type takes part in persistence.
type PersistenceKind string

const (
	PersistenceCapable PersistenceKind = "capable"
	PersistenceAware   PersistenceKind = "aware"
	NotPersistable     PersistenceKind = "none"
)

// IdentityStrategy is how instances of a type are identified in the store.
// The zero value means "not declared"; it is resolved during initialization.
type IdentityStrategy string

const (
	IdentityNone        IdentityStrategy = "none"
	IdentityApplication IdentityStrategy = "application"
	IdentityDatastore   IdentityStrategy = "datastore"
)

// Kind distinguishes the descriptor variants.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
)

func (k Kind) String() string {
	if k == KindInterface {
		return "interface"
	}
	return "class"
}

// Shape carries the kind-specific part of a TypeDescriptor. It is either a
// *ClassShape or an *InterfaceShape.
type Shape interface {
	Kind() Kind
	isShape()
}

// ClassShape is the payload of a concrete or abstract class descriptor.
type ClassShape struct {
	Superclass string
	Abstract   bool
	Implements []string
}

func (*ClassShape) Kind() Kind { return KindClass }
func (*ClassShape) isShape()   {}

// InterfaceShape is the payload of a persistent interface descriptor.
type InterfaceShape struct {
	Extends []string
}

func (*InterfaceShape) Kind() Kind { return KindInterface }
func (*InterfaceShape) isShape()   {}

// TypeDescriptor is the persistence metadata for one application type.
//
// Exported fields are filled by loaders while the descriptor is Raw and
// completed by Populate and Initialize. Once State reports Initialized the
// descriptor must be treated as read-only.
type TypeDescriptor struct {
	Name          string
	EntityName    string
	Persistence   PersistenceKind
	Identity      IdentityStrategy
	ObjectIDClass string
	Discriminator *Discriminator
	Members       []*Member
	Queries       []*Query
	StoredProcs   []*StoredProc
	Shape         Shape

	pkg                 *PackageGroup
	superclass          *TypeDescriptor
	singleFieldIdentity bool

	state        atomic.Int32
	populating   bool
	initializing bool
}

// NewClass returns a raw class descriptor.
func NewClass(name string, shape *ClassShape) *TypeDescriptor {
	if shape == nil {
		shape = &ClassShape{}
	}
	return &TypeDescriptor{Name: name, Shape: shape}
}

// NewInterface returns a raw interface descriptor.
func NewInterface(name string, shape *InterfaceShape) *TypeDescriptor {
	if shape == nil {
		shape = &InterfaceShape{}
	}
	return &TypeDescriptor{Name: name, Shape: shape}
}

func (td *TypeDescriptor) State() State { return State(td.state.Load()) }

func (td *TypeDescriptor) IsPopulated() bool { return td.State() >= Populated }

func (td *TypeDescriptor) IsInitialized() bool { return td.State() == Initialized }

// Kind reports the descriptor variant; descriptors without a shape are classes.
func (td *TypeDescriptor) Kind() Kind {
	if td.Shape == nil {
		return KindClass
	}
	return td.Shape.Kind()
}

// Class returns the class payload, or nil for interfaces.
func (td *TypeDescriptor) Class() *ClassShape {
	cs, _ := td.Shape.(*ClassShape)
	return cs
}

// SuperclassName is the declared persistable superclass, if any.
func (td *TypeDescriptor) SuperclassName() string {
	if cs := td.Class(); cs != nil {
		return cs.Superclass
	}
	return ""
}

// Superclass is the resolved superclass descriptor; nil until populated.
func (td *TypeDescriptor) Superclass() *TypeDescriptor { return td.superclass }

// Root walks the superclass chain to the inheritance root.
func (td *TypeDescriptor) Root() *TypeDescriptor {
	root := td
	for root.superclass != nil {
		root = root.superclass
	}
	return root
}

// Ancestors returns superclasses from the direct parent up to the root.
func (td *TypeDescriptor) Ancestors() []*TypeDescriptor {
	var out []*TypeDescriptor
	for s := td.superclass; s != nil; s = s.superclass {
		out = append(out, s)
	}
	return out
}

func (td *TypeDescriptor) IsAbstract() bool {
	if cs := td.Class(); cs != nil {
		return cs.Abstract
	}
	return true
}

// Implements lists the interfaces a class declares.
func (td *TypeDescriptor) Implements() []string {
	if cs := td.Class(); cs != nil {
		return cs.Implements
	}
	return nil
}

func (td *TypeDescriptor) UsesSingleFieldIdentity() bool { return td.singleFieldIdentity }

// Package is the grouping the descriptor was declared in.
func (td *TypeDescriptor) Package() *PackageGroup { return td.pkg }

// File is the descriptor file the descriptor belongs to, or nil when detached.
func (td *TypeDescriptor) File() *DescriptorFile {
	if td.pkg == nil {
		return nil
	}
	return td.pkg.file
}

// Member returns the member with the given name declared on this type.
func (td *TypeDescriptor) Member(name string) *Member {
	for _, m := range td.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// PrimaryKeyMembers returns the primary-key members including inherited ones,
// root first.
func (td *TypeDescriptor) PrimaryKeyMembers() []*Member {
	var out []*Member
	if td.superclass != nil {
		out = td.superclass.PrimaryKeyMembers()
	}
	for _, m := range td.Members {
		if m.PrimaryKey && m.Persistence != MemberNone {
			out = append(out, m)
		}
	}
	return out
}
