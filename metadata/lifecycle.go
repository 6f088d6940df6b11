/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"fmt"

	"github.com/suparena/entitymeta/errors"
)

// State is the lifecycle state of a TypeDescriptor.
type State int32

const (
	Raw State = iota
	Populated
	Initialized
)

func (s State) String() string {
	switch s {
	case Populated:
		return "populated"
	case Initialized:
		return "initialized"
	default:
		return "raw"
	}
}

// Environment is what a descriptor needs from its registry while it moves
// through the lifecycle. Implementations hold the registry update lock for
// the whole duration of Populate and Initialize.
type Environment interface {
	// Descriptor returns the registered descriptor for name, loading its
	// source when needed. It returns nil when no channel describes the type.
	Descriptor(name string) (*TypeDescriptor, error)

	// InlineDescriptor returns the inline-channel descriptor for name to be
	// merged into a file-channel descriptor, or nil.
	InlineDescriptor(name string) (*TypeDescriptor, error)

	// ResolveType resolves a fully-qualified type name.
	ResolveType(name string) (TypeHandle, bool)

	// RequireBackingTypes makes Initialize fail with a MissingTypeError when
	// ResolveType cannot find the descriptor's type.
	RequireBackingTypes() bool

	DefaultNullable() bool

	// Initialized is called once, after validation succeeds and before the
	// descriptor is marked Initialized, to maintain derived indices.
	Initialized(td *TypeDescriptor)
}

// Populate applies defaults, merges inline-channel data into file-channel
// descriptors and resolves the superclass. It is idempotent.
func (td *TypeDescriptor) Populate(env Environment) error {
	if td.State() >= Populated || td.populating {
		return nil
	}
	td.populating = true
	defer func() { td.populating = false }()

	if f := td.File(); f != nil && f.Origin == OriginExternal {
		inline, err := env.InlineDescriptor(td.Name)
		if err != nil {
			return fmt.Errorf("populating %s: %w", td.Name, err)
		}
		if inline != nil {
			if err := td.merge(inline); err != nil {
				return err
			}
		}
	}

	if td.Shape == nil {
		td.Shape = &ClassShape{}
	}
	if td.Persistence == "" {
		td.Persistence = PersistenceCapable
	}
	if td.EntityName == "" {
		td.EntityName = ShortName(td.Name)
	}

	if name := td.SuperclassName(); name != "" {
		sd, err := env.Descriptor(name)
		if err != nil {
			return fmt.Errorf("populating superclass of %s: %w", td.Name, err)
		}
		if sd == nil {
			return errors.NewValidationError("superclass",
				fmt.Sprintf("%s declares superclass %s which has no persistence descriptor", td.Name, name))
		}
		if sd.Kind() != KindClass {
			return errors.NewValidationError("superclass",
				fmt.Sprintf("%s declares superclass %s which is an interface", td.Name, name))
		}
		if err := sd.Populate(env); err != nil {
			return err
		}
		td.superclass = sd
	}

	for _, m := range td.Members {
		m.populate(env.DefaultNullable())
	}

	if d := td.Discriminator; d != nil {
		switch d.Strategy {
		case DiscriminatorClassName:
			d.Value = td.Name
		case DiscriminatorValueMap, DiscriminatorValueMapEntityName:
			if d.Value == "" {
				d.Value = td.EntityName
			}
		case "":
			d.Strategy = DiscriminatorNone
		}
	}

	td.state.Store(int32(Populated))
	return nil
}

// Initialize runs the cross-type checks, lets the environment update its
// indices and marks the descriptor Initialized. The superclass chain is
// initialized first. It is idempotent and tolerates reentry while the same
// descriptor is being initialized further up the call stack.
func (td *TypeDescriptor) Initialize(env Environment) error {
	if td.IsInitialized() || td.initializing {
		return nil
	}
	if err := td.Populate(env); err != nil {
		return err
	}
	td.initializing = true
	defer func() { td.initializing = false }()

	if env.RequireBackingTypes() {
		if _, ok := env.ResolveType(td.Name); !ok {
			return errors.NewMissingTypeError(td.Name)
		}
	}

	if sd := td.superclass; sd != nil {
		if err := sd.Initialize(env); err != nil {
			return fmt.Errorf("initialising superclass of %s: %w", td.Name, err)
		}
		if td.Identity == "" {
			td.Identity = sd.Identity
		} else if sd.Identity != "" && td.Identity != sd.Identity {
			return errors.NewValidationError("identity",
				fmt.Sprintf("%s declares %s identity but its superclass %s uses %s", td.Name, td.Identity, sd.Name, sd.Identity))
		}
		if td.ObjectIDClass == "" {
			td.ObjectIDClass = sd.ObjectIDClass
			td.singleFieldIdentity = sd.singleFieldIdentity
		}
	}

	if err := td.validateIdentity(); err != nil {
		return err
	}

	env.Initialized(td)
	td.state.Store(int32(Initialized))
	return nil
}

func (td *TypeDescriptor) validateIdentity() error {
	if td.Kind() != KindClass || td.Persistence != PersistenceCapable {
		return nil
	}
	pks := td.PrimaryKeyMembers()
	if td.Identity == "" {
		if len(pks) > 0 {
			td.Identity = IdentityApplication
		} else {
			td.Identity = IdentityDatastore
		}
	}
	if td.Identity != IdentityApplication {
		return nil
	}
	if len(pks) == 0 {
		if td.IsAbstract() {
			return nil
		}
		return errors.NewValidationError("primaryKey",
			fmt.Sprintf("%s uses application identity but declares no primary-key member", td.Name))
	}
	if td.ObjectIDClass != "" || td.singleFieldIdentity {
		return nil
	}
	if len(pks) == 1 {
		td.singleFieldIdentity = true
		return nil
	}
	return errors.NewValidationError("objectIdClass",
		fmt.Sprintf("%s has %d primary-key members and needs an identity class", td.Name, len(pks)))
}

// merge folds an inline-channel descriptor into a file-channel one. Values
// declared in the file win; structural disagreements are conflicts.
func (td *TypeDescriptor) merge(in *TypeDescriptor) error {
	if td.Shape != nil && in.Shape != nil && td.Kind() != in.Kind() {
		return errors.NewConflictError(td.Name, "kind", td.Kind().String(), in.Kind().String())
	}
	if td.Shape == nil {
		td.Shape = in.Shape
	}
	if cs, ics := td.Class(), in.Class(); cs != nil && ics != nil {
		switch {
		case cs.Superclass == "":
			cs.Superclass = ics.Superclass
		case ics.Superclass != "" && cs.Superclass != ics.Superclass:
			return errors.NewConflictError(td.Name, "superclass", cs.Superclass, ics.Superclass)
		}
		cs.Abstract = cs.Abstract || ics.Abstract
		cs.Implements = unionStrings(cs.Implements, ics.Implements)
	}

	if td.EntityName == "" {
		td.EntityName = in.EntityName
	}
	if td.Persistence == "" {
		td.Persistence = in.Persistence
	}
	if td.Identity == "" {
		td.Identity = in.Identity
	}
	if td.ObjectIDClass == "" {
		td.ObjectIDClass = in.ObjectIDClass
	}
	if td.Discriminator == nil && in.Discriminator != nil {
		d := *in.Discriminator
		td.Discriminator = &d
	}

	for _, im := range in.Members {
		m := td.Member(im.Name)
		if m == nil {
			td.Members = append(td.Members, im.clone())
			continue
		}
		if m.Column == "" {
			m.Column = im.Column
		}
		if m.Type == "" {
			m.Type = im.Type
		}
		if m.Nullable == nil && im.Nullable != nil {
			v := *im.Nullable
			m.Nullable = &v
		}
		if m.MappedBy == "" {
			m.MappedBy = im.MappedBy
		}
		if m.Persistence == "" {
			m.Persistence = im.Persistence
		}
		m.PrimaryKey = m.PrimaryKey || im.PrimaryKey
	}

	for _, q := range in.Queries {
		if !hasQuery(td.Queries, q.Name) {
			c := *q
			td.Queries = append(td.Queries, &c)
		}
	}
	return nil
}

func hasQuery(qs []*Query, name string) bool {
	for _, q := range qs {
		if q.Name == name {
			return true
		}
	}
	return false
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			a = append(a, s)
			seen[s] = struct{}{}
		}
	}
	return a
}
