/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

// MemberPersistence is the persistence modifier of a field.
type MemberPersistence string

const (
	MemberPersistent    MemberPersistence = "persistent"
	MemberTransactional MemberPersistence = "transactional"
	MemberNone          MemberPersistence = "none"
)

// Member describes one field of a type.
type Member struct {
	Name        string
	Column      string
	Type        string
	PrimaryKey  bool
	Persistence MemberPersistence
	Nullable    *bool
	MappedBy    string
}

// IsNullable reports the effective nullability after population.
func (m *Member) IsNullable() bool {
	return m.Nullable != nil && *m.Nullable
}

func (m *Member) clone() *Member {
	c := *m
	if m.Nullable != nil {
		v := *m.Nullable
		c.Nullable = &v
	}
	return &c
}

func (m *Member) populate(defaultNullable bool) {
	if m.Persistence == "" {
		m.Persistence = MemberPersistent
	}
	if m.Column == "" {
		m.Column = m.Name
	}
	if m.Nullable == nil {
		v := defaultNullable && !m.PrimaryKey
		m.Nullable = &v
	}
}

// DiscriminatorStrategy selects how stored discriminator values map to types.
type DiscriminatorStrategy string

const (
	DiscriminatorNone               DiscriminatorStrategy = "none"
	DiscriminatorClassName          DiscriminatorStrategy = "class-name"
	DiscriminatorValueMap           DiscriminatorStrategy = "value-map"
	DiscriminatorValueMapEntityName DiscriminatorStrategy = "value-map-entity-name"
)

// Discriminator is the discriminator configuration of a type.
type Discriminator struct {
	Strategy DiscriminatorStrategy
	Value    string
	Column   string
}

// UsesValueMap reports whether values are resolved through a DiscriminatorLookup.
func (d *Discriminator) UsesValueMap() bool {
	return d != nil && (d.Strategy == DiscriminatorValueMap || d.Strategy == DiscriminatorValueMapEntityName)
}
