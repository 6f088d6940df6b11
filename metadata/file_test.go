/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorFile(t *testing.T) {
	a, b, c := NewClass(shop+".A", nil), NewClass(shop+".B", nil), NewInterface(shop+".C", nil)
	f := NewFile("model.meta.yaml", OriginExternal,
		&PackageGroup{Name: shop, Types: []*TypeDescriptor{a, b}, Sequences: []*Sequence{{Name: "seq"}}},
		&PackageGroup{Name: shop, Types: []*TypeDescriptor{c}},
	)

	assert.Equal(t, []*TypeDescriptor{a, b, c}, f.Types())
	assert.Same(t, f, a.File())
	assert.Same(t, f.Packages[1], c.Package())
	assert.Equal(t, shop+".seq", f.Packages[0].Sequences[0].QualifiedName())

	require.True(t, f.Remove(b))
	assert.Nil(t, b.File())
	assert.False(t, f.Remove(b))
	assert.Equal(t, []*TypeDescriptor{a, c}, f.Types())

	f.Retain(func(td *TypeDescriptor) bool { return td.Kind() == KindClass })
	assert.Equal(t, []*TypeDescriptor{a}, f.Types())
	assert.Nil(t, c.File())

	assert.False(t, f.IsInitialized())
	f.MarkInitialized()
	assert.True(t, f.IsInitialized())
	assert.Equal(t, "external", f.Origin.String())
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, "all", (&Query{Name: "all"}).Key())
	assert.Equal(t, shop+".Order_open", (&Query{Name: "open", Scope: shop + ".Order"}).Key())
	assert.Equal(t, "seq", (&Sequence{Name: "seq"}).QualifiedName())
}

func TestDiscriminatorLookup(t *testing.T) {
	l := NewDiscriminatorLookup()
	assert.Empty(t, l.Add("Car", "C"))
	assert.Empty(t, l.Add("Truck", "T"))

	assert.Equal(t, "Car", l.Add("Bus", "C"))
	_, ok := l.Value("Car")
	assert.False(t, ok)
	name, ok := l.TypeName("C")
	require.True(t, ok)
	assert.Equal(t, "Bus", name)

	l.Add("Truck", "TR")
	_, ok = l.TypeName("T")
	assert.False(t, ok)
	assert.Equal(t, 2, l.Len())

	l.Remove("Truck")
	_, ok = l.TypeName("TR")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())

	assert.True(t, (&Discriminator{Strategy: DiscriminatorValueMapEntityName}).UsesValueMap())
	assert.False(t, (*Discriminator)(nil).UsesValueMap())
}
