/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymeta/metadata"
)

func TestUnloadRemovesEverywhereAndReloads(t *testing.T) {
	files := newFakeFiles()
	files.add("order.meta.yaml", orderFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	old := reg.GetDescriptor(ctx, qn("Order"))
	require.NotNil(t, old)
	sibling := reg.ReadDescriptor(qn("LineItem"))
	require.True(t, reg.index.references(qn("Order")))

	found, err := reg.Unload(ctx, qn("Order"))
	require.NoError(t, err)
	assert.True(t, found)

	assert.False(t, reg.HasDescriptor(qn("Order")))
	assert.False(t, reg.index.references(qn("Order")))
	assert.Nil(t, reg.DescriptorForEntityName("Order"))
	assert.Nil(t, reg.FileDescriptor("order.meta.yaml"))
	assert.Nil(t, old.File())
	assert.Same(t, sibling, reg.ReadDescriptor(qn("LineItem")))

	reloaded := reg.GetDescriptor(ctx, qn("Order"))
	require.NotNil(t, reloaded)
	assert.NotSame(t, old, reloaded)
	assert.True(t, reloaded.IsInitialized())
	assert.Equal(t, 2, files.loadCount("order.meta.yaml"))
	assert.Same(t, sibling, reg.ReadDescriptor(qn("LineItem")), "siblings keep their descriptor")
	assert.Same(t, reloaded, reg.DescriptorForEntityName("Order"))
}

func TestUnloadHierarchyMember(t *testing.T) {
	files := newFakeFiles()
	files.add("hierarchy.meta.yaml", hierarchyFile)
	files.add("vehicle.meta.yaml", vehicleFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	_, err := reg.LoadFiles(ctx, []string{"hierarchy.meta.yaml", "vehicle.meta.yaml"})
	require.NoError(t, err)

	for _, name := range []string{qn("Leaf"), qn("Mid"), qn("Car"), qn("Vehicle")} {
		found, err := reg.Unload(ctx, name)
		require.NoError(t, err)
		assert.True(t, found, name)
		assert.False(t, reg.index.references(name), name)
	}

	assert.Equal(t, []string{qn("Other")}, reg.Subclasses(qn("Base"), true))
	assert.Equal(t, []string{qn("Other")}, reg.ConcreteSubclasses(qn("Base")))
	assert.Nil(t, reg.ImplementationsOf(qn("Shape")))
	assert.Nil(t, reg.DescriptorForDiscriminator("C"))

	_, ok := reg.TypeNameForDiscriminator(qn("Vehicle"), "Truck")
	assert.False(t, ok, "the lookup of an unloaded root is dropped")
}

func TestUnloadUnknown(t *testing.T) {
	reg := newTestRegistry(t, newFakeFiles(), nil)
	found, err := reg.Unload(context.Background(), qn("Nothing"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnloadInlineDescriptor(t *testing.T) {
	inline := fakeInline{qn("Customer"): func() *metadata.TypeDescriptor { return class("Customer", pk("Email")) }}
	reg := newTestRegistry(t, newFakeFiles(), nil, WithInlineExtractor(inline),
		WithTypeResolver(resolverFor(qn("Customer"))))
	ctx := context.Background()

	first := reg.GetDescriptor(ctx, qn("Customer"))
	require.NotNil(t, first)
	found, err := reg.Unload(ctx, qn("Customer"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, reg.FileDescriptor("inline:"+qn("Customer")))

	second := reg.GetDescriptor(ctx, qn("Customer"))
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}
