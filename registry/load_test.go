/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

func TestLoadFilesAggregatesFailures(t *testing.T) {
	files := newFakeFiles()
	files.add("order.meta.yaml", orderFile)
	files.add("bad.meta.yaml", func() *metadata.DescriptorFile {
		// two primary keys and no identity class
		return file("bad.meta.yaml", class("Bad", pk("A", "B")))
	})
	files.fail["broken.meta.yaml"] = fmt.Errorf("reading broken.meta.yaml: %w", os.ErrPermission)
	reg := newTestRegistry(t, files, nil)

	loaded, err := reg.LoadFiles(context.Background(),
		[]string{"order.meta.yaml", "broken.meta.yaml", "bad.meta.yaml"})
	require.Error(t, err)
	assert.True(t, errors.IsLoadError(err))

	causes := errors.Causes(err)
	require.Len(t, causes, 2)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.True(t, errors.IsValidationError(err))

	require.Len(t, loaded, 2)
	assert.True(t, reg.FileDescriptor("order.meta.yaml").IsInitialized())
	assert.False(t, reg.FileDescriptor("bad.meta.yaml").IsInitialized())
	assert.True(t, reg.ReadDescriptor(qn("Order")).IsInitialized())
	assert.True(t, reg.ReadDescriptor(qn("LineItem")).IsInitialized())
	assert.False(t, reg.ReadDescriptor(qn("Bad")).IsInitialized())
	assert.Nil(t, reg.GetDescriptor(context.Background(), qn("Bad")))
}

func TestLoadFilesReusesRegisteredFiles(t *testing.T) {
	files := newFakeFiles()
	files.add("order.meta.yaml", orderFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	first, err := reg.LoadFiles(ctx, []string{"order.meta.yaml", "order.meta.yaml"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := reg.LoadFiles(ctx, []string{"order.meta.yaml"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, files.loadCount("order.meta.yaml"))
}

func TestMissingBackingType(t *testing.T) {
	build := func() *metadata.DescriptorFile {
		return file("model.meta.yaml", class("Order", pk("ID")), class("Ghost"))
	}

	t.Run("lenient evicts", func(t *testing.T) {
		files := newFakeFiles()
		files.add("model.meta.yaml", build)
		cfg := testConfig(func(c *config.Config) {
			c.RequireBackingTypes = true
			c.LenientMissingTypes = true
		})
		reg := newTestRegistry(t, files, cfg, WithTypeResolver(resolverFor(qn("Order"))))

		_, err := reg.LoadFiles(context.Background(), []string{"model.meta.yaml"})
		require.NoError(t, err)
		assert.False(t, reg.HasDescriptor(qn("Ghost")))
		assert.True(t, reg.ReadDescriptor(qn("Order")).IsInitialized())

		f := reg.FileDescriptor("model.meta.yaml")
		require.NotNil(t, f)
		assert.Len(t, f.Types(), 1)
		assert.True(t, f.IsInitialized())
	})

	t.Run("strict reports", func(t *testing.T) {
		files := newFakeFiles()
		files.add("model.meta.yaml", build)
		cfg := testConfig(func(c *config.Config) { c.RequireBackingTypes = true })
		reg := newTestRegistry(t, files, cfg, WithTypeResolver(resolverFor(qn("Order"))))

		_, err := reg.LoadFiles(context.Background(), []string{"model.meta.yaml"})
		require.Error(t, err)
		assert.True(t, errors.IsMissingType(err))
		require.True(t, reg.HasDescriptor(qn("Ghost")))
		assert.False(t, reg.ReadDescriptor(qn("Ghost")).IsInitialized())
		assert.True(t, reg.ReadDescriptor(qn("Order")).IsInitialized())
	})
}

func TestLoadTypes(t *testing.T) {
	files := newFakeFiles()
	files.add("order.meta.yaml", orderFile)
	reg := newTestRegistry(t, files, nil)

	loaded, err := reg.LoadTypes(context.Background(), []string{qn("Order"), "string", qn("Ghost")})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "order.meta.yaml", loaded[0].Key)
	assert.True(t, reg.ReadDescriptor(qn("LineItem")).IsInitialized())
	assert.False(t, reg.HasDescriptor(qn("Ghost")))
}

func TestLoadUserFile(t *testing.T) {
	reg := newTestRegistry(t, newFakeFiles(), nil)
	ctx := context.Background()

	tds, err := reg.LoadUserFile(ctx, file("ignored", class("Draft", pk("ID"))))
	require.NoError(t, err)
	require.Len(t, tds, 1)

	td := tds[0]
	assert.True(t, td.IsInitialized())
	assert.True(t, strings.HasPrefix(td.File().Key, "user:"))
	assert.Equal(t, metadata.OriginUser, td.File().Origin)
	assert.Same(t, td, reg.GetDescriptor(ctx, qn("Draft")))

	_, err = reg.LoadUserFile(ctx, nil)
	assert.True(t, errors.IsValidationError(err))
}

func jarFixture() fakeArchive {
	return fakeArchive{
		files: map[string]func() []*metadata.DescriptorFile{
			"model.jar": func() []*metadata.DescriptorFile {
				return []*metadata.DescriptorFile{
					file("model.jar!shop/Order.meta.yaml", class("Order", pk("ID"))),
				}
			},
		},
		types: map[string][]string{"model.jar": {qn("Customer")}},
	}
}

func TestLoadArchive(t *testing.T) {
	files := newFakeFiles()
	files.add("customer.meta.yaml", func() *metadata.DescriptorFile {
		return file("customer.meta.yaml", class("Customer", pk("Email")))
	})
	reg := newTestRegistry(t, files, nil, WithArchiveLoader(jarFixture()))
	ctx := context.Background()

	loaded, err := reg.LoadArchive(ctx, "model.jar")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, reg.ReadDescriptor(qn("Order")).IsInitialized())
	assert.True(t, reg.ReadDescriptor(qn("Customer")).IsInitialized())

	_, err = reg.LoadArchive(ctx, "missing.jar")
	assert.True(t, errors.IsNotFound(err))

	bare := newTestRegistry(t, files, nil)
	_, err = bare.LoadArchive(ctx, "model.jar")
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadUnit(t *testing.T) {
	files := newFakeFiles()
	files.add("mapping.meta.yaml", func() *metadata.DescriptorFile {
		return file("mapping.meta.yaml", class("Invoice", pk("Number")))
	})
	files.add("/srv/model/shop/Payment.meta.yaml", func() *metadata.DescriptorFile {
		return file("/srv/model/shop/Payment.meta.yaml", class("Payment"))
	})
	files.add("customer.meta.yaml", func() *metadata.DescriptorFile {
		return file("customer.meta.yaml", class("Customer", pk("Email")))
	})
	scanner := fakeScanner{"/srv/model": {"/srv/model/shop/Payment.meta.yaml"}}
	unit := &metadata.Unit{
		Name:         "shop",
		Root:         "/srv/model",
		MappingFiles: []string{"mapping.meta.yaml"},
		Archives:     []string{"model.jar"},
		Types:        []string{qn("Customer")},
	}

	t.Run("everything", func(t *testing.T) {
		reg := newTestRegistry(t, files, nil, WithUnitScanner(scanner), WithArchiveLoader(jarFixture()))
		loaded, err := reg.LoadUnit(context.Background(), unit)
		require.NoError(t, err)
		assert.Len(t, loaded, 4)
		assert.Equal(t, []string{qn("Customer"), qn("Invoice"), qn("Order"), qn("Payment")}, reg.TypesWithDescriptors())
	})

	t.Run("exclude unlisted", func(t *testing.T) {
		reg := newTestRegistry(t, files, nil, WithUnitScanner(scanner), WithArchiveLoader(jarFixture()))
		listed := *unit
		listed.ExcludeUnlisted = true
		_, err := reg.LoadUnit(context.Background(), &listed)
		require.NoError(t, err)
		assert.False(t, reg.HasDescriptor(qn("Payment")))
		assert.True(t, reg.HasDescriptor(qn("Invoice")))
	})

	t.Run("nil unit", func(t *testing.T) {
		reg := newTestRegistry(t, files, nil)
		_, err := reg.LoadUnit(context.Background(), nil)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestLoadUnitRetriesUninitialized(t *testing.T) {
	files := newFakeFiles()
	files.add("child.meta.yaml", func() *metadata.DescriptorFile {
		return file("child.meta.yaml", class("Child", extends("Parent")))
	})
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	_, err := reg.LoadFiles(ctx, []string{"child.meta.yaml"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	require.False(t, reg.ReadDescriptor(qn("Child")).IsInitialized())

	files.add("parent.meta.yaml", func() *metadata.DescriptorFile {
		return file("parent.meta.yaml", class("Parent"))
	})
	_, err = reg.LoadUnit(ctx, &metadata.Unit{Name: "retry", MappingFiles: []string{"parent.meta.yaml"}})
	require.NoError(t, err)

	child := reg.ReadDescriptor(qn("Child"))
	assert.True(t, child.IsInitialized())
	assert.Equal(t, qn("Parent"), child.Superclass().Name)
}

func TestSweepPasses(t *testing.T) {
	add := func(files *fakeFiles) {
		files.add("a.meta.yaml", func() *metadata.DescriptorFile {
			return file("a.meta.yaml", class("A", extends("B")))
		})
		files.add("b.meta.yaml", func() *metadata.DescriptorFile {
			return file("b.meta.yaml", class("B"), class("B2", extends("D")))
		})
		files.add("d.meta.yaml", func() *metadata.DescriptorFile {
			return file("d.meta.yaml", class("D"), class("D2"))
		})
	}

	for _, tc := range []struct {
		passes   int
		expectD2 bool
	}{
		{passes: 1, expectD2: false},
		{passes: 2, expectD2: true},
		{passes: 0, expectD2: true},
	} {
		t.Run(fmt.Sprintf("passes=%d", tc.passes), func(t *testing.T) {
			files := newFakeFiles()
			add(files)
			reg := newTestRegistry(t, files, testConfig(func(c *config.Config) { c.SweepPasses = tc.passes }))

			require.NotNil(t, reg.GetDescriptor(context.Background(), qn("A")))
			assert.True(t, reg.ReadDescriptor(qn("B2")).IsInitialized())
			assert.True(t, reg.ReadDescriptor(qn("D")).IsInitialized())
			assert.Equal(t, tc.expectD2, reg.ReadDescriptor(qn("D2")).IsInitialized())
		})
	}
}

func TestEntityNameLastWriteWins(t *testing.T) {
	files := newFakeFiles()
	files.add("alpha.meta.yaml", func() *metadata.DescriptorFile {
		return file("alpha.meta.yaml", class("Alpha", entity("Thing")))
	})
	files.add("beta.meta.yaml", func() *metadata.DescriptorFile {
		return file("beta.meta.yaml", class("Beta", entity("Thing")))
	})
	reg := newTestRegistry(t, files, nil)

	_, err := reg.LoadFiles(context.Background(), []string{"alpha.meta.yaml", "beta.meta.yaml"})
	require.NoError(t, err)
	require.NotNil(t, reg.DescriptorForEntityName("Thing"))
	assert.Equal(t, qn("Beta"), reg.DescriptorForEntityName("Thing").Name)
}

func TestBatchLoadKeepsDiscoveryOrder(t *testing.T) {
	files := newFakeFiles()
	files.add("b.meta.yaml", func() *metadata.DescriptorFile { return file("b.meta.yaml", class("B")) })
	files.add("a.meta.yaml", func() *metadata.DescriptorFile { return file("a.meta.yaml", class("A")) })
	files.add("c.meta.yaml", func() *metadata.DescriptorFile { return file("c.meta.yaml", class("C")) })
	reg := newTestRegistry(t, files, nil)
	rec := &recorder{}
	reg.AddListener(rec)
	ctx := context.Background()

	_, err := reg.LoadFiles(ctx, []string{"a.meta.yaml"})
	require.NoError(t, err)

	loaded, err := reg.LoadFiles(ctx, []string{"b.meta.yaml", "a.meta.yaml", "c.meta.yaml"})
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []string{"b.meta.yaml", "a.meta.yaml", "c.meta.yaml"},
		[]string{loaded[0].Key, loaded[1].Key, loaded[2].Key})
	assert.Equal(t, []string{qn("A"), qn("B"), qn("C")}, rec.seen())
}

func TestBatchLoadNotifiesListeners(t *testing.T) {
	files := newFakeFiles()
	files.add("order.meta.yaml", orderFile)
	reg := newTestRegistry(t, files, nil)
	rec := &recorder{}
	remove := reg.AddListener(rec)

	_, err := reg.LoadFiles(context.Background(), []string{"order.meta.yaml"})
	require.NoError(t, err)
	assert.Equal(t, []string{qn("Order"), qn("LineItem")}, rec.seen())

	remove()
	files.add("customer.meta.yaml", func() *metadata.DescriptorFile {
		return file("customer.meta.yaml", class("Customer"))
	})
	_, err = reg.LoadFiles(context.Background(), []string{"customer.meta.yaml"})
	require.NoError(t, err)
	assert.Len(t, rec.seen(), 2)
}
