/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entitymeta/datastore/mock"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/storagemodels"
)

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	store := mock.NewDescriptorStore()
	src := NewStoreSource(store)

	body := "packages:\n  - name: example.com/shop\n    classes:\n      - {name: Order}\n"
	require.NoError(t, src.Publish(ctx, "example.com/shop.Order", []byte(body)))

	rec, err := store.GetOne(ctx, "example.com/shop.Order")
	require.NoError(t, err)
	assert.Equal(t, storagemodels.FormatYAML, rec.Format)
	assert.NotNil(t, rec.UpdatedAt)

	t.Run("Locate", func(t *testing.T) {
		assert.Equal(t, []string{"store:example.com/shop.Order"}, src.Locate(ctx, "example.com/shop.Order"))
		assert.Empty(t, src.Locate(ctx, "example.com/shop.Invoice"))
	})

	t.Run("Load", func(t *testing.T) {
		files, err := src.Load(ctx, []string{"store:example.com/shop.Order", "store:missing"}, nil)
		require.Len(t, files, 1)
		assert.Equal(t, "store:example.com/shop.Order", files[0].Key)
		assert.Equal(t, "example.com/shop.Order", files[0].Types()[0].Name)

		require.Error(t, err)
		causes := errors.Causes(err)
		require.Len(t, causes, 1)
		assert.True(t, errors.IsNotFound(causes[0]))
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, storagemodels.DescriptorRecord{Key: "json-doc", Format: "json", Body: "{}"}))
		files, err := src.Load(ctx, []string{"json-doc"}, nil)
		assert.Empty(t, files)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("StoreFailure", func(t *testing.T) {
		failing := mock.NewDescriptorStore().WithGetError(errors.ErrClosed)
		_, err := NewStoreSource(failing).Load(ctx, []string{"store:x"}, nil)
		assert.ErrorIs(t, err, errors.ErrClosed)
		assert.Empty(t, NewStoreSource(failing).Locate(ctx, "example.com/shop.Order"))
	})
}
