/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entitymeta/storagemodels"
)

// DataStore is a keyed document store for values of T.
type DataStore[T any] interface {
	// GetOne returns the value stored under key, or nil when there is none.
	GetOne(ctx context.Context, key string) (*T, error)

	Put(ctx context.Context, entity T) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)

	Delete(ctx context.Context, key string) error
}

// DescriptorStore holds descriptor documents.
type DescriptorStore = DataStore[storagemodels.DescriptorRecord]
