/*
Package datastore defines the document store interface the metadata loaders
read descriptor documents from.

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]T, error)
	    Delete(ctx context.Context, key string) error
	}

DescriptorStore is DataStore[storagemodels.DescriptorRecord].

Implementations:
  - ddb: DynamoDB implementation with template-based key schemas
  - mock: in-memory implementation for tests
*/
package datastore
