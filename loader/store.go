/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/entitymeta/datastore"
	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
	"github.com/suparena/entitymeta/storagemodels"
)

// StorePrefix marks sources read from a descriptor store.
const StorePrefix = "store:"

// StoreSource reads descriptor documents from a datastore. A document is
// keyed by a type name or a package path; its origin key is "store:<key>".
type StoreSource struct {
	store datastore.DescriptorStore
}

func NewStoreSource(store datastore.DescriptorStore) *StoreSource {
	return &StoreSource{store: store}
}

// Claims accepts sources carrying the store prefix.
func (s *StoreSource) Claims(source string) bool {
	return strings.HasPrefix(source, StorePrefix)
}

func (s *StoreSource) Key(source string) string {
	if strings.HasPrefix(source, StorePrefix) {
		return source
	}
	return StorePrefix + source
}

func (s *StoreSource) Load(ctx context.Context, sources []string, resolver metadata.TypeResolver) ([]*metadata.DescriptorFile, error) {
	var (
		files []*metadata.DescriptorFile
		errs  []error
	)
	for _, src := range sources {
		key := s.Key(src)
		rec, err := s.get(ctx, strings.TrimPrefix(key, StorePrefix))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rec == nil {
			errs = append(errs, errors.NewNotFoundError("descriptor document", key))
			continue
		}
		switch rec.Format {
		case "", storagemodels.FormatYAML:
		default:
			errs = append(errs, errors.NewValidationError(key, fmt.Sprintf("unsupported document format %q", rec.Format)))
			continue
		}
		file, err := ParseFile(key, []byte(rec.Body), resolver)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, file)
	}
	return files, errors.NewLoadError("read descriptor documents", errs)
}

// Locate returns the documents stored for the package of typeName and for
// the type itself, in that order.
func (s *StoreSource) Locate(ctx context.Context, typeName string) []string {
	var found []string
	for _, key := range []string{metadata.PackageOf(typeName), typeName} {
		if key == "" {
			continue
		}
		if rec, err := s.get(ctx, key); err == nil && rec != nil {
			found = append(found, StorePrefix+key)
		}
	}
	return found
}

// Publish stores body as the YAML document under key.
func (s *StoreSource) Publish(ctx context.Context, key string, body []byte) error {
	now := strfmt.DateTime(time.Now().UTC())
	return s.store.Put(ctx, storagemodels.DescriptorRecord{
		Key:       strings.TrimPrefix(key, StorePrefix),
		Format:    storagemodels.FormatYAML,
		Body:      string(body),
		UpdatedAt: &now,
	})
}

// get treats a not-found error like a missing record.
func (s *StoreSource) get(ctx context.Context, key string) (*storagemodels.DescriptorRecord, error) {
	rec, err := s.store.GetOne(ctx, key)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get descriptor document %s: %w", key, err)
	}
	return rec, nil
}
