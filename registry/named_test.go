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

func namedFile() *metadata.DescriptorFile {
	order := class("Order", pk("ID"))
	order.Queries = []*metadata.Query{{Name: "byCustomer", Language: "SQL", Text: "SELECT * FROM orders WHERE customer = ?"}}
	order.StoredProcs = []*metadata.StoredProc{{Name: "archiveOrders", Procedure: "ARCHIVE_ORDERS"}}

	f := metadata.NewFile("named.meta.yaml", metadata.OriginExternal, &metadata.PackageGroup{
		Name:      shop,
		Types:     []*metadata.TypeDescriptor{order},
		Sequences: []*metadata.Sequence{{Name: "orderSeq", DatastoreSequence: "ORDER_SEQ"}},
	})
	f.Queries = []*metadata.Query{{Name: "allOrders", Language: "JDOQL", Text: "SELECT FROM Order"}}
	f.FetchPlans = []*metadata.FetchPlan{{Name: "withLines", Groups: []string{"default", "lines"}, MaxDepth: 2}}
	f.QueryResults = []*metadata.QueryResult{{Name: "orderTotals", Columns: []string{"id", "total"}}}
	return f
}

func TestNamedComponents(t *testing.T) {
	files := newFakeFiles()
	files.add("named.meta.yaml", namedFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	_, err := reg.LoadFiles(ctx, []string{"named.meta.yaml"})
	require.NoError(t, err)

	require.NotNil(t, reg.Query(ctx, "", "allOrders"))
	scoped := reg.Query(ctx, qn("Order"), "byCustomer")
	require.NotNil(t, scoped)
	assert.Equal(t, qn("Order"), scoped.Scope)
	assert.Nil(t, reg.Query(ctx, "", "byCustomer"))
	assert.Equal(t, []string{"allOrders", qn("Order") + "_byCustomer"}, reg.QueryNames())

	require.NotNil(t, reg.StoredProc("archiveOrders"))
	assert.Equal(t, qn("Order"), reg.StoredProc("archiveOrders").Scope)
	assert.Equal(t, 2, reg.FetchPlan("withLines").MaxDepth)
	assert.Equal(t, []string{"id", "total"}, reg.QueryResult("orderTotals").Columns)

	seq := reg.Sequence(shop + ".orderSeq")
	require.NotNil(t, seq)
	assert.Same(t, seq, reg.Sequence("orderSeq"))
	assert.Equal(t, "ORDER_SEQ", seq.DatastoreSequence)

	assert.Nil(t, reg.FetchPlan("missing"))
	assert.Nil(t, reg.QueryResult("missing"))
}

func TestScopedQueryLoadsItsType(t *testing.T) {
	files := newFakeFiles()
	files.add("named.meta.yaml", namedFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	q := reg.Query(ctx, qn("Order"), "byCustomer")
	require.NotNil(t, q)
	assert.Equal(t, "SQL", q.Language)
	assert.True(t, reg.ReadDescriptor(qn("Order")).IsInitialized())

	assert.Nil(t, reg.Query(ctx, qn("Missing"), "byCustomer"))
}

func TestUnloadDropsScopedComponents(t *testing.T) {
	files := newFakeFiles()
	files.add("named.meta.yaml", namedFile)
	reg := newTestRegistry(t, files, nil)
	ctx := context.Background()

	_, err := reg.LoadFiles(ctx, []string{"named.meta.yaml"})
	require.NoError(t, err)
	_, err = reg.Unload(ctx, qn("Order"))
	require.NoError(t, err)

	assert.Nil(t, reg.StoredProc("archiveOrders"))
	assert.Equal(t, []string{"allOrders"}, reg.QueryNames())
	assert.NotNil(t, reg.FetchPlan("withLines"))
}
