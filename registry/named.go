/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/entitymeta/metadata"
)

// namedIndex holds the named components declared by descriptor files.
type namedIndex struct {
	queries      sync.Map // Query.Key() -> *metadata.Query
	storedProcs  sync.Map // name -> *metadata.StoredProc
	fetchPlans   sync.Map // name -> *metadata.FetchPlan
	sequences    sync.Map // qualified and short name -> *metadata.Sequence
	queryResults sync.Map // name -> *metadata.QueryResult
}

func newNamedIndex() *namedIndex {
	return &namedIndex{}
}

func (n *namedIndex) register(f *metadata.DescriptorFile) {
	for _, q := range f.Queries {
		n.queries.Store(q.Key(), q)
	}
	for _, p := range f.StoredProcs {
		n.storedProcs.Store(p.Name, p)
	}
	for _, fp := range f.FetchPlans {
		n.fetchPlans.Store(fp.Name, fp)
	}
	for _, qr := range f.QueryResults {
		n.queryResults.Store(qr.Name, qr)
	}
	for _, p := range f.Packages {
		for _, seq := range p.Sequences {
			n.sequences.Store(seq.QualifiedName(), seq)
			n.sequences.Store(seq.Name, seq)
		}
		for _, td := range p.Types {
			for _, q := range td.Queries {
				q.Scope = td.Name
				n.queries.Store(q.Key(), q)
			}
			for _, sp := range td.StoredProcs {
				sp.Scope = td.Name
				n.storedProcs.Store(sp.Name, sp)
			}
		}
	}
}

// forgetScope drops the queries and stored procedures attached to a type.
func (n *namedIndex) forgetScope(typeName string) {
	n.queries.Range(func(k, v any) bool {
		if v.(*metadata.Query).Scope == typeName {
			n.queries.Delete(k)
		}
		return true
	})
	n.storedProcs.Range(func(k, v any) bool {
		if v.(*metadata.StoredProc).Scope == typeName {
			n.storedProcs.Delete(k)
		}
		return true
	})
}

func (n *namedIndex) clear() {
	n.queries.Clear()
	n.storedProcs.Clear()
	n.fetchPlans.Clear()
	n.sequences.Clear()
	n.queryResults.Clear()
}

// Query returns a named query. A non-empty scope names the type the query is
// attached to; that type is loaded when the query is not yet known.
func (r *Registry) Query(ctx context.Context, scope, name string) *metadata.Query {
	key := (&metadata.Query{Scope: scope, Name: name}).Key()
	if v, ok := r.named.queries.Load(key); ok {
		return v.(*metadata.Query)
	}
	if scope == "" || r.GetDescriptor(ctx, scope) == nil {
		return nil
	}
	if v, ok := r.named.queries.Load(key); ok {
		return v.(*metadata.Query)
	}
	return nil
}

// QueryNames returns the keys of all registered queries, sorted.
func (r *Registry) QueryNames() []string {
	var names []string
	r.named.queries.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

func (r *Registry) StoredProc(name string) *metadata.StoredProc {
	if v, ok := r.named.storedProcs.Load(name); ok {
		return v.(*metadata.StoredProc)
	}
	return nil
}

func (r *Registry) FetchPlan(name string) *metadata.FetchPlan {
	if v, ok := r.named.fetchPlans.Load(name); ok {
		return v.(*metadata.FetchPlan)
	}
	return nil
}

// Sequence accepts both the package-qualified and the short sequence name.
func (r *Registry) Sequence(name string) *metadata.Sequence {
	if v, ok := r.named.sequences.Load(name); ok {
		return v.(*metadata.Sequence)
	}
	return nil
}

func (r *Registry) QueryResult(name string) *metadata.QueryResult {
	if v, ok := r.named.queryResults.Load(name); ok {
		return v.(*metadata.QueryResult)
	}
	return nil
}
