/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"

	"github.com/suparena/entitymeta/metadata"
)

type sessionKey struct{}

// session is the state of one originating call. It travels in its context
// so that loaders calling back into the registry join it instead of
// re-acquiring the update lock.
type session struct {
	r   *Registry
	ctx context.Context

	// listeners is the snapshot taken when the session started.
	listeners []Listener
	notify    []*metadata.TypeDescriptor

	// discovered collects files registered while a descriptor was being
	// populated or initialized; depth > 0 marks that state.
	discovered []*metadata.DescriptorFile
	depth      int
}

func newSession(ctx context.Context, r *Registry, listeners []Listener) *session {
	s := &session{r: r, listeners: listeners}
	s.ctx = context.WithValue(ctx, sessionKey{}, s)
	return s
}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func (s *session) Descriptor(name string) (*metadata.TypeDescriptor, error) {
	return s.r.ensureDescriptor(s, name)
}

func (s *session) InlineDescriptor(name string) (*metadata.TypeDescriptor, error) {
	r := s.r
	if !r.settings.allowInline || r.inline == nil {
		return nil, nil
	}
	h, ok := r.resolveType(name)
	if !ok {
		return nil, nil
	}
	f, err := r.inline.Extract(h)
	if err != nil || f == nil {
		return nil, err
	}
	for _, td := range f.Types() {
		if td.Name == name {
			return td, nil
		}
	}
	return nil, nil
}

func (s *session) ResolveType(name string) (metadata.TypeHandle, bool) {
	return s.r.resolveType(name)
}

func (s *session) RequireBackingTypes() bool {
	return s.r.settings.requireBackingTypes && s.r.resolver != nil
}

func (s *session) DefaultNullable() bool {
	return s.r.settings.defaultNullable
}

func (s *session) Initialized(td *metadata.TypeDescriptor) {
	s.r.descriptorInitialized(s, td)
}

func (s *session) populate(td *metadata.TypeDescriptor) error {
	s.depth++
	defer func() { s.depth-- }()
	return td.Populate(s)
}

func (s *session) initialize(td *metadata.TypeDescriptor) error {
	s.depth++
	defer func() { s.depth-- }()
	return td.Initialize(s)
}
