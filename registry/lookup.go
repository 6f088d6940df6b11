/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/suparena/entitymeta/catalog"
	"github.com/suparena/entitymeta/metadata"
	"github.com/suparena/entitymeta/monitoring"
)

// GetDescriptor returns the initialized descriptor for name, loading it on
// first use. It never fails: absence covers unknown types, types without
// persistence information and descriptors that could not be initialized.
func (r *Registry) GetDescriptor(ctx context.Context, name string) *metadata.TypeDescriptor {
	if v, ok := r.usable.Load(name); ok {
		r.metrics.Lookups.WithLabelValues(monitoring.LookupUsable).Inc()
		return v.(*metadata.TypeDescriptor)
	}
	if r.closed.Load() {
		return nil
	}
	if r.isWithoutPersistenceInfo(name) {
		r.metrics.Lookups.WithLabelValues(monitoring.LookupNegative).Inc()
		return nil
	}
	if !r.LoadPermitted() {
		if td := r.ReadDescriptor(name); td != nil && td.IsInitialized() {
			return td
		}
		r.metrics.Lookups.WithLabelValues(monitoring.LookupAbsent).Inc()
		return nil
	}

	s, originating, err := r.enter(ctx)
	if err != nil {
		return nil
	}
	if originating {
		defer r.exit(s)
	}
	td := r.lookup(s, name)
	if td == nil {
		r.metrics.Lookups.WithLabelValues(monitoring.LookupAbsent).Inc()
	} else {
		r.metrics.Lookups.WithLabelValues(monitoring.LookupLoaded).Inc()
	}
	return td
}

// GetDescriptorForType is GetDescriptor for a Go type.
func (r *Registry) GetDescriptorForType(ctx context.Context, t reflect.Type) *metadata.TypeDescriptor {
	name := ""
	if l, ok := r.resolver.(interface {
		Lookup(reflect.Type) (string, bool)
	}); ok {
		name, _ = l.Lookup(t)
	}
	if name == "" {
		name = catalog.NameOf(t)
	}
	return r.GetDescriptor(ctx, name)
}

// lookup is the slow path; the session holds the update lock.
func (r *Registry) lookup(s *session, name string) *metadata.TypeDescriptor {
	if td := r.ReadDescriptor(name); td != nil && td.IsInitialized() {
		r.usable.Store(name, td)
		return td
	}
	if r.isWithoutPersistenceInfo(name) {
		return nil
	}
	if r.resolver != nil && r.settings.requireBackingTypes {
		if _, ok := r.resolveType(name); !ok {
			r.logger.Debug("type not resolvable", zap.String("type", name))
			return nil
		}
	}

	td, err := r.ensureDescriptor(s, name)
	if err != nil {
		r.logger.Warn("failed to load descriptor", zap.String("type", name), zap.Error(err))
		return nil
	}
	if td == nil {
		return nil
	}

	if err := s.initialize(td); err != nil {
		if !r.evictIfLenient(td, err) {
			r.logger.Error("failed to initialize descriptor", zap.String("type", name), zap.Error(err))
		}
		return nil
	}
	if f := td.File(); f != nil && !f.IsInitialized() {
		s.discovered = append(s.discovered, f)
	}
	for _, err := range r.sweepDiscovered(s) {
		r.logger.Warn("descriptor sweep failed", zap.String("type", name), zap.Error(err))
	}
	if !td.IsInitialized() {
		return nil
	}
	r.usable.Store(name, td)
	return td
}

// ensureDescriptor returns the registered descriptor for name, asking the
// external channel and then the inline channel when none is registered.
// A miss is recorded in the negative cache only when both channels answered:
// every located source was read and the type resolved.
func (r *Registry) ensureDescriptor(s *session, name string) (*metadata.TypeDescriptor, error) {
	if td := r.ReadDescriptor(name); td != nil {
		return td, nil
	}
	if r.isWithoutPersistenceInfo(name) || !r.LoadPermitted() {
		return nil, nil
	}

	confirmed := true
	if r.settings.allowExternal && r.files != nil {
		if sources := r.files.Locate(s.ctx, name); len(sources) > 0 {
			_, errs := r.loadSources(s, sources)
			for _, err := range errs {
				r.logger.Warn("failed to read descriptor source", zap.String("type", name), zap.Error(err))
			}
			if td := r.ReadDescriptor(name); td != nil {
				return td, nil
			}
			if len(errs) > 0 {
				confirmed = false
			}
		}
	}

	h, resolved := r.resolveType(name)
	if r.resolver != nil && !resolved {
		confirmed = false
	}
	if resolved && r.settings.allowInline && r.inline != nil {
		f, err := r.inline.Extract(h)
		if err != nil {
			return nil, err
		}
		if f != nil {
			r.registerFile(s, f)
			if td := r.ReadDescriptor(name); td != nil {
				return td, nil
			}
		}
	}

	if !confirmed {
		r.logger.Debug("descriptor absence not confirmed", zap.String("type", name))
		return nil, nil
	}
	r.index.negative.Store(name, struct{}{})
	r.logger.Debug("no persistence descriptor", zap.String("type", name))
	return nil, nil
}

// descriptorInitialized updates the indices for td before it is marked
// Initialized.
func (r *Registry) descriptorInitialized(s *session, td *metadata.TypeDescriptor) {
	ix := r.index

	if td.Identity == metadata.IdentityApplication && !td.UsesSingleFieldIdentity() && td.ObjectIDClass != "" {
		ix.identity.add(td.ObjectIDClass, td.Name)
	}

	if sup := td.Superclass(); sup != nil && td.Kind() == metadata.KindClass {
		ix.direct.add(sup.Name, td.Name)
		if !td.IsAbstract() {
			for _, a := range td.Ancestors() {
				ix.concrete.add(a.Name, td.Name)
			}
		}
	}

	for _, iface := range td.Implements() {
		ix.implementers.add(iface, td.Name)
	}

	if prev := setByName(&ix.entityNames, td.EntityName, td); prev != nil {
		r.logger.Warn("entity name reassigned",
			zap.String("entity", td.EntityName),
			zap.String("previous", prev.Name),
			zap.String("type", td.Name))
	}

	if d := td.Discriminator; d != nil && d.Strategy != metadata.DiscriminatorNone && d.Value != "" {
		r.registerDiscriminator(td, d.Value)
	}

	if len(s.listeners) > 0 {
		s.notify = append(s.notify, td)
	}
	r.metrics.Initialized.Inc()
}

// DescriptorForEntityName returns the initialized descriptor registered under
// an entity name.
func (r *Registry) DescriptorForEntityName(entityName string) *metadata.TypeDescriptor {
	if v, ok := r.index.entityNames.Load(entityName); ok {
		return v.(*metadata.TypeDescriptor)
	}
	return nil
}

// DescriptorForDiscriminator returns the descriptor last registered with the
// discriminator value.
func (r *Registry) DescriptorForDiscriminator(value string) *metadata.TypeDescriptor {
	if v, ok := r.index.discriminators.Load(value); ok {
		return v.(*metadata.TypeDescriptor)
	}
	return nil
}

// DescriptorsWithIdentityClass returns the descriptors using identityClass
// as their application identity.
func (r *Registry) DescriptorsWithIdentityClass(identityClass string) []*metadata.TypeDescriptor {
	var out []*metadata.TypeDescriptor
	for _, name := range r.index.identity.get(identityClass) {
		if td := r.ReadDescriptor(name); td != nil {
			out = append(out, td)
		}
	}
	return out
}

// Subclasses returns the names of the direct subclasses of name, or all
// descendants when includeDescendants is set. It returns nil when there are
// none.
func (r *Registry) Subclasses(name string, includeDescendants bool) []string {
	direct := r.index.direct.get(name)
	if !includeDescendants || direct == nil {
		return direct
	}
	seen := make(map[string]struct{})
	var out []string
	queue := direct
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
		queue = append(queue, r.index.direct.get(n)...)
	}
	return out
}

// ConcreteSubclasses returns the names of all concrete descendants of name.
func (r *Registry) ConcreteSubclasses(name string) []string {
	return r.index.concrete.get(name)
}

// ImplementationsOf returns the initialized classes declaring iface.
func (r *Registry) ImplementationsOf(iface string) []string {
	return r.index.implementers.get(iface)
}

// IsPersistable reports whether name has a persistence-capable descriptor.
func (r *Registry) IsPersistable(ctx context.Context, name string) bool {
	td := r.GetDescriptor(ctx, name)
	return td != nil && td.Persistence == metadata.PersistenceCapable
}
