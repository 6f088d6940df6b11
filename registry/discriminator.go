/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/suparena/entitymeta/metadata"
)

// RegisterDiscriminatorValue maps value to td in the lookup of td's
// inheritance root and in the discriminator-value index.
func (r *Registry) RegisterDiscriminatorValue(ctx context.Context, td *metadata.TypeDescriptor, value string) error {
	if td == nil || value == "" {
		return nil
	}
	s, originating, err := r.enter(ctx)
	if err != nil {
		return err
	}
	if originating {
		defer r.exit(s)
	}
	r.registerDiscriminator(td, value)
	return nil
}

func (r *Registry) registerDiscriminator(td *metadata.TypeDescriptor, value string) {
	root := td.Root()
	if prev := r.index.lookupFor(root.Name).Add(td.Name, value); prev != "" {
		r.logger.Warn("discriminator value reassigned",
			zap.String("root", root.Name),
			zap.String("value", value),
			zap.String("previous", prev),
			zap.String("type", td.Name))
	}
	setByName(&r.index.discriminators, value, td)
}

// DiscriminatorValueFor returns the value registered for td under its root.
func (r *Registry) DiscriminatorValueFor(td *metadata.TypeDescriptor) (string, bool) {
	v, ok := r.index.lookups.Load(td.Root().Name)
	if !ok {
		return "", false
	}
	return v.(*metadata.DiscriminatorLookup).Value(td.Name)
}

// TypeNameForDiscriminator looks value up in the lookup of the named root.
func (r *Registry) TypeNameForDiscriminator(root, value string) (string, bool) {
	v, ok := r.index.lookups.Load(root)
	if !ok {
		return "", false
	}
	return v.(*metadata.DiscriminatorLookup).TypeName(value)
}

// ResolveDiscriminator maps a stored discriminator value, read for a row of
// td's hierarchy, to a type name using the hierarchy's strategy.
func (r *Registry) ResolveDiscriminator(td *metadata.TypeDescriptor, value string) (string, bool) {
	d := effectiveDiscriminator(td)
	if d == nil || value == "" {
		return "", false
	}
	root := td.Root().Name
	switch d.Strategy {
	case metadata.DiscriminatorClassName:
		return value, true
	case metadata.DiscriminatorValueMap:
		return r.TypeNameForDiscriminator(root, value)
	case metadata.DiscriminatorValueMapEntityName:
		if name, ok := r.TypeNameForDiscriminator(root, value); ok {
			return name, true
		}
		if e := r.DescriptorForEntityName(value); e != nil {
			return e.Name, true
		}
		return "", false
	default:
		return "", false
	}
}

// effectiveDiscriminator is the discriminator declared nearest to td.
func effectiveDiscriminator(td *metadata.TypeDescriptor) *metadata.Discriminator {
	for t := td; t != nil; t = t.Superclass() {
		if t.Discriminator != nil && t.Discriminator.Strategy != metadata.DiscriminatorNone {
			return t.Discriminator
		}
	}
	return nil
}
