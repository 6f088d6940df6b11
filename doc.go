/*
Package entitymeta is a persistence metadata registry for Go applications.

It answers one question for a persistence runtime: what is the persistence
descriptor of this type? Descriptors come from YAML descriptor files on disk,
from descriptor documents kept in DynamoDB, from archives and from struct tags
on the types themselves. They are loaded lazily on first lookup, validated
against their inheritance chain, cached and indexed.

Basic Usage:

	m, err := entitymeta.New(ctx, cfg, entitymeta.WithRoots("model"))
	if err != nil {
	    return err
	}
	defer m.Close()

	if _, err := entitymeta.Register[shop.Order](m); err != nil {
	    return err
	}
	td := entitymeta.DescriptorFor[shop.Order](ctx, m)

Batch loads report every failure at once:

	files, err := m.Registry().LoadFiles(ctx, []string{"model/shop/Order.meta.yaml"})
	for _, cause := range errors.Causes(err) {
	    log.Println(cause)
	}

A unit descriptor (TOML) lists mapping files, archives and types to load
together:

	files, err := m.LoadUnitFile(ctx, "persistence.toml")

See package registry for the lookup and locking model and package processor
for the struct-tag syntax.
*/
package entitymeta
