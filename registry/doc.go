/*
Package registry is the metadata registry: it loads, merges, caches and
indexes type descriptors and serves them to the persistence runtime.

Descriptors come from two channels, external descriptor files (FileLoader,
ArchiveLoader, UnitScanner) and inline declarations on the types themselves
(InlineExtractor). A lookup that misses the caches loads the type's source,
then populates and initializes its descriptor:

	reg := registry.New(cfg,
	    registry.WithTypeResolver(types),
	    registry.WithFileLoader(files),
	    registry.WithInlineExtractor(processor.New(types)),
	    registry.WithLogger(logger),
	)
	td := reg.GetDescriptor(ctx, "example.com/shop.Order")

Batch loads attempt every input and report all failures as one
*errors.LoadError:

	files, err := reg.LoadFiles(ctx, []string{"model/order.meta.yaml"})

Every mutation runs in a session owned by the outermost call, which holds the
update lock. The session travels in the context handed to loaders, so a
loader that calls back into the registry joins it rather than blocking.
Listeners receive each descriptor initialized during a session once, after
the session released the lock.

Indices maintained on initialization: entity names, discriminator values per
inheritance root, direct and concrete subclasses, application identity
classes and implemented interfaces. Types found to have no descriptor are
remembered in a negative cache until they are unloaded or registered.

SetLoadPermitted(false) freezes the registry after startup: lookups return
only initialized descriptors and batch loads do nothing.
*/
package registry
