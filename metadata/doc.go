/*
Package metadata defines the persistence descriptors held by the registry.

A TypeDescriptor describes one application type. Its kind-specific payload is
a Shape, either a *ClassShape (superclass, abstract flag, implemented
interfaces) or an *InterfaceShape. Descriptors are grouped into PackageGroups
inside a DescriptorFile, which records the origin key and channel the
descriptors came from.

Lifecycle:

	Raw         discovered by a loader, nothing checked
	Populated   defaults applied, inline data merged, superclass resolved
	Initialized cross-type validation done, registry indices updated

Both transitions take an Environment, implemented by the registry, through
which a descriptor can pull in its superclass and report its completion:

	if err := td.Initialize(env); err != nil {
	    return err
	}

DiscriminatorLookup holds the value/type-name pairs of one inheritance root.
*/
package metadata
