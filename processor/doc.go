/*
Package processor extracts inline persistence descriptors from Go struct tags.

A struct opts in by embedding Entity. The tag on the embedded Entity holds
type-level options, field tags hold member options:

	type Order struct {
	    processor.Entity `persist:"entity=Order,identity=application,discriminator=value-map,value=O"`
	    Base                                // registered in the catalog: superclass
	    ID     string `persist:"pk,column=order_id"`
	    Note   string `persist:"nullable"`
	    cache  string                       // unexported: ignored
	    Draft  bool   `persist:"-"`          // not persistent
	}

Type options: entity, identity (application|datastore|none), objectid,
abstract, aware, implements (a|b), discriminator (strategy), value,
discriminator-column.

Member options: column, pk, nullable, notnull, mapped-by, transactional.

An embedded struct whose type is registered with the Namer becomes the
superclass; other embedded structs contribute their fields. The result is a
DescriptorFile keyed "inline:<type name>" holding exactly one descriptor.
*/
package processor
