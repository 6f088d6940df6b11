/*
Package loader reads descriptor sources for the registry.

Descriptor files are YAML documents:

	packages:
	  - name: example.com/shop
	    sequences:
	      - name: orderSeq
	        datastore-sequence: ORDER_SEQ
	    classes:
	      - name: Order
	        identity: application
	        superclass: Base
	        discriminator: {strategy: value-map, value: O}
	        fields:
	          - {name: ID, column: order_id, primary-key: true}
	        queries:
	          - {name: open, language: sql, query: "SELECT * FROM orders WHERE open"}
	    interfaces:
	      - name: Priced
	queries:
	  - {name: recent, query: "SELECT ..."}

Unqualified type names are qualified with their package.

Sources:
  - FS: paths on disk, located by convention below a set of roots
  - StoreSource: "store:<key>" documents in a datastore.DescriptorStore
  - Sources: dispatches to the first source claiming a specifier
  - Archive: .zip, .tar.gz and .tar.zst archives, with an optional
    META-INF/persistent-types list of type names
  - Scanner: pattern-matched files below a unit root

ParseUnit and ReadUnit read TOML unit descriptors.
*/
package loader
