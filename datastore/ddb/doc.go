/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Keys are built from a KeySchema whose templates use "{Field}" macros:

	keys := ddb.KeySchema{
	    "PK": "META#{Key}", // becomes "META#shop/order"
	    "SK": "DESCRIPTOR", // static value
	}

On Put the macros take the entity's attribute values; GetOne and Delete
substitute the lookup key for every macro. DescriptorKeys is the schema used
for descriptor records, and NewDescriptorStore connects to the table named by
the STORE settings:

	store, err := ddb.NewDescriptorStore(ctx, cfg.Store)
	rec, err := store.GetOne(ctx, "shop/order")

Setting STORE_ENDPOINT points the client at a local DynamoDB.
*/
package ddb
