/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

// Unit is a persistence-unit descriptor: the set of descriptor sources and
// types that make up one application's persistent model.
type Unit struct {
	Name string
	// Root is scanned for descriptor files unless ExcludeUnlisted is set.
	Root            string
	MappingFiles    []string
	Archives        []string
	Types           []string
	ExcludeUnlisted bool
	Validate        bool
	Properties      map[string]string
}
