/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metadata

import (
	"reflect"
	"strings"
)

// TypeHandle is a resolved application type.
type TypeHandle struct {
	Name string
	Type reflect.Type
}

// ShortName strips the package path: "example.com/shop.Order" -> "Order".
func ShortName(name string) string {
	base := name[strings.LastIndex(name, "/")+1:]
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// PackageOf returns the package path of a qualified type name, or "".
func PackageOf(name string) string {
	slash := strings.LastIndex(name, "/")
	if i := strings.LastIndex(name, "."); i > slash {
		return name[:i]
	}
	return ""
}

// Qualify joins a package path and a type name unless name is already qualified.
func Qualify(pkg, name string) string {
	if pkg == "" || strings.ContainsAny(name, "./") {
		return name
	}
	return pkg + "." + name
}

// IsStandardLibrary reports whether name is a builtin or a standard library
// type: no package, or a package path whose first element has no dot.
func IsStandardLibrary(name string) bool {
	pkg := PackageOf(name)
	if pkg == "" {
		return true
	}
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// TypeResolver resolves fully-qualified names to type handles. It reports
// false for unknown names and never fails otherwise.
type TypeResolver interface {
	ResolveType(name string) (TypeHandle, bool)
}
