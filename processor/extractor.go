/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// TagName is the struct tag read by the extractor.
const TagName = "persist"

// Entity marks a struct as persistent when embedded. Its tag carries the
// type-level options:
//
//	type Order struct {
//	    processor.Entity `persist:"entity=Order,identity=application"`
//	    ID string        `persist:"pk,column=order_id"`
//	}
type Entity struct{}

var entityType = reflect.TypeOf(Entity{})

// Namer resolves the registered name of a Go type. *catalog.Catalog
// satisfies it.
type Namer interface {
	Lookup(t reflect.Type) (string, bool)
}

// Extractor builds inline descriptors from struct tags.
type Extractor struct {
	namer Namer
}

// New returns an extractor that treats embedded structs known to namer as
// superclasses.
func New(namer Namer) *Extractor {
	return &Extractor{namer: namer}
}

// InlineKey is the origin key of the synthesized file for typeName.
func InlineKey(typeName string) string {
	return "inline:" + typeName
}

// Extract returns a file holding the descriptor of h, or nil when the type
// does not embed Entity.
func (x *Extractor) Extract(h metadata.TypeHandle) (*metadata.DescriptorFile, error) {
	t := h.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}
	marker, ok := findMarker(t)
	if !ok {
		return nil, nil
	}

	shape := &metadata.ClassShape{}
	td := metadata.NewClass(h.Name, shape)
	if err := applyTypeOptions(td, shape, marker.Tag.Get(TagName)); err != nil {
		return nil, fmt.Errorf("type %s: %w", h.Name, err)
	}
	if err := x.collectMembers(td, shape, t); err != nil {
		return nil, fmt.Errorf("type %s: %w", h.Name, err)
	}

	pkg := &metadata.PackageGroup{
		Name:  metadata.PackageOf(h.Name),
		Types: []*metadata.TypeDescriptor{td},
	}
	return metadata.NewFile(InlineKey(h.Name), metadata.OriginInline, pkg), nil
}

func findMarker(t reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == entityType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func (x *Extractor) collectMembers(td *metadata.TypeDescriptor, shape *metadata.ClassShape, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type == entityType {
			continue
		}
		tag, tagged := f.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		if f.Anonymous {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if x.namer != nil {
				if name, ok := x.namer.Lookup(ft); ok {
					if shape.Superclass != "" && shape.Superclass != name {
						return errors.NewValidationError(f.Name,
							fmt.Sprintf("second persistable embedded type %s, superclass already %s", name, shape.Superclass))
					}
					shape.Superclass = name
					continue
				}
			}
			if ft.Kind() == reflect.Struct && !tagged {
				if err := x.collectMembers(td, shape, ft); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		m, err := parseMember(f, tag)
		if err != nil {
			return err
		}
		td.Members = append(td.Members, m)
	}
	return nil
}

func applyTypeOptions(td *metadata.TypeDescriptor, shape *metadata.ClassShape, tag string) error {
	for _, opt := range splitTag(tag) {
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "entity":
			td.EntityName = value
		case "identity":
			switch id := metadata.IdentityStrategy(value); id {
			case metadata.IdentityApplication, metadata.IdentityDatastore, metadata.IdentityNone:
				td.Identity = id
			default:
				return errors.NewValidationError("identity", fmt.Sprintf("unknown identity strategy %q", value))
			}
		case "objectid":
			td.ObjectIDClass = value
		case "abstract":
			shape.Abstract = true
		case "aware":
			td.Persistence = metadata.PersistenceAware
		case "implements":
			shape.Implements = append(shape.Implements, strings.Split(value, "|")...)
		case "discriminator":
			discriminator(td).Strategy = metadata.DiscriminatorStrategy(value)
		case "value":
			discriminator(td).Value = value
		case "discriminator-column":
			discriminator(td).Column = value
		default:
			return errors.NewValidationError(key, "unknown type option")
		}
	}
	if d := td.Discriminator; d != nil {
		switch d.Strategy {
		case "":
			d.Strategy = metadata.DiscriminatorValueMap
		case metadata.DiscriminatorNone, metadata.DiscriminatorClassName,
			metadata.DiscriminatorValueMap, metadata.DiscriminatorValueMapEntityName:
		default:
			return errors.NewValidationError("discriminator", fmt.Sprintf("unknown strategy %q", d.Strategy))
		}
	}
	return nil
}

func discriminator(td *metadata.TypeDescriptor) *metadata.Discriminator {
	if td.Discriminator == nil {
		td.Discriminator = &metadata.Discriminator{}
	}
	return td.Discriminator
}

func parseMember(f reflect.StructField, tag string) (*metadata.Member, error) {
	m := &metadata.Member{Name: f.Name, Type: f.Type.String()}
	for _, opt := range splitTag(tag) {
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "column":
			m.Column = value
		case "pk":
			m.PrimaryKey = true
		case "nullable":
			v := true
			m.Nullable = &v
		case "notnull":
			v := false
			m.Nullable = &v
		case "mapped-by":
			m.MappedBy = value
		case "transactional":
			m.Persistence = metadata.MemberTransactional
		default:
			return nil, errors.NewValidationError(f.Name, fmt.Sprintf("unknown field option %q", key))
		}
	}
	return m, nil
}

func splitTag(tag string) []string {
	var out []string
	for _, p := range strings.Split(tag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
