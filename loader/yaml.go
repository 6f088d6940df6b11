/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package loader

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/suparena/entitymeta/errors"
	"github.com/suparena/entitymeta/metadata"
)

// fileDoc is the YAML form of a descriptor file.
type fileDoc struct {
	Packages     []packageDoc     `yaml:"packages,omitempty"`
	Queries      []queryDoc       `yaml:"queries,omitempty"`
	StoredProcs  []storedProcDoc  `yaml:"stored-procs,omitempty"`
	FetchPlans   []fetchPlanDoc   `yaml:"fetch-plans,omitempty"`
	QueryResults []queryResultDoc `yaml:"query-results,omitempty"`
}

type packageDoc struct {
	Name       string        `yaml:"name"`
	Classes    []typeDoc     `yaml:"classes,omitempty"`
	Interfaces []typeDoc     `yaml:"interfaces,omitempty"`
	Sequences  []sequenceDoc `yaml:"sequences,omitempty"`
}

type typeDoc struct {
	Name          string            `yaml:"name"`
	EntityName    string            `yaml:"entity-name,omitempty"`
	Persistence   string            `yaml:"persistence,omitempty"`
	Identity      string            `yaml:"identity,omitempty"`
	ObjectIDClass string            `yaml:"objectid-class,omitempty"`
	Superclass    string            `yaml:"superclass,omitempty"`
	Abstract      bool              `yaml:"abstract,omitempty"`
	Implements    []string          `yaml:"implements,omitempty"`
	Extends       []string          `yaml:"extends,omitempty"`
	Discriminator *discriminatorDoc `yaml:"discriminator,omitempty"`
	Fields        []fieldDoc        `yaml:"fields,omitempty"`
	Queries       []queryDoc        `yaml:"queries,omitempty"`
	StoredProcs   []storedProcDoc   `yaml:"stored-procs,omitempty"`
}

type discriminatorDoc struct {
	Strategy string `yaml:"strategy,omitempty"`
	Value    string `yaml:"value,omitempty"`
	Column   string `yaml:"column,omitempty"`
}

type fieldDoc struct {
	Name        string `yaml:"name"`
	Column      string `yaml:"column,omitempty"`
	Type        string `yaml:"type,omitempty"`
	PrimaryKey  bool   `yaml:"primary-key,omitempty"`
	Persistence string `yaml:"persistence,omitempty"`
	Nullable    *bool  `yaml:"nullable,omitempty"`
	MappedBy    string `yaml:"mapped-by,omitempty"`
}

type queryDoc struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language,omitempty"`
	Query    string `yaml:"query"`
}

type storedProcDoc struct {
	Name       string   `yaml:"name"`
	Procedure  string   `yaml:"procedure"`
	Parameters []string `yaml:"parameters,omitempty"`
}

type fetchPlanDoc struct {
	Name     string   `yaml:"name"`
	Groups   []string `yaml:"groups,omitempty"`
	MaxDepth int      `yaml:"max-depth,omitempty"`
}

type sequenceDoc struct {
	Name              string `yaml:"name"`
	DatastoreSequence string `yaml:"datastore-sequence,omitempty"`
	Strategy          string `yaml:"strategy,omitempty"`
}

type queryResultDoc struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns,omitempty"`
}

// ParseFile parses a YAML descriptor document into a raw external file
// registered under key. Type names are qualified with their package. When
// resolver knows a type, member types left out of the document are taken
// from the type's struct fields.
func ParseFile(key string, data []byte, resolver metadata.TypeResolver) (*metadata.DescriptorFile, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	f := &metadata.DescriptorFile{Key: key, Origin: metadata.OriginExternal}
	for _, q := range doc.Queries {
		f.Queries = append(f.Queries, q.toQuery())
	}
	for _, p := range doc.StoredProcs {
		f.StoredProcs = append(f.StoredProcs, p.toStoredProc())
	}
	for _, fp := range doc.FetchPlans {
		f.FetchPlans = append(f.FetchPlans, &metadata.FetchPlan{Name: fp.Name, Groups: fp.Groups, MaxDepth: fp.MaxDepth})
	}
	for _, qr := range doc.QueryResults {
		f.QueryResults = append(f.QueryResults, &metadata.QueryResult{Name: qr.Name, Columns: qr.Columns})
	}

	for _, pd := range doc.Packages {
		pkg := &metadata.PackageGroup{Name: pd.Name}
		for _, sd := range pd.Sequences {
			pkg.Sequences = append(pkg.Sequences, &metadata.Sequence{
				Name:              sd.Name,
				DatastoreSequence: sd.DatastoreSequence,
				Strategy:          sd.Strategy,
			})
		}
		for _, cd := range pd.Classes {
			td, err := cd.toClass(pd.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			fillMemberTypes(td, resolver)
			pkg.Types = append(pkg.Types, td)
		}
		for _, id := range pd.Interfaces {
			td, err := id.toInterface(pd.Name)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			pkg.Types = append(pkg.Types, td)
		}
		f.Packages = append(f.Packages, pkg)
	}
	f.Link()
	return f, nil
}

func (d typeDoc) toClass(pkg string) (*metadata.TypeDescriptor, error) {
	name := metadata.Qualify(pkg, d.Name)
	if len(d.Extends) > 0 {
		return nil, errors.NewValidationError(name, "a class cannot extend interfaces, use implements")
	}
	shape := &metadata.ClassShape{
		Abstract:   d.Abstract,
		Implements: qualifyAll(pkg, d.Implements),
	}
	if d.Superclass != "" {
		shape.Superclass = metadata.Qualify(pkg, d.Superclass)
	}
	td := metadata.NewClass(name, shape)
	return td, d.fill(td, pkg)
}

func (d typeDoc) toInterface(pkg string) (*metadata.TypeDescriptor, error) {
	name := metadata.Qualify(pkg, d.Name)
	if d.Superclass != "" || d.Abstract || len(d.Implements) > 0 {
		return nil, errors.NewValidationError(name, "an interface only declares extends")
	}
	td := metadata.NewInterface(name, &metadata.InterfaceShape{Extends: qualifyAll(pkg, d.Extends)})
	return td, d.fill(td, pkg)
}

// fill copies the kind-independent parts of d into td.
func (d typeDoc) fill(td *metadata.TypeDescriptor, pkg string) error {
	if d.Name == "" {
		return errors.NewValidationError("name", "type without a name in package "+pkg)
	}
	td.EntityName = d.EntityName

	switch p := metadata.PersistenceKind(d.Persistence); p {
	case "", metadata.PersistenceCapable, metadata.PersistenceAware, metadata.NotPersistable:
		td.Persistence = p
	default:
		return errors.NewValidationError(td.Name, fmt.Sprintf("unknown persistence %q", d.Persistence))
	}
	switch id := metadata.IdentityStrategy(d.Identity); id {
	case "", metadata.IdentityApplication, metadata.IdentityDatastore, metadata.IdentityNone:
		td.Identity = id
	default:
		return errors.NewValidationError(td.Name, fmt.Sprintf("unknown identity %q", d.Identity))
	}
	if d.ObjectIDClass != "" {
		td.ObjectIDClass = metadata.Qualify(pkg, d.ObjectIDClass)
	}

	if dd := d.Discriminator; dd != nil {
		strategy := metadata.DiscriminatorStrategy(dd.Strategy)
		switch strategy {
		case "":
			strategy = metadata.DiscriminatorValueMap
		case metadata.DiscriminatorNone, metadata.DiscriminatorClassName,
			metadata.DiscriminatorValueMap, metadata.DiscriminatorValueMapEntityName:
		default:
			return errors.NewValidationError(td.Name, fmt.Sprintf("unknown discriminator strategy %q", dd.Strategy))
		}
		td.Discriminator = &metadata.Discriminator{Strategy: strategy, Value: dd.Value, Column: dd.Column}
	}

	for _, fd := range d.Fields {
		if fd.Name == "" {
			return errors.NewValidationError(td.Name, "field without a name")
		}
		m := &metadata.Member{
			Name:       fd.Name,
			Column:     fd.Column,
			Type:       fd.Type,
			PrimaryKey: fd.PrimaryKey,
			Nullable:   fd.Nullable,
			MappedBy:   fd.MappedBy,
		}
		switch mp := metadata.MemberPersistence(fd.Persistence); mp {
		case "", metadata.MemberPersistent, metadata.MemberTransactional, metadata.MemberNone:
			m.Persistence = mp
		default:
			return errors.NewValidationError(td.Name+"."+fd.Name, fmt.Sprintf("unknown persistence %q", fd.Persistence))
		}
		td.Members = append(td.Members, m)
	}
	for _, q := range d.Queries {
		td.Queries = append(td.Queries, q.toQuery())
	}
	for _, p := range d.StoredProcs {
		td.StoredProcs = append(td.StoredProcs, p.toStoredProc())
	}
	return nil
}

func (q queryDoc) toQuery() *metadata.Query {
	return &metadata.Query{Name: q.Name, Language: q.Language, Text: q.Query}
}

func (p storedProcDoc) toStoredProc() *metadata.StoredProc {
	return &metadata.StoredProc{Name: p.Name, Procedure: p.Procedure, Parameters: p.Parameters}
}

func qualifyAll(pkg string, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = metadata.Qualify(pkg, n)
	}
	return out
}

func fillMemberTypes(td *metadata.TypeDescriptor, resolver metadata.TypeResolver) {
	if resolver == nil {
		return
	}
	h, ok := resolver.ResolveType(td.Name)
	if !ok || h.Type == nil {
		return
	}
	t := h.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for _, m := range td.Members {
		if m.Type != "" {
			continue
		}
		if sf, ok := t.FieldByName(m.Name); ok {
			m.Type = sf.Type.String()
		}
	}
}

// EncodeFile renders f as a YAML descriptor document. Type names inside a
// package are written unqualified.
func EncodeFile(f *metadata.DescriptorFile) ([]byte, error) {
	doc := fileDoc{}
	for _, q := range f.Queries {
		doc.Queries = append(doc.Queries, fromQuery(q))
	}
	for _, p := range f.StoredProcs {
		doc.StoredProcs = append(doc.StoredProcs, fromStoredProc(p))
	}
	for _, fp := range f.FetchPlans {
		doc.FetchPlans = append(doc.FetchPlans, fetchPlanDoc{Name: fp.Name, Groups: fp.Groups, MaxDepth: fp.MaxDepth})
	}
	for _, qr := range f.QueryResults {
		doc.QueryResults = append(doc.QueryResults, queryResultDoc{Name: qr.Name, Columns: qr.Columns})
	}
	for _, p := range f.Packages {
		pd := packageDoc{Name: p.Name}
		for _, s := range p.Sequences {
			pd.Sequences = append(pd.Sequences, sequenceDoc{Name: s.Name, DatastoreSequence: s.DatastoreSequence, Strategy: s.Strategy})
		}
		for _, td := range p.Types {
			d := fromDescriptor(p.Name, td)
			if td.Kind() == metadata.KindInterface {
				pd.Interfaces = append(pd.Interfaces, d)
			} else {
				pd.Classes = append(pd.Classes, d)
			}
		}
		doc.Packages = append(doc.Packages, pd)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Key, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Key, err)
	}
	return buf.Bytes(), nil
}

func fromDescriptor(pkg string, td *metadata.TypeDescriptor) typeDoc {
	d := typeDoc{
		Name:          unqualify(pkg, td.Name),
		EntityName:    td.EntityName,
		Persistence:   string(td.Persistence),
		Identity:      string(td.Identity),
		ObjectIDClass: unqualify(pkg, td.ObjectIDClass),
	}
	switch s := td.Shape.(type) {
	case *metadata.ClassShape:
		d.Superclass = unqualify(pkg, s.Superclass)
		d.Abstract = s.Abstract
		d.Implements = unqualifyAll(pkg, s.Implements)
	case *metadata.InterfaceShape:
		d.Extends = unqualifyAll(pkg, s.Extends)
	}
	if td.Discriminator != nil {
		d.Discriminator = &discriminatorDoc{
			Strategy: string(td.Discriminator.Strategy),
			Value:    td.Discriminator.Value,
			Column:   td.Discriminator.Column,
		}
	}
	for _, m := range td.Members {
		d.Fields = append(d.Fields, fieldDoc{
			Name:        m.Name,
			Column:      m.Column,
			Type:        m.Type,
			PrimaryKey:  m.PrimaryKey,
			Persistence: string(m.Persistence),
			Nullable:    m.Nullable,
			MappedBy:    m.MappedBy,
		})
	}
	for _, q := range td.Queries {
		d.Queries = append(d.Queries, fromQuery(q))
	}
	for _, p := range td.StoredProcs {
		d.StoredProcs = append(d.StoredProcs, fromStoredProc(p))
	}
	return d
}

func fromQuery(q *metadata.Query) queryDoc {
	return queryDoc{Name: q.Name, Language: q.Language, Query: q.Text}
}

func fromStoredProc(p *metadata.StoredProc) storedProcDoc {
	return storedProcDoc{Name: p.Name, Procedure: p.Procedure, Parameters: p.Parameters}
}

func unqualify(pkg, name string) string {
	if pkg != "" && metadata.PackageOf(name) == pkg {
		return metadata.ShortName(name)
	}
	return name
}

func unqualifyAll(pkg string, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = unqualify(pkg, n)
	}
	return out
}
