package schemabuilder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/jerrors"
)

var errEmptyType = errors.New("object type has no fields")

type buildState int

const (
	unbuilt buildState = iota
	building
	built
)

func (s buildState) String() string {
	switch s {
	case unbuilt:
		return "UNBUILT"
	case building:
		return "BUILDING"
	default:
		return "BUILT"
	}
}

// Element is a field contributed by a node to its parent type, together
// with the fetcher that resolves it.
type Element struct {
	Name    string
	Field   *graphql.Field
	Fetcher graphql.FieldResolveFn
}

// ElementCustom is a node backed by its own GraphQL object type. Child
// fields are accumulated until BuildType is called; after that the type is
// immutable.
//
// The object type is created on first reference, with a fields thunk, so
// mutually referencing types can point at each other before either is built.
type ElementCustom struct {
	bctx        *Context
	typeName    string
	description string

	state     buildState
	object    *graphql.Object
	alias     bool
	discarded bool
	fields    graphql.Fields
	fetchers  map[string]graphql.FieldResolveFn
}

func newElementCustom(bctx *Context, typeName, description string) *ElementCustom {
	e := &ElementCustom{
		bctx:        bctx,
		typeName:    typeName,
		description: description,
		fields:      graphql.Fields{},
		fetchers:    make(map[string]graphql.FieldResolveFn),
	}
	bctx.nodes = append(bctx.nodes, e)
	return e
}

// TypeName returns the name of the backing object type.
func (e *ElementCustom) TypeName() string {
	return e.typeName
}

// IsBuilt reports whether BuildType has completed.
func (e *ElementCustom) IsBuilt() bool {
	return e.state == built
}

// Ref returns the backing object type, creating and registering it on first
// use. The type may still be incomplete.
func (e *ElementCustom) Ref() (*graphql.Object, error) {
	if e.object != nil {
		return e.object, nil
	}
	t, added := e.bctx.Types.LookupOrAdd(e.typeName, func() graphql.Type {
		return graphql.NewObject(graphql.ObjectConfig{
			Name:        e.typeName,
			Description: e.description,
			Fields:      graphql.FieldsThunk(func() graphql.Fields { return e.fields }),
		})
	})
	obj, ok := t.(*graphql.Object)
	if !ok {
		return nil, fmt.Errorf("type name %s already used by %s", e.typeName, t)
	}
	if !added {
		e.bctx.Logger.Warn("type name already registered, reusing existing type",
			zap.String("type", e.typeName))
		e.alias = true
	}
	e.object = obj
	return obj, nil
}

// AddChildField adds a field to the type under construction. It is a no-op
// once the type is built.
func (e *ElementCustom) AddChildField(el Element) {
	if e.state == built || e.alias {
		e.bctx.Logger.Debug("ignoring field added to a built type",
			zap.String("type", e.typeName), zap.String("field", el.Name))
		return
	}
	e.state = building
	e.fields[el.Name] = el.Field
	if el.Fetcher != nil {
		e.fetchers[el.Name] = el.Fetcher
	}
}

// HasChildField reports whether name has been added.
func (e *ElementCustom) HasChildField(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// NumFields returns the number of child fields added so far.
func (e *ElementCustom) NumFields() int {
	return len(e.fields)
}

// BuildType completes the type. It is idempotent.
func (e *ElementCustom) BuildType() (*graphql.Object, error) {
	if e.state == built {
		return e.object, nil
	}
	if len(e.fields) == 0 && !e.alias {
		return nil, fmt.Errorf("%s: %w", e.typeName, errEmptyType)
	}
	obj, err := e.Ref()
	if err != nil {
		return nil, err
	}
	e.state = built
	return obj, nil
}

// FieldFor builds the type and returns a field of that type.
func (e *ElementCustom) FieldFor(name, description string) (Element, error) {
	obj, err := e.BuildType()
	if err != nil {
		return Element{}, err
	}
	return Element{Name: name, Field: &graphql.Field{Name: name, Type: obj, Description: description}}, nil
}

// CoordinatesFor returns the coordinates of a child field. The type must be
// built.
func (e *ElementCustom) CoordinatesFor(fieldName string) (FieldCoordinates, error) {
	if e.state != built {
		return FieldCoordinates{}, fmt.Errorf("%s is %s: %w", e.typeName, e.state, jerrors.ErrNotBuilt)
	}
	if _, ok := e.fields[fieldName]; !ok {
		return FieldCoordinates{}, fmt.Errorf("%s has no field %s", e.typeName, fieldName)
	}
	return FieldCoordinates{TypeName: e.typeName, FieldName: fieldName}, nil
}

// Discard abandons a node that will not be part of the schema.
func (e *ElementCustom) Discard() {
	e.discarded = true
}

// AddDataFetchers registers the fetchers of every child field.
func (e *ElementCustom) AddDataFetchers(code *CodeRegistry) error {
	if e.alias || e.discarded {
		return nil
	}
	names := make([]string, 0, len(e.fetchers))
	for name := range e.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		coords, err := e.CoordinatesFor(name)
		if err != nil {
			return err
		}
		if err := code.Register(coords, e.fetchers[name]); err != nil {
			return err
		}
	}
	return nil
}
