package schemabuilder

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/jerrors"
)

// TypeRegistry maps GraphQL type names to the single type built for them.
type TypeRegistry struct {
	types map[string]graphql.Type
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]graphql.Type)}
}

// LookupOrAdd returns the type registered under name, calling create and
// registering its result when there is none. The first writer wins: added
// reports whether create was called.
func (r *TypeRegistry) LookupOrAdd(name string, create func() graphql.Type) (t graphql.Type, added bool) {
	if t, ok := r.types[name]; ok {
		return t, false
	}
	t = create()
	r.types[name] = t
	return t, true
}

// Lookup returns the type registered under name.
func (r *TypeRegistry) Lookup(name string) (graphql.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	return len(r.types)
}

// Names returns the registered names in lexical order.
func (r *TypeRegistry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldCoordinates identify a field of an object type.
type FieldCoordinates struct {
	TypeName  string
	FieldName string
}

func (c FieldCoordinates) String() string {
	return c.TypeName + "." + c.FieldName
}

// CodeRegistry holds the data fetcher of every field coordinate. Fetchers are
// installed on the schema once it has been created.
type CodeRegistry struct {
	fetchers map[FieldCoordinates]graphql.FieldResolveFn
	order    []FieldCoordinates
}

// NewCodeRegistry returns an empty registry.
func NewCodeRegistry() *CodeRegistry {
	return &CodeRegistry{fetchers: make(map[FieldCoordinates]graphql.FieldResolveFn)}
}

// Register records the fetcher of coords. Each coordinate takes one fetcher.
func (r *CodeRegistry) Register(coords FieldCoordinates, fetcher graphql.FieldResolveFn) error {
	if fetcher == nil {
		return fmt.Errorf("%s: nil data fetcher", coords)
	}
	if _, ok := r.fetchers[coords]; ok {
		return fmt.Errorf("%s: %w", coords, jerrors.ErrDuplicateCoordinates)
	}
	r.fetchers[coords] = fetcher
	r.order = append(r.order, coords)
	return nil
}

// Fetcher returns the fetcher registered for coords.
func (r *CodeRegistry) Fetcher(coords FieldCoordinates) (graphql.FieldResolveFn, bool) {
	f, ok := r.fetchers[coords]
	return f, ok
}

// Len returns the number of registered fetchers.
func (r *CodeRegistry) Len() int {
	return len(r.fetchers)
}

// ApplyTo installs every fetcher on the field definitions of schema. It
// fails when a coordinate does not name a field of the schema.
func (r *CodeRegistry) ApplyTo(schema *graphql.Schema) error {
	for _, coords := range r.order {
		obj, ok := schema.Type(coords.TypeName).(*graphql.Object)
		if !ok {
			return fmt.Errorf("%s: no object type %s in schema", coords, coords.TypeName)
		}
		def, ok := obj.Fields()[coords.FieldName]
		if !ok {
			return fmt.Errorf("%s: no such field", coords)
		}
		def.Resolve = r.fetchers[coords]
	}
	return nil
}
