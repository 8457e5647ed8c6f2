package schemabuilder

import (
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

// QueryTypeName names the query root.
const QueryTypeName = "Query"

// queryRoot builds the query root: the query surface plus the Scenario
// entry point.
func (c *Context) queryRoot() (*graphql.Object, error) {
	n := newElementCustom(c, QueryTypeName, "")
	for _, el := range c.surface() {
		n.AddChildField(el)
	}
	if c.scenarioStep != nil {
		el, err := c.scenarioField()
		if err != nil {
			return nil, err
		}
		n.AddChildField(el)
	}
	return n.BuildType()
}

// surface returns fresh top level fields: one per exposed service and, when
// lookups are enabled, one lookup per exposed domain type.
func (c *Context) surface() []Element {
	var fields []Element
	for _, pojo := range c.Specs.Services() {
		spec, ok := c.Specs.SpecificationFor(pojo)
		if !ok {
			continue
		}
		n, ok := c.services[spec.LogicalTypeName()]
		if !ok {
			continue
		}
		el, err := n.queryField(c)
		if err != nil {
			c.skip(metamodel.TypeIdentifier(spec.LogicalTypeName()), err.Error())
			continue
		}
		fields = append(fields, el)
	}
	if c.Config.Lookup.Enabled {
		fields = append(fields, c.lookupFields()...)
	}
	return fields
}

// lookupFields returns one field per exposed domain type resolving an
// instance by id or by saved reference. Types sharing an unqualified name
// are looked up by their qualified name.
func (c *Context) lookupFields() []Element {
	var specs []metamodel.ObjectSpecification
	simple := map[string]int{}
	for _, spec := range c.Specs.Specifications() {
		if !c.exposes(spec) {
			continue
		}
		specs = append(specs, spec)
		simple[typenames.LookupFieldNameFor(spec.LogicalTypeName())]++
	}

	var fields []Element
	for _, spec := range specs {
		spec := spec
		n, err := c.domainObject(spec)
		if err != nil {
			c.skip(metamodel.TypeIdentifier(spec.LogicalTypeName()), err.Error())
			continue
		}
		obj, err := n.Ref()
		if err != nil {
			continue
		}
		name := typenames.LookupFieldNameFor(spec.LogicalTypeName())
		if simple[name] > 1 {
			name = typenames.QualifiedLookupFieldNameFor(spec.LogicalTypeName())
		}
		args := graphql.FieldConfigArgument{
			"id":  &graphql.ArgumentConfig{Type: graphql.ID},
			"ref": &graphql.ArgumentConfig{Type: graphql.String, Description: "name given to saveAs"},
		}
		el := c.field(name, "lookup", obj, args, func(p graphql.ResolveParams) (interface{}, error) {
			pojo, err := c.lookup(p.Context, spec, stringArg(p, "id"), stringArg(p, "ref"))
			if err != nil {
				return nil, err
			}
			return c.wrap(pojo), nil
		})
		el.Field.Description = "Looks up a " + spec.LogicalTypeName() + "."
		fields = append(fields, el)
	}
	return fields
}
