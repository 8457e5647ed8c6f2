package schemabuilder

import (
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

// collectionNode builds the type exposing coll. It returns false when the
// element type cannot be represented.
func (c *Context) collectionNode(ownerName string, coll metamodel.Collection) (*ElementCustom, bool) {
	elem := coll.ElementType()
	elemType, ok := c.outputType(elem)
	if !ok {
		c.skip(coll.Identifier(), "collection element type cannot be represented")
		return nil, false
	}

	n := newElementCustom(c, typenames.CollectionTypeNameFor(ownerName, coll.ID()), coll.Description())
	n.AddChildField(c.hiddenField(coll))
	n.AddChildField(c.disabledField(coll))
	n.AddChildField(c.field("get", "get", listOf(elemType), nil, func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		if err := checkVisible(p.Context, coll, target); err != nil {
			return nil, err
		}
		elements, err := coll.Get(p.Context, target)
		if err != nil {
			return nil, err
		}
		return c.renderAll(elem, elements)
	}))
	return n, true
}
