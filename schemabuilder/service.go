package schemabuilder

import (
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

// domainServiceNode is the object type of a service singleton. Services only
// expose their actions.
type domainServiceNode struct {
	*ElementCustom
	spec metamodel.ObjectSpecification
	pojo interface{}
}

// domainService builds the node of the service pojo. It returns false when
// no action of the service can be exposed.
func (c *Context) domainService(spec metamodel.ObjectSpecification, pojo interface{}) (*domainServiceNode, bool) {
	name := spec.LogicalTypeName()
	if n, ok := c.services[name]; ok {
		return n, true
	}
	if len(spec.Actions()) == 0 {
		c.skip(metamodel.TypeIdentifier(name), "service has no actions")
		return nil, false
	}
	n := &domainServiceNode{
		ElementCustom: newElementCustom(c, typenames.ObjectTypeNameFor(name), spec.Description()),
		spec:          spec,
		pojo:          pojo,
	}
	c.addActions(n.ElementCustom, spec)
	if _, err := n.BuildType(); err != nil {
		n.Discard()
		c.skip(metamodel.TypeIdentifier(name), err.Error())
		return nil, false
	}
	c.services[name] = n
	return n, true
}

// queryField is the field of the query surface resolving to the service.
func (n *domainServiceNode) queryField(c *Context) (Element, error) {
	el, err := n.FieldFor(n.TypeName(), n.spec.Description())
	if err != nil {
		return Element{}, err
	}
	pojo := n.pojo
	el.Fetcher = c.fetcher("service", func(graphql.ResolveParams) (interface{}, error) {
		return c.wrap(pojo), nil
	})
	return el, nil
}
