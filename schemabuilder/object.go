package schemabuilder

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

// domainObjectNode is the object type of an entity or view model.
type domainObjectNode struct {
	*ElementCustom
	spec metamodel.ObjectSpecification
}

// domainObject returns the node of spec, building it on first use. The node
// is registered before its members are built, so members referring back to
// spec resolve to the same type.
func (c *Context) domainObject(spec metamodel.ObjectSpecification) (*domainObjectNode, error) {
	name := spec.LogicalTypeName()
	if n, ok := c.objects[name]; ok {
		return n, nil
	}
	n := &domainObjectNode{
		ElementCustom: newElementCustom(c, typenames.ObjectTypeNameFor(name), spec.Description()),
		spec:          spec,
	}
	c.objects[name] = n
	_, err := n.Ref()
	if err == nil && n.alias {
		err = fmt.Errorf("type name %s already used by another type", n.TypeName())
	}
	if err != nil {
		n.Discard()
		delete(c.objects, name)
		return nil, err
	}

	meta, err := c.metaField(spec)
	if err != nil {
		n.Discard()
		delete(c.objects, name)
		return nil, err
	}
	n.AddChildField(meta)
	c.addMembers(n.ElementCustom, spec)

	if _, err := n.BuildType(); err != nil {
		return nil, err
	}
	return n, nil
}

// addMembers adds one field per exposable member of spec to owner.
func (c *Context) addMembers(owner *ElementCustom, spec metamodel.ObjectSpecification) {
	ownerName := spec.LogicalTypeName()
	for _, prop := range spec.Properties() {
		prop := prop
		c.addMember(owner, prop, func() (*ElementCustom, bool) { return c.propertyNode(owner, ownerName, prop) })
	}
	for _, coll := range spec.Collections() {
		coll := coll
		c.addMember(owner, coll, func() (*ElementCustom, bool) { return c.collectionNode(ownerName, coll) })
	}
	c.addActions(owner, spec)
}

func (c *Context) addActions(owner *ElementCustom, spec metamodel.ObjectSpecification) {
	for _, a := range spec.Actions() {
		a := a
		c.addMember(owner, a, func() (*ElementCustom, bool) { return c.actionNode(owner, spec.LogicalTypeName(), a) })
	}
}

// addMember adds the node of m to owner. Members whose sanitized id collides
// with an existing field are skipped.
func (c *Context) addMember(owner *ElementCustom, m metamodel.Member, build func() (*ElementCustom, bool)) {
	name := typenames.FieldNameFor(m.ID())
	if owner.HasChildField(name) {
		c.skip(m.Identifier(), fmt.Sprintf("field name %s already taken", name))
		return
	}
	node, ok := build()
	if !ok {
		return
	}
	el, err := memberField(name, node, m.Description())
	if err != nil {
		node.Discard()
		c.skip(m.Identifier(), err.Error())
		return
	}
	owner.AddChildField(el)
}

// objectInputType is T__gqlv_input, the argument type referencing an
// instance of spec by identifier or by a saved reference.
func (c *Context) objectInputType(spec metamodel.ObjectSpecification) graphql.Input {
	name := typenames.InputTypeNameFor(spec.LogicalTypeName())
	t, _ := c.Types.LookupOrAdd(name, func() graphql.Type {
		return graphql.NewInputObject(graphql.InputObjectConfig{
			Name:        name,
			Description: "Reference to a " + spec.LogicalTypeName() + ".",
			Fields: graphql.InputObjectConfigFieldMap{
				"id":  &graphql.InputObjectFieldConfig{Type: graphql.ID},
				"ref": &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "name given to saveAs"},
			},
		})
	})
	return t.(graphql.Input)
}

// enumType is the enum type of an enum value type.
func (c *Context) enumType(spec metamodel.ObjectSpecification) *graphql.Enum {
	name := typenames.EnumTypeNameFor(spec.LogicalTypeName())
	t, _ := c.Types.LookupOrAdd(name, func() graphql.Type {
		values := graphql.EnumValueConfigMap{}
		for _, v := range spec.EnumValues() {
			values[typenames.Sanitize(v.Name)] = &graphql.EnumValueConfig{Value: v.Value}
		}
		return graphql.NewEnum(graphql.EnumConfig{
			Name:        name,
			Description: spec.Description(),
			Values:      values,
		})
	})
	return t.(*graphql.Enum)
}

// metaField builds the meta field of spec: identity, title and, for
// entities, the version.
func (c *Context) metaField(spec metamodel.ObjectSpecification) (Element, error) {
	n := newElementCustom(c, typenames.MetaTypeNameFor(spec.LogicalTypeName()), "")
	n.AddChildField(c.field("id", "meta", graphql.NewNonNull(graphql.String), nil, func(p graphql.ResolveParams) (interface{}, error) {
		src, err := bookmarked(p)
		if err != nil {
			return nil, err
		}
		return src.Bookmark.Identifier, nil
	}))
	n.AddChildField(c.field("logicalTypeName", "meta", graphql.NewNonNull(graphql.String), nil, func(p graphql.ResolveParams) (interface{}, error) {
		src, err := bookmarked(p)
		if err != nil {
			return nil, err
		}
		return src.Bookmark.LogicalTypeName, nil
	}))
	n.AddChildField(c.field("title", "meta", graphql.String, nil, func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		return spec.Title(target), nil
	}))
	if spec.BeanSort().IsEntity() {
		n.AddChildField(c.field("version", "meta", graphql.String, nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if jerrors.CodeOf(err) == jerrors.CodeNotFound {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			v, ok := spec.Version(target)
			if !ok || v == nil {
				return nil, nil
			}
			return fmt.Sprint(v), nil
		}))
	}
	if c.scenarioStep != nil {
		step, err := c.scenarioStep.Ref()
		if err != nil {
			n.Discard()
			return Element{}, err
		}
		args := graphql.FieldConfigArgument{
			"ref": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		}
		n.AddChildField(c.field("saveAs", "scenario", step, args, func(p graphql.ResolveParams) (interface{}, error) {
			src, err := bookmarked(p)
			if err != nil {
				return nil, err
			}
			rc := RequestContextFrom(p.Context)
			if rc == nil {
				return nil, jerrors.ErrNoRequestContext
			}
			rc.SaveRef(stringArg(p, "ref"), src.Bookmark)
			return scenarioStepSource{}, nil
		}))
	}

	el, err := memberField(c.Config.Meta.FieldName, n, "")
	if err != nil {
		n.Discard()
	}
	return el, err
}

// bookmarked returns the source of a meta field, which must carry a
// bookmark.
func bookmarked(p graphql.ResolveParams) (*BookmarkedPojo, error) {
	src, ok := p.Source.(*BookmarkedPojo)
	if !ok {
		return nil, fmt.Errorf("unexpected source %T", p.Source)
	}
	if src.Bookmark.IsZero() {
		return nil, jerrors.NotFound("bookmark of %T", src.pojo)
	}
	return src, nil
}
