package schemabuilder

import (
	"encoding/base64"

	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
	"go.causeway.dev/gqlv/valuesemantics"
)

// propertyNode builds the type exposing prop on owner. It returns false when
// the property's type cannot be represented.
func (c *Context) propertyNode(owner *ElementCustom, ownerName string, prop metamodel.Property) (*ElementCustom, bool) {
	elem := prop.ElementType()
	var (
		getType graphql.Output
		ok      bool
	)
	if isLob(elem) {
		getType, ok = c.lobNode(ownerName, prop)
	} else {
		getType, ok = c.outputType(elem)
	}
	if !ok {
		c.skip(prop.Identifier(), "property type cannot be represented")
		return nil, false
	}

	n := newElementCustom(c, typenames.PropertyTypeNameFor(ownerName, prop.ID()), prop.Description())
	n.AddChildField(c.hiddenField(prop))
	n.AddChildField(c.disabledField(prop))

	if isLob(elem) {
		n.AddChildField(c.field("get", "get", getType, nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, prop, target); err != nil {
				return nil, err
			}
			return p.Source, nil
		}))
	} else {
		n.AddChildField(c.field("get", "get", getType, nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, prop, target); err != nil {
				return nil, err
			}
			v, err := prop.Get(p.Context, target)
			if err != nil {
				return nil, err
			}
			return c.render(elem, v)
		}))
	}

	if prop.HasChoices() && !isLob(elem) {
		n.AddChildField(c.field("choices", "choices", listOf(getType), nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, prop, target); err != nil {
				return nil, err
			}
			choices, err := prop.Choices(p.Context, target)
			if err != nil {
				return nil, err
			}
			return c.renderAll(elem, choices)
		}))
	}
	if prop.HasAutoComplete() && !isLob(elem) {
		n.AddChildField(c.field("autoComplete", "autoComplete", listOf(getType), searchArgs(), func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, prop, target); err != nil {
				return nil, err
			}
			matches, err := prop.AutoComplete(p.Context, target, stringArg(p, "search"))
			if err != nil {
				return nil, err
			}
			return c.renderAll(elem, matches)
		}))
	}

	if in, ok := c.inputType(elem); ok {
		n.AddChildField(c.field("validate", "validate", graphql.String, valueArgs(in), func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			_, err = c.checkAssociation(p, prop, target)
			return reasonOf(err)
		}))

		if prop.IsEditable() && c.Config.MutationsInline() {
			ownerType, err := owner.Ref()
			if err == nil {
				n.AddChildField(c.field("set", "set", ownerType, valueArgs(in), func(p graphql.ResolveParams) (interface{}, error) {
					target, err := c.target(p)
					if err != nil {
						return nil, err
					}
					if err := c.setProperty(p, prop, target); err != nil {
						return nil, err
					}
					return p.Source, nil
				}))
			}
		}
	} else {
		c.skip(prop.Identifier(), "property type cannot be used as an argument, no validate or set")
	}

	n.AddChildField(Element{
		Name:  "datatype",
		Field: &graphql.Field{Name: "datatype", Type: graphql.String},
		Fetcher: func(graphql.ResolveParams) (interface{}, error) {
			return elem.LogicalTypeName(), nil
		},
	})
	return n, true
}

// checkAssociation runs the visible, usable and valid checks of setting
// prop on target to the "value" argument, returning the parsed value.
func (c *Context) checkAssociation(p graphql.ResolveParams, prop metamodel.Property, target interface{}) (interface{}, error) {
	if err := checkVisible(p.Context, prop, target); err != nil {
		return nil, err
	}
	if err := checkUsable(p.Context, prop, target); err != nil {
		return nil, err
	}
	value, err := c.parseArg(p.Context, prop.Identifier(), prop.ElementType(), p.Args["value"])
	if err != nil {
		return nil, err
	}
	if consent := prop.IsAssociationValid(p.Context, target, value); !consent.IsAllowed() {
		return nil, jerrors.Invalid(prop.Identifier().String(), consent.Reason)
	}
	return value, nil
}

// setProperty sets prop once every check has passed.
func (c *Context) setProperty(p graphql.ResolveParams, prop metamodel.Property, target interface{}) error {
	value, err := c.checkAssociation(p, prop, target)
	if err != nil {
		return err
	}
	return prop.Set(p.Context, target, value)
}

func isLob(spec metamodel.ObjectSpecification) bool {
	return spec != nil && spec.BeanSort() == metamodel.SortValue && spec.ValueType().IsLob()
}

// lobNode builds the type returned by get of a Blob or Clob property. Each
// part is fetched on its own so the content is only read when selected.
func (c *Context) lobNode(ownerName string, prop metamodel.Property) (graphql.Output, bool) {
	kind := prop.ElementType().ValueType()
	n := newElementCustom(c, typenames.PropertyLobTypeNameFor(ownerName, prop.ID(), kind), "")

	part := func(name, description string, extract func(interface{}) interface{}) {
		el := c.field(name, "get", graphql.String, nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, prop, target); err != nil {
				return nil, err
			}
			v, err := prop.Get(p.Context, target)
			if err != nil || v == nil {
				return nil, err
			}
			rendered, err := valuesemantics.Render(kind, v)
			if err != nil || rendered == nil {
				return nil, err
			}
			return extract(rendered), nil
		})
		el.Field.Description = description
		n.AddChildField(el)
	}

	if kind == valuesemantics.Blob {
		part("name", "", func(v interface{}) interface{} { return v.(valuesemantics.BlobValue).Name })
		part("mimeType", "", func(v interface{}) interface{} { return v.(valuesemantics.BlobValue).MimeType })
		part("bytes", "base64 encoded content", func(v interface{}) interface{} {
			return base64.StdEncoding.EncodeToString(v.(valuesemantics.BlobValue).Bytes)
		})
	} else {
		part("name", "", func(v interface{}) interface{} { return v.(valuesemantics.ClobValue).Name })
		part("mimeType", "", func(v interface{}) interface{} { return v.(valuesemantics.ClobValue).MimeType })
		part("chars", "", func(v interface{}) interface{} { return v.(valuesemantics.ClobValue).Chars })
	}

	obj, err := n.BuildType()
	if err != nil {
		n.Discard()
		return nil, false
	}
	return obj, true
}
