package schemabuilder

import (
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/metamodel"
)

// field is a shorthand for an Element with an instrumented fetcher.
func (c *Context) field(name, kind string, t graphql.Output, args graphql.FieldConfigArgument, fn graphql.FieldResolveFn) Element {
	return Element{
		Name:    name,
		Field:   &graphql.Field{Name: name, Type: t, Args: args},
		Fetcher: c.fetcher(kind, fn),
	}
}

// hiddenField reports whether f is hidden from the caller.
func (c *Context) hiddenField(f feature) Element {
	return c.field("hidden", "hidden", graphql.Boolean, nil, func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		return !f.IsVisible(p.Context, target).IsAllowed(), nil
	})
}

// disabledField returns the reason f cannot be used, or null.
func (c *Context) disabledField(f feature) Element {
	return c.field("disabled", "disabled", graphql.String, nil, func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		if err := checkVisible(p.Context, f, target); err != nil {
			return nil, err
		}
		return vetoReason(func() metamodel.Consent { return f.IsUsable(p.Context, target) }), nil
	})
}

// memberField exposes a member node on its owner. The owner's source is
// handed down unchanged.
func memberField(name string, node *ElementCustom, description string) (Element, error) {
	el, err := node.FieldFor(name, description)
	if err != nil {
		return Element{}, err
	}
	el.Fetcher = passThrough
	return el, nil
}

// searchArgs are the arguments of autoComplete fields.
func searchArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"search": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
}

// valueArgs declares a single "value" argument of type t.
func valueArgs(t graphql.Input) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"value": &graphql.ArgumentConfig{Type: t},
	}
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}
