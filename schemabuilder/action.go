package schemabuilder

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

// actionNode builds the type exposing a on owner. It returns false when a
// parameter type cannot be represented. An action whose result cannot be
// represented is exposed without invoke.
func (c *Context) actionNode(owner *ElementCustom, ownerName string, a metamodel.Action) (*ElementCustom, bool) {
	strict, ok := c.actionArgs(a, true)
	if !ok {
		c.skip(a.Identifier(), "parameter type cannot be represented")
		return nil, false
	}
	lenient, _ := c.actionArgs(a, false)

	n := newElementCustom(c, typenames.ActionTypeNameFor(ownerName, a.ID()), a.Description())
	n.AddChildField(c.hiddenField(a))
	n.AddChildField(c.disabledField(a))
	n.AddChildField(c.field("validate", "validate", graphql.String, lenient, func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		_, err = c.checkArguments(p.Context, a, target, p.Args)
		return reasonOf(err)
	}))

	if name := c.invokeFieldName(a); name != "" {
		if ret, ok := c.returnType(owner, a); ok {
			n.AddChildField(c.field(name, "invoke", ret, strict, func(p graphql.ResolveParams) (interface{}, error) {
				target, err := c.target(p)
				if err != nil {
					return nil, err
				}
				return c.invokeAction(p.Context, a, target, p.Args)
			}))
		} else {
			c.skip(a.Identifier(), "return type cannot be represented, no invoke")
		}
	}

	if len(a.Parameters()) > 0 {
		if el, err := c.paramsField(ownerName, a); err != nil {
			c.skip(a.Identifier(), fmt.Sprintf("no params: %v", err))
		} else {
			n.AddChildField(el)
		}
	}
	return n, true
}

// invokeFieldName names the field invoking a in the query tree, or returns
// "" when a is only invocable through the mutation root.
func (c *Context) invokeFieldName(a metamodel.Action) string {
	switch {
	case a.Semantics().IsSafe():
		return "invoke"
	case c.Config.MutationsInline():
		return "invokeNonSafe"
	default:
		return ""
	}
}

// returnType is the type of the result of invoking a. Actions without a
// result return their target.
func (c *Context) returnType(owner *ElementCustom, a metamodel.Action) (graphql.Output, bool) {
	rt := a.ReturnType()
	if rt == nil {
		obj, err := owner.Ref()
		return obj, err == nil
	}
	t, ok := c.outputType(rt)
	if !ok {
		return nil, false
	}
	if a.ReturnsCollection() {
		return listOf(t), true
	}
	return t, true
}

// actionArgs declares one argument per parameter of a. Mandatory parameters
// are non-null when strict is set.
func (c *Context) actionArgs(a metamodel.Action, strict bool) (graphql.FieldConfigArgument, bool) {
	args := graphql.FieldConfigArgument{}
	for _, param := range a.Parameters() {
		in, ok := c.inputType(param.ElementType())
		if !ok {
			return nil, false
		}
		if strict && !param.IsOptional() {
			in = graphql.NewNonNull(in)
		}
		args[typenames.ArgumentNameFor(param.ID())] = &graphql.ArgumentConfig{
			Type:        in,
			Description: param.Description(),
		}
	}
	return args, true
}

// parseArgs converts the GraphQL arguments into the positional arguments of a.
func (c *Context) parseArgs(ctx context.Context, a metamodel.Action, raw map[string]interface{}) ([]interface{}, error) {
	params := a.Parameters()
	args := make([]interface{}, len(params))
	for i, param := range params {
		v, err := c.parseArg(ctx, param.Identifier(), param.ElementType(), raw[typenames.ArgumentNameFor(param.ID())])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// checkArguments runs the visible, usable and valid checks of invoking a on
// target, returning the parsed arguments.
func (c *Context) checkArguments(ctx context.Context, a metamodel.Action, target interface{}, raw map[string]interface{}) ([]interface{}, error) {
	if err := checkVisible(ctx, a, target); err != nil {
		return nil, err
	}
	if err := checkUsable(ctx, a, target); err != nil {
		return nil, err
	}
	args, err := c.parseArgs(ctx, a, raw)
	if err != nil {
		return nil, err
	}
	if consent := a.IsArgumentSetValid(ctx, target, args); !consent.IsAllowed() {
		return nil, jerrors.Invalid(a.Identifier().String(), consent.Reason)
	}
	return args, nil
}

// invokeAction executes a once every check has passed and renders the
// result.
func (c *Context) invokeAction(ctx context.Context, a metamodel.Action, target interface{}, raw map[string]interface{}) (interface{}, error) {
	args, err := c.checkArguments(ctx, a, target, raw)
	if err != nil {
		return nil, err
	}
	res, err := a.Execute(ctx, target, args)
	if err != nil {
		return nil, err
	}
	rt := a.ReturnType()
	switch {
	case rt == nil:
		return c.wrap(target), nil
	case a.ReturnsCollection():
		elements, ok := res.([]interface{})
		if !ok && res != nil {
			return nil, fmt.Errorf("%s returned %T, want a collection", a.Identifier(), res)
		}
		return c.renderAll(rt, elements)
	default:
		return c.render(rt, res)
	}
}

// paramsField builds the params field of a, holding one field per
// parameter.
func (c *Context) paramsField(ownerName string, a metamodel.Action) (Element, error) {
	n := newElementCustom(c, typenames.ActionParamsTypeNameFor(ownerName, a.ID()), "")
	for _, param := range a.Parameters() {
		pn := c.paramNode(ownerName, a, param)
		el, err := memberField(typenames.ArgumentNameFor(param.ID()), pn, param.Description())
		if err != nil {
			pn.Discard()
			n.Discard()
			return Element{}, err
		}
		n.AddChildField(el)
	}
	el, err := memberField("params", n, "")
	if err != nil {
		n.Discard()
	}
	return el, err
}

// paramNode builds the type exposing one action parameter.
func (c *Context) paramNode(ownerName string, a metamodel.Action, param metamodel.ActionParameter) *ElementCustom {
	elem := param.ElementType()
	n := newElementCustom(c, typenames.ActionParamTypeNameFor(ownerName, a.ID(), param.ID()), param.Description())
	n.AddChildField(c.hiddenField(param))
	n.AddChildField(c.disabledField(param))

	out, hasOut := c.outputType(elem)
	if hasOut && param.HasChoices() {
		n.AddChildField(c.field("choices", "choices", listOf(out), nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, param, target); err != nil {
				return nil, err
			}
			choices, err := param.Choices(p.Context, target)
			if err != nil {
				return nil, err
			}
			return c.renderAll(elem, choices)
		}))
	}
	if hasOut && param.HasAutoComplete() {
		n.AddChildField(c.field("autoComplete", "autoComplete", listOf(out), searchArgs(), func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, param, target); err != nil {
				return nil, err
			}
			matches, err := param.AutoComplete(p.Context, target, stringArg(p, "search"))
			if err != nil {
				return nil, err
			}
			return c.renderAll(elem, matches)
		}))
	}
	if hasOut && param.HasDefault() {
		n.AddChildField(c.field("default", "default", out, nil, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.target(p)
			if err != nil {
				return nil, err
			}
			if err := checkVisible(p.Context, param, target); err != nil {
				return nil, err
			}
			v, err := param.Default(p.Context, target)
			if err != nil {
				return nil, err
			}
			return c.render(elem, v)
		}))
	}

	in, _ := c.inputType(elem)
	n.AddChildField(c.field("validate", "validate", graphql.String, valueArgs(in), func(p graphql.ResolveParams) (interface{}, error) {
		target, err := c.target(p)
		if err != nil {
			return nil, err
		}
		if err := checkVisible(p.Context, param, target); err != nil {
			return nil, err
		}
		if err := checkUsable(p.Context, param, target); err != nil {
			return nil, err
		}
		value, err := c.parseArg(p.Context, param.Identifier(), elem, p.Args["value"])
		if err != nil {
			return reasonOf(err)
		}
		return vetoReason(func() metamodel.Consent { return param.IsValid(p.Context, target, value) }), nil
	}))
	return n
}
