package schemabuilder

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/typenames"
)

const (
	// MutationTypeName names the mutation root.
	MutationTypeName = "Mutation"
	// TargetArgName is the argument of mutation fields naming the object
	// acted upon.
	TargetArgName = "_gqlv_target"
)

// mutationRoot builds one mutation per non-safe action and per editable
// property. It returns nil when there is nothing to mutate.
func (c *Context) mutationRoot() (*graphql.Object, error) {
	n := newElementCustom(c, MutationTypeName, "")

	for _, pojo := range c.Specs.Services() {
		spec, ok := c.Specs.SpecificationFor(pojo)
		if !ok {
			continue
		}
		svc, ok := c.services[spec.LogicalTypeName()]
		if !ok {
			continue
		}
		c.addServiceMutations(n, svc)
	}

	// Building a mutation can discover domain types not seen so far.
	done := map[string]bool{}
	for {
		var pending []string
		for name := range c.objects {
			if !done[name] {
				pending = append(pending, name)
			}
		}
		if len(pending) == 0 {
			break
		}
		sort.Strings(pending)
		for _, name := range pending {
			done[name] = true
			c.addObjectMutations(n, c.objects[name])
		}
	}

	if n.NumFields() == 0 {
		n.Discard()
		return nil, nil
	}
	return n.BuildType()
}

func (c *Context) addServiceMutations(root *ElementCustom, svc *domainServiceNode) {
	ownerName := svc.spec.LogicalTypeName()
	pojo := svc.pojo
	for _, a := range svc.spec.Actions() {
		a := a
		if a.Semantics().IsSafe() {
			continue
		}
		args, ok := c.actionArgs(a, true)
		if !ok {
			continue
		}
		ret, ok := c.returnType(svc.ElementCustom, a)
		if !ok {
			continue
		}
		name := typenames.MutationFieldNameFor(ownerName, a.ID())
		el := c.field(name, "invoke", ret, args, func(p graphql.ResolveParams) (interface{}, error) {
			return c.invokeAction(p.Context, a, pojo, p.Args)
		})
		el.Field.Description = a.Description()
		c.addMutation(root, a.Identifier(), el)
	}
}

func (c *Context) addObjectMutations(root *ElementCustom, obj *domainObjectNode) {
	spec := obj.spec
	ownerName := spec.LogicalTypeName()
	targetArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(c.objectInputType(spec))}

	for _, a := range spec.Actions() {
		a := a
		if a.Semantics().IsSafe() {
			continue
		}
		args, ok := c.actionArgs(a, true)
		if !ok {
			continue
		}
		ret, ok := c.returnType(obj.ElementCustom, a)
		if !ok {
			continue
		}
		args[TargetArgName] = targetArg
		name := typenames.MutationFieldNameFor(ownerName, a.ID())
		el := c.field(name, "invoke", ret, args, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.mutationTarget(p, spec)
			if err != nil {
				return nil, err
			}
			return c.invokeAction(p.Context, a, target, p.Args)
		})
		el.Field.Description = a.Description()
		c.addMutation(root, a.Identifier(), el)
	}

	ownerType, err := obj.Ref()
	if err != nil {
		return
	}
	for _, prop := range spec.Properties() {
		prop := prop
		if !prop.IsEditable() {
			continue
		}
		in, ok := c.inputType(prop.ElementType())
		if !ok {
			continue
		}
		args := valueArgs(in)
		args[TargetArgName] = targetArg
		name := typenames.MutationFieldNameFor(ownerName, prop.ID())
		el := c.field(name, "set", ownerType, args, func(p graphql.ResolveParams) (interface{}, error) {
			target, err := c.mutationTarget(p, spec)
			if err != nil {
				return nil, err
			}
			if err := c.setProperty(p, prop, target); err != nil {
				return nil, err
			}
			return c.wrap(target), nil
		})
		el.Field.Description = prop.Description()
		c.addMutation(root, prop.Identifier(), el)
	}
}

// addMutation adds el to the mutation root unless its name is taken.
func (c *Context) addMutation(root *ElementCustom, id metamodel.Identifier, el Element) {
	if root.HasChildField(el.Name) {
		c.skip(id, fmt.Sprintf("mutation name %s already taken", el.Name))
		return
	}
	root.AddChildField(el)
}

// mutationTarget resolves the _gqlv_target argument.
func (c *Context) mutationTarget(p graphql.ResolveParams, spec metamodel.ObjectSpecification) (interface{}, error) {
	ref, _ := p.Args[TargetArgName].(map[string]interface{})
	id, _ := ref["id"].(string)
	name, _ := ref["ref"].(string)
	return c.lookup(p.Context, spec, id, name)
}
