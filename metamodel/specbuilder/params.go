package specbuilder

import (
	"fmt"
	"reflect"

	"go.causeway.dev/gqlv/metamodel"
)

// ParamBuilder declares the supporting hooks of one action parameter. Hooks
// take the action's target, not the arguments.
type ParamBuilder struct {
	action      *ActionBuilder
	id          string
	number      int
	field       int
	typ         reflect.Type
	description string
	optional    bool

	choices      *hook
	autoComplete *hook
	def          *hook
	validate     *hook
	interaction
}

// parseParams turns the exported fields of an args struct into parameters.
func parseParams(a *ActionBuilder, typ reflect.Type) []*ParamBuilder {
	var params []*ParamBuilder
	seen := make(map[string]bool)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		info := parseParamFieldInfo(field)
		if info.Skipped {
			continue
		}
		if seen[info.Name] {
			panic(fmt.Errorf("%s: duplicate parameter %s", a.owner.what(a.id), info.Name))
		}
		seen[info.Name] = true

		params = append(params, &ParamBuilder{
			action:      a,
			id:          info.Name,
			number:      len(params),
			field:       i,
			typ:         field.Type,
			description: info.Description,
			optional:    info.Optional || field.Type.Kind() == reflect.Ptr,
		})
	}
	return params
}

func (p *ParamBuilder) what() string {
	return metamodel.MemberIdentifier(p.action.owner.name, p.action.id).ParameterIdentifier(p.id).String()
}

// Choices sets func([ctx], *T) []V.
func (p *ParamBuilder) Choices(fn interface{}) *ParamBuilder {
	p.choices = sliceHook(p.what()+" choices", fn, 1)
	return p
}

// AutoComplete sets func([ctx], *T, search string) []V.
func (p *ParamBuilder) AutoComplete(fn interface{}) *ParamBuilder {
	p.autoComplete = sliceHook(p.what()+" autoComplete", fn, 2)
	return p
}

// Default sets func([ctx], *T) V.
func (p *ParamBuilder) Default(fn interface{}) *ParamBuilder {
	p.def = newHook(p.what()+" default", fn, 1, true)
	return p
}

// Validate sets func([ctx], *T, V) string.
func (p *ParamBuilder) Validate(fn interface{}) *ParamBuilder {
	p.validate = reasonHook(p.what(), fn, 2)
	return p
}

// Hidden sets func([ctx], *T) bool.
func (p *ParamBuilder) Hidden(fn interface{}) *ParamBuilder {
	p.setHidden(p.what(), fn)
	return p
}

// Disabled sets func([ctx], *T) string.
func (p *ParamBuilder) Disabled(fn interface{}) *ParamBuilder {
	p.setDisabled(p.what(), fn)
	return p
}

// Optional marks the parameter as not mandatory.
func (p *ParamBuilder) Optional() *ParamBuilder {
	p.optional = true
	return p
}

// Describe sets the description.
func (p *ParamBuilder) Describe(text string) *ParamBuilder {
	p.description = text
	return p
}

// argsValue packs positional arguments into the action's args struct.
func argsValue(a *ActionBuilder, args []interface{}) (interface{}, error) {
	v := reflect.New(a.argsType).Elem()
	for _, p := range a.params {
		if p.number >= len(args) {
			continue
		}
		if err := assign(v.Field(p.field), args[p.number]); err != nil {
			return nil, fmt.Errorf("%s: %w", p.what(), err)
		}
	}
	return v.Interface(), nil
}
