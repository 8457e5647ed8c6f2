// Package specbuilder builds a metamodel.SpecificationLoader from Go types
// and funcs registered at startup.
//
// Objects are registered by logical type name together with a prototype
// value. Their members are declared with funcs, in the same way a resolver
// is attached to a GraphQL field:
//
//	m := specbuilder.New()
//	order := m.Entity("demo.Order", &Order{})
//	order.Property("notes", func(o *Order) string { return o.Notes }).
//		Setter(func(o *Order, notes string) { o.Notes = notes }).
//		Validate(func(o *Order, notes string) string {
//			if len(notes) > 80 {
//				return "too long"
//			}
//			return ""
//		})
//	order.Action("cancel", func(ctx context.Context, o *Order) (*Order, error) {
//		return o, o.Cancel(ctx)
//	}).Disabled(func(o *Order) string {
//		if o.Shipped {
//			return "already shipped"
//		}
//		return ""
//	})
//	mm, err := m.Build()
//
// Registration mistakes (duplicate names, malformed funcs) panic.
package specbuilder

import (
	"fmt"
	"reflect"
	"sort"

	"go.causeway.dev/gqlv/metamodel"
)

// Model collects registrations. It is not safe for concurrent use.
type Model struct {
	objects []*Object
	enums   []*enumType
	names   map[string]bool
	types   map[reflect.Type]bool
}

// New returns an empty Model.
func New() *Model {
	return &Model{
		names: make(map[string]bool),
		types: make(map[reflect.Type]bool),
	}
}

// Object is a registered entity, view model or domain service.
type Object struct {
	name        string
	sort        metamodel.BeanSort
	typ         reflect.Type
	description string
	service     interface{}

	title   *hook
	version *hook

	memberIDs   map[string]bool
	properties  []*PropertyBuilder
	collections []*CollectionBuilder
	actions     []*ActionBuilder
}

type enumType struct {
	name   string
	typ    reflect.Type
	values []metamodel.EnumValue
}

// Entity registers a persistent domain type. proto is a value or a typed nil
// pointer of the Go type.
func (m *Model) Entity(name string, proto interface{}) *Object {
	return m.register(name, proto, metamodel.SortEntity)
}

// ViewModel registers a non-persistent domain type.
func (m *Model) ViewModel(name string, proto interface{}) *Object {
	return m.register(name, proto, metamodel.SortViewModel)
}

// Service registers a singleton domain service. pojo is the instance every
// request is served by.
func (m *Model) Service(name string, pojo interface{}) *Object {
	if pojo == nil || (reflect.ValueOf(pojo).Kind() == reflect.Ptr && reflect.ValueOf(pojo).IsNil()) {
		panic(fmt.Errorf("service %s: nil instance", name))
	}
	obj := m.register(name, pojo, metamodel.SortManagedBean)
	obj.service = pojo
	return obj
}

// Enum registers an enum value type. values maps constant names to values of
// proto's type; constants are exposed sorted by name.
func (m *Model) Enum(name string, proto interface{}, values map[string]interface{}) {
	typ := reflect.TypeOf(proto)
	if typ == nil {
		panic(fmt.Errorf("enum %s: nil prototype", name))
	}
	m.claim(name, typ)
	if len(values) == 0 {
		panic(fmt.Errorf("enum %s: no values", name))
	}

	e := &enumType{name: name, typ: typ}
	for n, v := range values {
		if reflect.TypeOf(v) != typ {
			panic(fmt.Errorf("enum %s: value %s has type %T, expected %s", name, n, v, typ))
		}
		e.values = append(e.values, metamodel.EnumValue{Name: n, Value: v})
	}
	sort.Slice(e.values, func(i, j int) bool { return e.values[i].Name < e.values[j].Name })
	m.enums = append(m.enums, e)
}

func (m *Model) register(name string, proto interface{}, bs metamodel.BeanSort) *Object {
	typ := typeKey(proto)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		panic(fmt.Errorf("%s: expected a struct or pointer to struct, got %T", name, proto))
	}
	m.claim(name, typ)

	obj := &Object{
		name:      name,
		sort:      bs,
		typ:       typ,
		memberIDs: make(map[string]bool),
	}
	m.objects = append(m.objects, obj)
	return obj
}

func (m *Model) claim(name string, typ reflect.Type) {
	if name == "" {
		panic(fmt.Errorf("%s: empty logical type name", typ))
	}
	if m.names[name] {
		panic(fmt.Errorf("duplicate logical type name %s", name))
	}
	if m.types[typ] {
		panic(fmt.Errorf("%s: type %s already registered", name, typ))
	}
	m.names[name] = true
	m.types[typ] = true
}

// Name returns the logical type name.
func (o *Object) Name() string {
	return o.name
}

// Describe sets the description of the type.
func (o *Object) Describe(text string) *Object {
	o.description = text
	return o
}

// Title sets the title func, func([ctx], *T) string. Without one, the title
// is taken from fmt.Stringer, else the logical type name.
func (o *Object) Title(fn interface{}) *Object {
	o.title = newHook(o.name+" title", fn, 1, true)
	if o.title.out.Kind() != reflect.String {
		panic(fmt.Errorf("%s title: must return a string", o.name))
	}
	return o
}

// Version sets the optimistic locking version func, func([ctx], *T) V.
// Only entities have versions.
func (o *Object) Version(fn interface{}) *Object {
	if !o.sort.IsEntity() {
		panic(fmt.Errorf("%s: only entities have a version", o.name))
	}
	o.version = newHook(o.name+" version", fn, 1, true)
	return o
}

func (o *Object) claimMember(id string) {
	if id == "" {
		panic(fmt.Errorf("%s: empty member id", o.name))
	}
	if o.memberIDs[id] {
		panic(fmt.Errorf("%s: duplicate member %s", o.name, id))
	}
	o.memberIDs[id] = true
}

func (o *Object) what(id string) string {
	return metamodel.MemberIdentifier(o.name, id).String()
}

// interaction holds the hide and disable hooks shared by every feature.
type interaction struct {
	hidden   *hook
	disabled *hook
}

func (i *interaction) setHidden(what string, fn interface{}) {
	i.hidden = newHook(what+" hidden", fn, 1, true)
	if i.hidden.out.Kind() != reflect.Bool {
		panic(fmt.Errorf("%s hidden: must return a bool", what))
	}
}

func (i *interaction) setDisabled(what string, fn interface{}) {
	i.disabled = newHook(what+" disabled", fn, 1, true)
	if i.disabled.out.Kind() != reflect.String {
		panic(fmt.Errorf("%s disabled: must return a reason string", what))
	}
}

// reasonHook checks that a validate hook returns a reason string.
func reasonHook(what string, fn interface{}, nIn int) *hook {
	h := newHook(what+" validate", fn, nIn, true)
	if h.out.Kind() != reflect.String {
		panic(fmt.Errorf("%s validate: must return a reason string", what))
	}
	return h
}

// sliceHook checks that a choices or autoComplete hook returns a slice.
func sliceHook(what string, fn interface{}, nIn int) *hook {
	h := newHook(what, fn, nIn, true)
	if h.out.Kind() != reflect.Slice {
		panic(fmt.Errorf("%s: must return a slice", what))
	}
	return h
}

// PropertyBuilder declares a scalar or reference property.
type PropertyBuilder struct {
	owner       *Object
	id          string
	description string
	optional    bool

	getter       *hook
	setter       *hook
	validate     *hook
	choices      *hook
	autoComplete *hook
	interaction
}

// Property declares a property read by getter, func([ctx], *T) (V, [error]).
// Pointer typed properties are optional.
func (o *Object) Property(id string, getter interface{}) *PropertyBuilder {
	o.claimMember(id)
	p := &PropertyBuilder{owner: o, id: id}
	p.getter = newHook(o.what(id)+" getter", getter, 1, true)
	if p.getter.out.Kind() == reflect.Slice && p.getter.out.Elem().Kind() != reflect.Uint8 {
		panic(fmt.Errorf("%s: slices are collections, not properties", o.what(id)))
	}
	p.optional = p.getter.out.Kind() == reflect.Ptr
	o.properties = append(o.properties, p)
	return p
}

// Setter makes the property editable, func([ctx], *T, V) [error].
func (p *PropertyBuilder) Setter(fn interface{}) *PropertyBuilder {
	p.setter = newHook(p.owner.what(p.id)+" setter", fn, 2, false)
	return p
}

// Hidden sets func([ctx], *T) bool.
func (p *PropertyBuilder) Hidden(fn interface{}) *PropertyBuilder {
	p.setHidden(p.owner.what(p.id), fn)
	return p
}

// Disabled sets func([ctx], *T) string; a non-empty result is the reason.
func (p *PropertyBuilder) Disabled(fn interface{}) *PropertyBuilder {
	p.setDisabled(p.owner.what(p.id), fn)
	return p
}

// Validate sets func([ctx], *T, V) string, checked before the setter runs.
func (p *PropertyBuilder) Validate(fn interface{}) *PropertyBuilder {
	p.validate = reasonHook(p.owner.what(p.id), fn, 2)
	return p
}

// Choices sets func([ctx], *T) []V.
func (p *PropertyBuilder) Choices(fn interface{}) *PropertyBuilder {
	p.choices = sliceHook(p.owner.what(p.id)+" choices", fn, 1)
	return p
}

// AutoComplete sets func([ctx], *T, search string) []V.
func (p *PropertyBuilder) AutoComplete(fn interface{}) *PropertyBuilder {
	p.autoComplete = sliceHook(p.owner.what(p.id)+" autoComplete", fn, 2)
	return p
}

// Optional marks the property as not mandatory.
func (p *PropertyBuilder) Optional() *PropertyBuilder {
	p.optional = true
	return p
}

// Describe sets the description.
func (p *PropertyBuilder) Describe(text string) *PropertyBuilder {
	p.description = text
	return p
}

// CollectionBuilder declares a to-many association.
type CollectionBuilder struct {
	owner       *Object
	id          string
	description string
	getter      *hook
	interaction
}

// Collection declares a collection read by getter, func([ctx], *T) ([]E, [error]).
func (o *Object) Collection(id string, getter interface{}) *CollectionBuilder {
	o.claimMember(id)
	c := &CollectionBuilder{owner: o, id: id}
	c.getter = sliceHook(o.what(id)+" getter", getter, 1)
	o.collections = append(o.collections, c)
	return c
}

// Hidden sets func([ctx], *T) bool.
func (c *CollectionBuilder) Hidden(fn interface{}) *CollectionBuilder {
	c.setHidden(c.owner.what(c.id), fn)
	return c
}

// Disabled sets func([ctx], *T) string.
func (c *CollectionBuilder) Disabled(fn interface{}) *CollectionBuilder {
	c.setDisabled(c.owner.what(c.id), fn)
	return c
}

// Describe sets the description.
func (c *CollectionBuilder) Describe(text string) *CollectionBuilder {
	c.description = text
	return c
}

// ActionBuilder declares an action.
type ActionBuilder struct {
	owner       *Object
	id          string
	description string
	semantics   metamodel.ActionSemantics

	fn       *hook
	argsType reflect.Type
	params   []*ParamBuilder
	validate *hook
	interaction
}

// Action declares an action. fn has the shape
//
//	func([ctx context.Context], target *T, [args struct{...}]) ([Result], [error])
//
// Every exported field of the args struct is a parameter, in field order.
// Actions are non-idempotent unless Semantics says otherwise.
func (o *Object) Action(id string, fn interface{}) *ActionBuilder {
	o.claimMember(id)
	what := o.what(id)

	n := funcArity(fn)
	if n != 1 && n != 2 {
		panic(fmt.Errorf("%s: expected func([ctx], *T, [args]), got %T", what, fn))
	}
	a := &ActionBuilder{owner: o, id: id, semantics: metamodel.NonIdempotent}
	a.fn = newHook(what, fn, n, false)

	if n == 2 {
		a.argsType = a.fn.ins[1]
		if a.argsType.Kind() != reflect.Struct {
			panic(fmt.Errorf("%s: arguments must be a struct, got %s", what, a.argsType))
		}
		a.params = parseParams(a, a.argsType)
	}
	o.actions = append(o.actions, a)
	return a
}

// Semantics sets the action semantics.
func (a *ActionBuilder) Semantics(s metamodel.ActionSemantics) *ActionBuilder {
	a.semantics = s
	return a
}

// Hidden sets func([ctx], *T) bool.
func (a *ActionBuilder) Hidden(fn interface{}) *ActionBuilder {
	a.setHidden(a.owner.what(a.id), fn)
	return a
}

// Disabled sets func([ctx], *T) string.
func (a *ActionBuilder) Disabled(fn interface{}) *ActionBuilder {
	a.setDisabled(a.owner.what(a.id), fn)
	return a
}

// Validate sets func([ctx], *T, [args]) string, checked after every
// parameter is individually valid.
func (a *ActionBuilder) Validate(fn interface{}) *ActionBuilder {
	n := 1
	if a.argsType != nil {
		n = 2
	}
	a.validate = reasonHook(a.owner.what(a.id), fn, n)
	return a
}

// Describe sets the description.
func (a *ActionBuilder) Describe(text string) *ActionBuilder {
	a.description = text
	return a
}

// Param returns the builder of parameter id.
func (a *ActionBuilder) Param(id string) *ParamBuilder {
	for _, p := range a.params {
		if p.id == id {
			return p
		}
	}
	panic(fmt.Errorf("%s: no parameter %s", a.owner.what(a.id), id))
}
