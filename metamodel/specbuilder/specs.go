package specbuilder

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/valuesemantics"
)

// Metamodel is the immutable result of Model.Build.
type Metamodel struct {
	specs    []metamodel.ObjectSpecification
	byName   map[string]metamodel.ObjectSpecification
	byType   map[reflect.Type]metamodel.ObjectSpecification
	values   map[valuesemantics.Kind]*valueSpec
	services []interface{}
}

var _ metamodel.SpecificationLoader = (*Metamodel)(nil)

// Build validates every registration and resolves member types. Go types
// that are neither registered nor value types resolve to specifications of
// sort SortUnknown.
func (m *Model) Build() (*Metamodel, error) {
	mm := &Metamodel{
		byName: make(map[string]metamodel.ObjectSpecification),
		byType: make(map[reflect.Type]metamodel.ObjectSpecification),
		values: make(map[valuesemantics.Kind]*valueSpec),
	}

	var errs []error
	objects := make([]*objectSpec, 0, len(m.objects))
	for _, obj := range m.objects {
		errs = append(errs, obj.check()...)
		spec := &objectSpec{obj: obj}
		objects = append(objects, spec)
		mm.add(spec, obj.typ)
	}
	for _, e := range m.enums {
		mm.add(&enumSpec{enumType: e}, e.typ)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for _, spec := range objects {
		mm.resolveMembers(spec)
		if spec.obj.service != nil {
			mm.services = append(mm.services, spec.obj.service)
		}
	}

	sort.Slice(mm.specs, func(i, j int) bool {
		return mm.specs[i].LogicalTypeName() < mm.specs[j].LogicalTypeName()
	})
	sort.SliceStable(mm.services, func(i, j int) bool {
		a, _ := mm.SpecificationFor(mm.services[i])
		b, _ := mm.SpecificationFor(mm.services[j])
		return a.LogicalTypeName() < b.LogicalTypeName()
	})
	return mm, nil
}

func (mm *Metamodel) add(spec metamodel.ObjectSpecification, typ reflect.Type) {
	mm.specs = append(mm.specs, spec)
	mm.byName[spec.LogicalTypeName()] = spec
	mm.byType[typ] = spec
}

// check verifies that every hook accepts the object as its target.
func (o *Object) check() []error {
	var errs []error
	checkHook := func(what string, h *hook) {
		if h == nil {
			return
		}
		if len(h.ins) == 0 || !o.typ.AssignableTo(h.ins[0]) {
			errs = append(errs, fmt.Errorf("%s: target must be %s", what, o.typ))
		}
	}
	checkInteraction := func(what string, i interaction) {
		checkHook(what+" hidden", i.hidden)
		checkHook(what+" disabled", i.disabled)
	}

	checkHook(o.name+" title", o.title)
	checkHook(o.name+" version", o.version)
	for _, p := range o.properties {
		what := o.what(p.id)
		checkHook(what, p.getter)
		checkHook(what+" setter", p.setter)
		checkHook(what+" validate", p.validate)
		checkHook(what+" choices", p.choices)
		checkHook(what+" autoComplete", p.autoComplete)
		checkInteraction(what, p.interaction)
	}
	for _, c := range o.collections {
		checkHook(o.what(c.id), c.getter)
		checkInteraction(o.what(c.id), c.interaction)
	}
	for _, a := range o.actions {
		what := o.what(a.id)
		checkHook(what, a.fn)
		checkHook(what+" validate", a.validate)
		checkInteraction(what, a.interaction)
		for _, p := range a.params {
			checkHook(p.what()+" choices", p.choices)
			checkHook(p.what()+" autoComplete", p.autoComplete)
			checkHook(p.what()+" default", p.def)
			checkHook(p.what()+" validate", p.validate)
			checkInteraction(p.what(), p.interaction)
		}
	}
	return errs
}

func (mm *Metamodel) resolveMembers(spec *objectSpec) {
	obj := spec.obj
	for _, p := range obj.properties {
		spec.properties = append(spec.properties, &propertySpec{
			PropertyBuilder: p,
			element:         mm.resolve(p.getter.out),
		})
	}
	for _, c := range obj.collections {
		spec.collections = append(spec.collections, &collectionSpec{
			CollectionBuilder: c,
			element:           mm.resolve(c.getter.out.Elem()),
		})
	}
	for _, a := range obj.actions {
		as := &actionSpec{ActionBuilder: a}
		if out := a.fn.out; out != nil {
			if out.Kind() == reflect.Slice && out.Elem().Kind() != reflect.Uint8 {
				as.collection = true
				out = out.Elem()
			}
			as.returns = mm.resolve(out)
		}
		for _, p := range a.params {
			as.params = append(as.params, &paramSpec{ParamBuilder: p, element: mm.resolve(p.typ)})
		}
		spec.actions = append(spec.actions, as)
	}
}

// resolve maps a Go type to its specification.
func (mm *Metamodel) resolve(typ reflect.Type) metamodel.ObjectSpecification {
	if spec, ok := mm.byType[typ]; ok {
		return spec
	}
	switch typ.Kind() {
	case reflect.Struct:
		if spec, ok := mm.byType[reflect.PtrTo(typ)]; ok {
			return spec
		}
	case reflect.Ptr:
		if spec, ok := mm.byType[typ.Elem()]; ok {
			return spec
		}
	}
	if k, ok := valuesemantics.KindOf(typ); ok {
		return mm.value(k)
	}
	if typ.Kind() == reflect.Interface {
		return &otherSpec{name: typ.String(), sort: metamodel.SortAbstract}
	}
	return &otherSpec{name: typ.String(), sort: metamodel.SortUnknown}
}

func (mm *Metamodel) value(k valuesemantics.Kind) *valueSpec {
	if spec, ok := mm.values[k]; ok {
		return spec
	}
	spec := &valueSpec{kind: k}
	mm.values[k] = spec
	return spec
}

// SpecificationFor implements metamodel.SpecificationLoader.
func (mm *Metamodel) SpecificationFor(pojo interface{}) (metamodel.ObjectSpecification, bool) {
	typ := reflect.TypeOf(pojo)
	if typ == nil {
		return nil, false
	}
	spec := mm.resolve(typ)
	if spec.BeanSort() == metamodel.SortUnknown || spec.BeanSort() == metamodel.SortAbstract {
		return nil, false
	}
	return spec, true
}

// SpecificationByName implements metamodel.SpecificationLoader.
func (mm *Metamodel) SpecificationByName(logicalTypeName string) (metamodel.ObjectSpecification, bool) {
	spec, ok := mm.byName[logicalTypeName]
	return spec, ok
}

// Specifications implements metamodel.SpecificationLoader. Value types
// other than enums are not listed.
func (mm *Metamodel) Specifications() []metamodel.ObjectSpecification {
	return append([]metamodel.ObjectSpecification(nil), mm.specs...)
}

// Services implements metamodel.SpecificationLoader.
func (mm *Metamodel) Services() []interface{} {
	return append([]interface{}(nil), mm.services...)
}

// BookmarkNamer names domain objects and services for a bookmark.Repository.
// View models are bookmarked lazily.
func (mm *Metamodel) BookmarkNamer() bookmark.TypeNamer {
	return func(pojo interface{}) (string, bool, bool) {
		spec, ok := mm.SpecificationFor(pojo)
		if !ok {
			return "", false, false
		}
		bs := spec.BeanSort()
		if !bs.IsDomainObject() && !bs.IsService() {
			return "", false, false
		}
		return spec.LogicalTypeName(), bs.IsViewModel(), true
	}
}

// RegisterServices bookmarks every service in repo.
func (mm *Metamodel) RegisterServices(repo *bookmark.Repository) error {
	for _, svc := range mm.services {
		spec, _ := mm.SpecificationFor(svc)
		if _, err := repo.RegisterService(spec.LogicalTypeName(), svc); err != nil {
			return err
		}
	}
	return nil
}

// noMembers is embedded by specifications without members.
type noMembers struct{}

func (noMembers) Description() string                            { return "" }
func (noMembers) ValueType() valuesemantics.Kind                 { return valuesemantics.Unknown }
func (noMembers) EnumValues() []metamodel.EnumValue              { return nil }
func (noMembers) Properties() []metamodel.Property               { return nil }
func (noMembers) Collections() []metamodel.Collection            { return nil }
func (noMembers) Actions() []metamodel.Action                    { return nil }
func (noMembers) Property(string) (metamodel.Property, bool)     { return nil, false }
func (noMembers) Collection(string) (metamodel.Collection, bool) { return nil, false }
func (noMembers) Action(string) (metamodel.Action, bool)         { return nil, false }
func (noMembers) Title(pojo interface{}) string                  { return fmt.Sprint(pojo) }
func (noMembers) Version(interface{}) (interface{}, bool)        { return nil, false }

type valueSpec struct {
	noMembers
	kind valuesemantics.Kind
}

func (s *valueSpec) LogicalTypeName() string        { return s.kind.String() }
func (s *valueSpec) BeanSort() metamodel.BeanSort   { return metamodel.SortValue }
func (s *valueSpec) ValueType() valuesemantics.Kind { return s.kind }

type enumSpec struct {
	noMembers
	*enumType
}

func (s *enumSpec) LogicalTypeName() string           { return s.name }
func (s *enumSpec) BeanSort() metamodel.BeanSort      { return metamodel.SortValue }
func (s *enumSpec) EnumValues() []metamodel.EnumValue { return s.values }

type otherSpec struct {
	noMembers
	name string
	sort metamodel.BeanSort
}

func (s *otherSpec) LogicalTypeName() string      { return s.name }
func (s *otherSpec) BeanSort() metamodel.BeanSort { return s.sort }

type objectSpec struct {
	obj         *Object
	properties  []*propertySpec
	collections []*collectionSpec
	actions     []*actionSpec
}

func (s *objectSpec) LogicalTypeName() string           { return s.obj.name }
func (s *objectSpec) BeanSort() metamodel.BeanSort      { return s.obj.sort }
func (s *objectSpec) Description() string               { return s.obj.description }
func (s *objectSpec) ValueType() valuesemantics.Kind    { return valuesemantics.Unknown }
func (s *objectSpec) EnumValues() []metamodel.EnumValue { return nil }

func (s *objectSpec) Properties() []metamodel.Property {
	out := make([]metamodel.Property, len(s.properties))
	for i, p := range s.properties {
		out[i] = p
	}
	return out
}

func (s *objectSpec) Collections() []metamodel.Collection {
	out := make([]metamodel.Collection, len(s.collections))
	for i, c := range s.collections {
		out[i] = c
	}
	return out
}

func (s *objectSpec) Actions() []metamodel.Action {
	out := make([]metamodel.Action, len(s.actions))
	for i, a := range s.actions {
		out[i] = a
	}
	return out
}

func (s *objectSpec) Property(id string) (metamodel.Property, bool) {
	for _, p := range s.properties {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

func (s *objectSpec) Collection(id string) (metamodel.Collection, bool) {
	for _, c := range s.collections {
		if c.id == id {
			return c, true
		}
	}
	return nil, false
}

func (s *objectSpec) Action(id string) (metamodel.Action, bool) {
	for _, a := range s.actions {
		if a.id == id {
			return a, true
		}
	}
	return nil, false
}

func (s *objectSpec) Title(pojo interface{}) string {
	if s.obj.title != nil {
		if v, err := s.obj.title.call(context.Background(), pojo); err == nil {
			return reflect.ValueOf(v).String()
		}
	}
	if str, ok := pojo.(fmt.Stringer); ok {
		return str.String()
	}
	return s.obj.name
}

func (s *objectSpec) Version(pojo interface{}) (interface{}, bool) {
	if s.obj.version == nil {
		return nil, false
	}
	v, err := s.obj.version.call(context.Background(), pojo)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func (i *interaction) isVisible(ctx context.Context, target interface{}) metamodel.Consent {
	if i.hidden == nil {
		return metamodel.Allow()
	}
	v, err := i.hidden.call(ctx, target)
	if err != nil {
		return metamodel.Veto(err.Error())
	}
	if reflect.ValueOf(v).Bool() {
		return metamodel.Veto("Hidden")
	}
	return metamodel.Allow()
}

func (i *interaction) isUsable(ctx context.Context, target interface{}) metamodel.Consent {
	if i.disabled == nil {
		return metamodel.Allow()
	}
	return reasonOf(i.disabled.call(ctx, target))
}

// reasonOf turns the result of a reason hook into a consent.
func reasonOf(v interface{}, err error) metamodel.Consent {
	if err != nil {
		return metamodel.Veto(err.Error())
	}
	if v == nil {
		return metamodel.Allow()
	}
	return metamodel.VetoIf(reflect.ValueOf(v).String())
}

func callSlice(ctx context.Context, h *hook, args ...interface{}) ([]interface{}, error) {
	v, err := h.call(ctx, args...)
	if err != nil {
		return nil, err
	}
	return toSlice(v)
}

type propertySpec struct {
	*PropertyBuilder
	element metamodel.ObjectSpecification
}

func (p *propertySpec) ID() string          { return p.id }
func (p *propertySpec) Description() string { return p.description }
func (p *propertySpec) Identifier() metamodel.Identifier {
	return metamodel.MemberIdentifier(p.owner.name, p.id)
}
func (p *propertySpec) ElementType() metamodel.ObjectSpecification { return p.element }
func (p *propertySpec) IsOptional() bool                           { return p.optional }
func (p *propertySpec) HasChoices() bool                           { return p.choices != nil }
func (p *propertySpec) HasAutoComplete() bool                      { return p.autoComplete != nil }
func (p *propertySpec) IsEditable() bool                           { return p.setter != nil }

func (p *propertySpec) IsVisible(ctx context.Context, target interface{}) metamodel.Consent {
	return p.isVisible(ctx, target)
}

// IsUsable vetoes properties without a setter.
func (p *propertySpec) IsUsable(ctx context.Context, target interface{}) metamodel.Consent {
	if c := p.isUsable(ctx, target); !c.IsAllowed() {
		return c
	}
	if p.setter == nil {
		return metamodel.Veto("Not editable")
	}
	return metamodel.Allow()
}

func (p *propertySpec) Get(ctx context.Context, target interface{}) (interface{}, error) {
	return p.getter.call(ctx, target)
}

func (p *propertySpec) Choices(ctx context.Context, target interface{}) ([]interface{}, error) {
	if p.choices == nil {
		return nil, nil
	}
	return callSlice(ctx, p.choices, target)
}

func (p *propertySpec) AutoComplete(ctx context.Context, target interface{}, search string) ([]interface{}, error) {
	if p.autoComplete == nil {
		return nil, nil
	}
	return callSlice(ctx, p.autoComplete, target, search)
}

func (p *propertySpec) IsAssociationValid(ctx context.Context, target, value interface{}) metamodel.Consent {
	if value == nil && !p.optional {
		return metamodel.Veto(fmt.Sprintf("'%s' is mandatory", p.id))
	}
	if value != nil && !acceptable(p.getter.out, value) {
		return metamodel.Veto(fmt.Sprintf("'%s' expects %s", p.id, p.element.LogicalTypeName()))
	}
	if p.validate == nil {
		return metamodel.Allow()
	}
	return reasonOf(p.validate.call(ctx, target, value))
}

func (p *propertySpec) Set(ctx context.Context, target, value interface{}) error {
	if p.setter == nil {
		return fmt.Errorf("%s is not editable", p.Identifier())
	}
	_, err := p.setter.call(ctx, target, value)
	return err
}

// acceptable reports whether value can be assigned to a variable of typ.
func acceptable(typ reflect.Type, value interface{}) bool {
	return assign(reflect.New(typ).Elem(), value) == nil
}

type collectionSpec struct {
	*CollectionBuilder
	element metamodel.ObjectSpecification
}

func (c *collectionSpec) ID() string          { return c.id }
func (c *collectionSpec) Description() string { return c.description }
func (c *collectionSpec) Identifier() metamodel.Identifier {
	return metamodel.MemberIdentifier(c.owner.name, c.id)
}
func (c *collectionSpec) ElementType() metamodel.ObjectSpecification { return c.element }

func (c *collectionSpec) IsVisible(ctx context.Context, target interface{}) metamodel.Consent {
	return c.isVisible(ctx, target)
}

func (c *collectionSpec) IsUsable(ctx context.Context, target interface{}) metamodel.Consent {
	return c.isUsable(ctx, target)
}

func (c *collectionSpec) Get(ctx context.Context, target interface{}) ([]interface{}, error) {
	return callSlice(ctx, c.getter, target)
}

type actionSpec struct {
	*ActionBuilder
	returns    metamodel.ObjectSpecification
	collection bool
	params     []*paramSpec
}

func (a *actionSpec) ID() string          { return a.id }
func (a *actionSpec) Description() string { return a.description }
func (a *actionSpec) Identifier() metamodel.Identifier {
	return metamodel.MemberIdentifier(a.owner.name, a.id)
}
func (a *actionSpec) Semantics() metamodel.ActionSemantics      { return a.semantics }
func (a *actionSpec) ReturnType() metamodel.ObjectSpecification { return a.returns }
func (a *actionSpec) ReturnsCollection() bool                   { return a.collection }

func (a *actionSpec) Parameters() []metamodel.ActionParameter {
	out := make([]metamodel.ActionParameter, len(a.params))
	for i, p := range a.params {
		out[i] = p
	}
	return out
}

func (a *actionSpec) IsVisible(ctx context.Context, target interface{}) metamodel.Consent {
	return a.isVisible(ctx, target)
}

func (a *actionSpec) IsUsable(ctx context.Context, target interface{}) metamodel.Consent {
	return a.isUsable(ctx, target)
}

// IsArgumentSetValid checks each argument in turn, then the argument set as
// a whole.
func (a *actionSpec) IsArgumentSetValid(ctx context.Context, target interface{}, args []interface{}) metamodel.Consent {
	for _, p := range a.params {
		var value interface{}
		if p.number < len(args) {
			value = args[p.number]
		}
		if c := p.IsValid(ctx, target, value); !c.IsAllowed() {
			return c
		}
	}
	if a.validate == nil {
		return metamodel.Allow()
	}
	if a.argsType == nil {
		return reasonOf(a.validate.call(ctx, target))
	}
	av, err := argsValue(a.ActionBuilder, args)
	if err != nil {
		return metamodel.Veto(err.Error())
	}
	return reasonOf(a.validate.call(ctx, target, av))
}

// Execute invokes the action. Collection results are returned as
// []interface{}.
func (a *actionSpec) Execute(ctx context.Context, target interface{}, args []interface{}) (interface{}, error) {
	var (
		result interface{}
		err    error
	)
	if a.argsType == nil {
		result, err = a.fn.call(ctx, target)
	} else {
		av, aerr := argsValue(a.ActionBuilder, args)
		if aerr != nil {
			return nil, aerr
		}
		result, err = a.fn.call(ctx, target, av)
	}
	if err != nil || !a.collection {
		return result, err
	}
	return toSlice(result)
}

type paramSpec struct {
	*ParamBuilder
	element metamodel.ObjectSpecification
}

func (p *paramSpec) ID() string          { return p.id }
func (p *paramSpec) Number() int         { return p.number }
func (p *paramSpec) Description() string { return p.description }
func (p *paramSpec) Identifier() metamodel.Identifier {
	return metamodel.MemberIdentifier(p.action.owner.name, p.action.id).ParameterIdentifier(p.id)
}
func (p *paramSpec) ElementType() metamodel.ObjectSpecification { return p.element }
func (p *paramSpec) IsOptional() bool                           { return p.optional }
func (p *paramSpec) HasChoices() bool                           { return p.choices != nil }
func (p *paramSpec) HasAutoComplete() bool                      { return p.autoComplete != nil }
func (p *paramSpec) HasDefault() bool                           { return p.def != nil }

func (p *paramSpec) IsVisible(ctx context.Context, target interface{}) metamodel.Consent {
	return p.isVisible(ctx, target)
}

func (p *paramSpec) IsUsable(ctx context.Context, target interface{}) metamodel.Consent {
	return p.isUsable(ctx, target)
}

func (p *paramSpec) Choices(ctx context.Context, target interface{}) ([]interface{}, error) {
	if p.choices == nil {
		return nil, nil
	}
	return callSlice(ctx, p.choices, target)
}

func (p *paramSpec) AutoComplete(ctx context.Context, target interface{}, search string) ([]interface{}, error) {
	if p.autoComplete == nil {
		return nil, nil
	}
	return callSlice(ctx, p.autoComplete, target, search)
}

func (p *paramSpec) Default(ctx context.Context, target interface{}) (interface{}, error) {
	if p.def == nil {
		return nil, nil
	}
	return p.def.call(ctx, target)
}

func (p *paramSpec) IsValid(ctx context.Context, target, value interface{}) metamodel.Consent {
	if value == nil && !p.optional {
		return metamodel.Veto(fmt.Sprintf("'%s' is mandatory", p.id))
	}
	if value != nil && !acceptable(p.typ, value) {
		return metamodel.Veto(fmt.Sprintf("'%s' expects %s", p.id, p.element.LogicalTypeName()))
	}
	if p.validate == nil {
		return metamodel.Allow()
	}
	return reasonOf(p.validate.call(ctx, target, value))
}
