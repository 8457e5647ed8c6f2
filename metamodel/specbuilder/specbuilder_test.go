package specbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/valuesemantics"
)

type color int

const (
	red color = iota
	blue
)

type widget struct {
	Name    string
	Color   color
	Count   int
	Shipped bool
	Parts   []*part
	Version int64
}

type part struct {
	Label string
	Owner *widget
}

type factory struct{ made int }

func buildWidgetModel(t *testing.T) *Metamodel {
	m := New()
	m.Enum("demo.Color", red, map[string]interface{}{"RED": red, "BLUE": blue})

	w := m.Entity("demo.Widget", &widget{})
	w.Title(func(w *widget) string { return "Widget " + w.Name })
	w.Version(func(w *widget) int64 { return w.Version })
	w.Property("name", func(w *widget) string { return w.Name }).
		Setter(func(w *widget, name string) { w.Name = name }).
		Validate(func(w *widget, name string) string {
			if len(name) > 5 {
				return "too long"
			}
			return ""
		})
	w.Property("color", func(w *widget) color { return w.Color })
	w.Property("count", func(w *widget) int { return w.Count }).
		Setter(func(w *widget, n int) { w.Count = n }).
		Disabled(func(w *widget) string {
			if w.Shipped {
				return "already shipped"
			}
			return ""
		})
	w.Property("secret", func(w *widget) string { return "s" }).
		Hidden(func(w *widget) bool { return true })
	w.Collection("parts", func(w *widget) []*part { return w.Parts })
	w.Action("grow", func(ctx context.Context, w *widget, args struct {
		By    int
		Label *string `graphql:"label,description=Optional label"`
	}) (*widget, error) {
		w.Count += args.By
		if args.Label != nil {
			w.Name = *args.Label
		}
		return w, nil
	}).
		Validate(func(w *widget, args struct {
			By    int
			Label *string `graphql:"label,description=Optional label"`
		}) string {
			if w.Count+args.By > 10 {
				return "too big"
			}
			return ""
		}).
		Param("by").
		Validate(func(w *widget, by int) string {
			if by <= 0 {
				return "must be positive"
			}
			return ""
		}).
		Choices(func(w *widget) []int { return []int{1, 2, 3} }).
		Default(func(w *widget) int { return 1 })
	w.Action("listParts", func(w *widget) []*part { return w.Parts }).Semantics(metamodel.Safe)

	p := m.ViewModel("demo.Part", &part{})
	p.Property("label", func(p *part) string { return p.Label })
	p.Property("owner", func(p *part) *widget { return p.Owner })

	f := m.Service("demo.Factory", &factory{})
	f.Action("make", func(f *factory, args struct{ Name string }) *widget {
		f.made++
		return &widget{Name: args.Name}
	})
	f.Action("broken", func(f *factory) error { return errors.New("boom") })

	mm, err := m.Build()
	require.NoError(t, err)
	return mm
}

func TestBuildResolvesTypes(t *testing.T) {
	mm := buildWidgetModel(t)

	names := []string{}
	for _, s := range mm.Specifications() {
		names = append(names, s.LogicalTypeName())
	}
	assert.Equal(t, []string{"demo.Color", "demo.Factory", "demo.Part", "demo.Widget"}, names)

	w, ok := mm.SpecificationByName("demo.Widget")
	require.True(t, ok)
	assert.Equal(t, metamodel.SortEntity, w.BeanSort())

	colorProp, ok := w.Property("color")
	require.True(t, ok)
	assert.Equal(t, "demo.Color", colorProp.ElementType().LogicalTypeName())
	assert.Len(t, colorProp.ElementType().EnumValues(), 2)
	assert.Equal(t, "BLUE", colorProp.ElementType().EnumValues()[0].Name)

	count, _ := w.Property("count")
	assert.Equal(t, valuesemantics.Long, count.ElementType().ValueType())

	parts, ok := w.Collection("parts")
	require.True(t, ok)
	assert.Equal(t, "demo.Part", parts.ElementType().LogicalTypeName())

	owner, _ := mm.byName["demo.Part"].Property("owner")
	assert.Same(t, w, owner.ElementType(), "cyclic references resolve to the same specification")

	list, _ := w.Action("listParts")
	assert.True(t, list.ReturnsCollection())
	assert.True(t, list.Semantics().IsSafe())

	grow, _ := w.Action("grow")
	assert.Equal(t, metamodel.NonIdempotent, grow.Semantics())
	params := grow.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "by", params[0].ID())
	assert.False(t, params[0].IsOptional())
	assert.Equal(t, "label", params[1].ID())
	assert.True(t, params[1].IsOptional())
	assert.Equal(t, "Optional label", params[1].Description())
	assert.Equal(t, "demo.Widget#grow(by)", params[0].Identifier().String())
}

func TestPropertyInteractions(t *testing.T) {
	ctx := context.Background()
	mm := buildWidgetModel(t)
	w, _ := mm.SpecificationByName("demo.Widget")
	target := &widget{Name: "w", Count: 2}

	name, _ := w.Property("name")
	assert.True(t, name.IsEditable())
	assert.True(t, name.IsUsable(ctx, target).IsAllowed())
	assert.Equal(t, "too long", name.IsAssociationValid(ctx, target, "abcdefg").Reason)
	assert.False(t, name.IsAssociationValid(ctx, target, nil).IsAllowed())
	assert.False(t, name.IsAssociationValid(ctx, target, 12).IsAllowed())
	require.NoError(t, name.Set(ctx, target, "abc"))
	assert.Equal(t, "abc", target.Name)

	count, _ := w.Property("count")
	require.NoError(t, count.Set(ctx, target, int64(4)))
	assert.Equal(t, 4, target.Count)
	target.Shipped = true
	assert.Equal(t, "already shipped", count.IsUsable(ctx, target).Reason)

	colorProp, _ := w.Property("color")
	assert.False(t, colorProp.IsEditable())
	assert.Equal(t, "Not editable", colorProp.IsUsable(ctx, target).Reason)
	assert.Error(t, colorProp.Set(ctx, target, blue))

	secret, _ := w.Property("secret")
	assert.False(t, secret.IsVisible(ctx, target).IsAllowed())

	assert.Equal(t, "Widget abc", w.Title(target))
	target.Version = 9
	v, ok := w.Version(target)
	require.True(t, ok)
	assert.Equal(t, int64(9), v)
}

func TestActionInteractions(t *testing.T) {
	ctx := context.Background()
	mm := buildWidgetModel(t)
	w, _ := mm.SpecificationByName("demo.Widget")
	target := &widget{Count: 5}

	grow, _ := w.Action("grow")
	assert.Equal(t, "'by' is mandatory", grow.IsArgumentSetValid(ctx, target, []interface{}{nil, nil}).Reason)
	assert.Equal(t, "must be positive", grow.IsArgumentSetValid(ctx, target, []interface{}{int64(0)}).Reason)
	assert.Equal(t, "too big", grow.IsArgumentSetValid(ctx, target, []interface{}{int64(6)}).Reason)
	assert.True(t, grow.IsArgumentSetValid(ctx, target, []interface{}{int64(2), "x"}).IsAllowed())

	by := grow.Parameters()[0]
	choices, err := by.Choices(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, choices)
	def, err := by.Default(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 1, def)

	res, err := grow.Execute(ctx, target, []interface{}{int64(2), "grown"})
	require.NoError(t, err)
	assert.Same(t, target, res)
	assert.Equal(t, 7, target.Count)
	assert.Equal(t, "grown", target.Name)

	target.Parts = []*part{{Label: "a"}, {Label: "b"}}
	list, _ := w.Action("listParts")
	res, err = list.Execute(ctx, target, nil)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.IsType(t, []interface{}{}, res)
}

func TestServices(t *testing.T) {
	ctx := context.Background()
	mm := buildWidgetModel(t)

	services := mm.Services()
	require.Len(t, services, 1)
	svc, ok := mm.SpecificationFor(services[0])
	require.True(t, ok)
	assert.True(t, svc.BeanSort().IsService())

	broken, _ := svc.Action("broken")
	assert.Nil(t, broken.ReturnType())
	_, err := broken.Execute(ctx, services[0], nil)
	assert.EqualError(t, err, "boom")

	mk, _ := svc.Action("make")
	res, err := mk.Execute(ctx, services[0], []interface{}{"fresh"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.(*widget).Name)
}

func TestBookmarkNamer(t *testing.T) {
	mm := buildWidgetModel(t)
	namer := mm.BookmarkNamer()

	name, lazy, ok := namer(&part{})
	assert.True(t, ok)
	assert.True(t, lazy)
	assert.Equal(t, "demo.Part", name)

	_, lazy, ok = namer(&widget{})
	assert.True(t, ok)
	assert.False(t, lazy)

	_, _, ok = namer("a string")
	assert.False(t, ok)
}

func TestUnknownTypes(t *testing.T) {
	type opaque struct{}
	m := New()
	o := m.Entity("demo.Holder", &widget{})
	o.Property("opaque", func(w *widget) opaque { return opaque{} })
	o.Property("any", func(w *widget) interface{} { return nil })
	mm, err := m.Build()
	require.NoError(t, err)

	spec, _ := mm.SpecificationByName("demo.Holder")
	p, _ := spec.Property("opaque")
	assert.Equal(t, metamodel.SortUnknown, p.ElementType().BeanSort())
	p, _ = spec.Property("any")
	assert.Equal(t, metamodel.SortAbstract, p.ElementType().BeanSort())
}

func TestRegistrationPanics(t *testing.T) {
	assert.Panics(t, func() {
		m := New()
		m.Entity("demo.A", &widget{})
		m.Entity("demo.A", &part{})
	}, "duplicate name")
	assert.Panics(t, func() {
		m := New()
		m.Entity("demo.A", &widget{})
		m.ViewModel("demo.B", widget{})
	}, "duplicate type")
	assert.Panics(t, func() {
		m := New()
		o := m.Entity("demo.A", &widget{})
		o.Property("x", func(w *widget) string { return "" })
		o.Property("x", func(w *widget) string { return "" })
	}, "duplicate member")
	assert.Panics(t, func() {
		New().Entity("demo.A", &widget{}).Action("x", func(w *widget, a, b int) {})
	}, "too many arguments")
	assert.Panics(t, func() {
		New().Entity("demo.A", &widget{}).Property("x", func(w *widget) []string { return nil })
	}, "slice property")
	assert.Panics(t, func() {
		New().ViewModel("demo.A", &widget{}).Version(func(w *widget) int { return 0 })
	}, "version on a view model")
	assert.Panics(t, func() {
		New().Service("demo.S", (*factory)(nil))
	}, "nil service")
}

func TestBuildRejectsWrongTarget(t *testing.T) {
	m := New()
	m.Entity("demo.A", &widget{}).Property("x", func(p *part) string { return p.Label })
	_, err := m.Build()
	assert.Error(t, err)
}
