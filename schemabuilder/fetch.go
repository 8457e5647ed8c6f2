package schemabuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/valuesemantics"
)

// BookmarkedPojo is the source passed to the fields of a domain object or
// service type. Fetchers re-resolve the pojo through the bookmark service so
// they always act on the live instance.
type BookmarkedPojo struct {
	Bookmark bookmark.Bookmark
	// pojo is used when the object could not be bookmarked.
	pojo interface{}
}

// Pojo resolves the live domain object.
func (bp *BookmarkedPojo) Pojo(ctx context.Context, svc bookmark.Service) (interface{}, error) {
	if bp.Bookmark.IsZero() {
		if bp.pojo == nil {
			return nil, jerrors.NotFound("object without bookmark")
		}
		return bp.pojo, nil
	}
	return svc.Lookup(ctx, bp.Bookmark)
}

// wrap turns a domain object into a BookmarkedPojo.
func (c *Context) wrap(pojo interface{}) *BookmarkedPojo {
	if b, ok := c.Bookmarks.BookmarkFor(pojo); ok {
		return &BookmarkedPojo{Bookmark: b, pojo: pojo}
	}
	return &BookmarkedPojo{pojo: pojo}
}

// fetcher instruments a data fetcher of the given kind.
func (c *Context) fetcher(kind string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		start := time.Now()
		res, err := fn(p)
		c.Metrics.ObserveFetch(kind, start, err)
		switch code := jerrors.CodeOf(err); code {
		case "":
		case jerrors.CodeHidden, jerrors.CodeDisabled, jerrors.CodeInvalid, jerrors.CodeNotFound:
			c.Metrics.RecordVeto(strings.ToLower(string(code)))
			c.Logger.Debug("vetoed", zap.String("fetcher", kind), zap.Error(err))
		default:
			c.Logger.Warn("data fetcher failed", zap.String("fetcher", kind), zap.Error(err))
		}
		return res, err
	}
}

// passThrough hands the parent's source to the nested type unchanged.
func passThrough(p graphql.ResolveParams) (interface{}, error) {
	return p.Source, nil
}

// target resolves the live pojo a member fetcher acts on.
func (c *Context) target(p graphql.ResolveParams) (interface{}, error) {
	src, ok := p.Source.(*BookmarkedPojo)
	if !ok {
		return nil, fmt.Errorf("unexpected source %T", p.Source)
	}
	return src.Pojo(p.Context, c.Bookmarks)
}

// feature is a member or an action parameter.
type feature interface {
	Identifier() metamodel.Identifier
	IsVisible(ctx context.Context, target interface{}) metamodel.Consent
	IsUsable(ctx context.Context, target interface{}) metamodel.Consent
}

func checkVisible(ctx context.Context, f feature, target interface{}) error {
	if !f.IsVisible(ctx, target).IsAllowed() {
		return jerrors.Hidden(f.Identifier().String())
	}
	return nil
}

func checkUsable(ctx context.Context, f feature, target interface{}) error {
	if c := f.IsUsable(ctx, target); !c.IsAllowed() {
		return jerrors.Disabled(f.Identifier().String(), c.Reason)
	}
	return nil
}

// vetoReason returns the reason of the first failing check, or nil.
func vetoReason(consents ...func() metamodel.Consent) interface{} {
	for _, consent := range consents {
		if c := consent(); !c.IsAllowed() {
			return c.Reason
		}
	}
	return nil
}

// reasonOf turns an InvalidError into the result of a validate field.
func reasonOf(err error) (interface{}, error) {
	var invalid *jerrors.InvalidError
	if errors.As(err, &invalid) {
		return invalid.Reason, nil
	}
	return nil, err
}

// isEnum reports whether spec is an enum value type.
func isEnum(spec metamodel.ObjectSpecification) bool {
	return spec.BeanSort() == metamodel.SortValue && len(spec.EnumValues()) > 0
}

// render converts a pojo value of spec into a GraphQL result.
func (c *Context) render(spec metamodel.ObjectSpecification, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	switch {
	case isEnum(spec):
		return value, nil
	case spec.BeanSort() == metamodel.SortValue:
		return valuesemantics.Render(spec.ValueType(), value)
	case spec.BeanSort().IsDomainObject(), spec.BeanSort().IsService():
		return c.wrap(value), nil
	}
	return nil, fmt.Errorf("cannot render %T as %s", value, spec.LogicalTypeName())
}

func (c *Context) renderAll(spec metamodel.ObjectSpecification, values []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(values))
	for i, v := range values {
		r, err := c.render(spec, v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// parseArg converts a coerced GraphQL argument into a pojo value of spec.
func (c *Context) parseArg(ctx context.Context, f metamodel.Identifier, spec metamodel.ObjectSpecification, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	switch {
	case isEnum(spec):
		return raw, nil
	case spec.BeanSort() == metamodel.SortValue:
		v, err := valuesemantics.Parse(spec.ValueType(), raw)
		if err != nil {
			return nil, jerrors.Invalid(f.String(), err.Error())
		}
		return v, nil
	case spec.BeanSort().IsDomainObject():
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, jerrors.Invalid(f.String(), fmt.Sprintf("expected an object reference, got %T", raw))
		}
		id, _ := m["id"].(string)
		ref, _ := m["ref"].(string)
		return c.lookup(ctx, spec, id, ref)
	}
	return nil, jerrors.Invalid(f.String(), "unsupported argument type "+spec.LogicalTypeName())
}

// lookup resolves a domain object of spec by identifier or by a reference
// saved earlier in the request.
func (c *Context) lookup(ctx context.Context, spec metamodel.ObjectSpecification, id, ref string) (interface{}, error) {
	var b bookmark.Bookmark
	switch {
	case ref != "":
		rc := RequestContextFrom(ctx)
		if rc == nil {
			return nil, jerrors.ErrNoRequestContext
		}
		saved, ok := rc.Ref(ref)
		if !ok {
			return nil, jerrors.NotFound("reference %q", ref)
		}
		if saved.LogicalTypeName != spec.LogicalTypeName() {
			return nil, jerrors.Invalid(spec.LogicalTypeName(),
				fmt.Sprintf("reference %q is a %s", ref, saved.LogicalTypeName))
		}
		b = saved
	case id != "":
		b = bookmark.New(spec.LogicalTypeName(), id)
	default:
		return nil, jerrors.Invalid(spec.LogicalTypeName(), "either id or ref is required")
	}
	return c.Bookmarks.Lookup(ctx, b)
}

// outputType returns the GraphQL type of values of spec. The second result
// is false when spec cannot be represented.
func (c *Context) outputType(spec metamodel.ObjectSpecification) (graphql.Output, bool) {
	if spec == nil {
		return nil, false
	}
	switch {
	case isEnum(spec):
		return c.enumType(spec), true
	case spec.BeanSort() == metamodel.SortValue:
		t := valuesemantics.OutputType(spec.ValueType())
		return t, t != nil
	case c.exposes(spec):
		node, err := c.domainObject(spec)
		if err != nil {
			c.skip(metamodel.TypeIdentifier(spec.LogicalTypeName()), err.Error())
			return nil, false
		}
		obj, err := node.Ref()
		return obj, err == nil
	case spec.BeanSort().IsService():
		if node, ok := c.services[spec.LogicalTypeName()]; ok {
			obj, err := node.Ref()
			return obj, err == nil
		}
	}
	return nil, false
}

// inputType returns the GraphQL type accepting values of spec as arguments.
func (c *Context) inputType(spec metamodel.ObjectSpecification) (graphql.Input, bool) {
	if spec == nil {
		return nil, false
	}
	switch {
	case isEnum(spec):
		return c.enumType(spec), true
	case spec.BeanSort() == metamodel.SortValue:
		t := valuesemantics.InputType(spec.ValueType())
		return t, t != nil
	case c.exposes(spec):
		if _, ok := c.outputType(spec); !ok {
			return nil, false
		}
		return c.objectInputType(spec), true
	}
	return nil, false
}

func listOf(t graphql.Output) graphql.Output {
	return graphql.NewList(t)
}
