// Package schemabuilder generates a GraphQL schema from a metamodel.
//
// Every exposed metamodel element (domain object type, service, member,
// action parameter) becomes a node. Nodes are built in two passes: the
// first creates every object type and field definition, the second
// registers the data fetchers of those fields by their coordinates.
// Fetchers run every interaction through the metamodel (visibility,
// usability, validity) before touching a domain object.
package schemabuilder

import (
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/config"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/metrics"
)

// Context carries everything a schema build needs. A Context builds one
// schema; it is not safe for concurrent use.
type Context struct {
	Config    *config.Config
	Specs     metamodel.SpecificationLoader
	Bookmarks bookmark.Service
	Types     *TypeRegistry
	Code      *CodeRegistry
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	nodes        []*ElementCustom
	objects      map[string]*domainObjectNode
	services     map[string]*domainServiceNode
	scenarioStep *ElementCustom
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMetrics sets the collectors fetchers and the build report to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) {
		c.Metrics = m
	}
}

// NewContext returns a build context. A nil cfg means config.Default().
func NewContext(cfg *config.Config, specs metamodel.SpecificationLoader, bookmarks bookmark.Service, opts ...Option) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Context{
		Config:    cfg,
		Specs:     specs,
		Bookmarks: bookmarks,
		Types:     NewTypeRegistry(),
		Code:      NewCodeRegistry(),
		Logger:    zap.NewNop(),
		objects:   make(map[string]*domainObjectNode),
		services:  make(map[string]*domainServiceNode),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// exposes reports whether instances of spec are exposed as domain objects.
func (c *Context) exposes(spec metamodel.ObjectSpecification) bool {
	switch spec.BeanSort() {
	case metamodel.SortViewModel:
		return true
	case metamodel.SortEntity:
		return c.Config.API.Scope != config.ScopeViewModels
	default:
		return false
	}
}

// skip logs a metamodel element left out of the schema.
func (c *Context) skip(what metamodel.Identifier, reason string) {
	c.Logger.Warn("not exposed",
		zap.String("type", what.LogicalTypeName),
		zap.String("member", what.MemberID),
		zap.String("reason", reason))
}
