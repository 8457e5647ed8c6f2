package schemabuilder

import (
	"context"
	"sync"

	"go.causeway.dev/gqlv/bookmark"
)

type requestContextKey struct{}

// RequestContext is the state shared by the field resolutions of one
// request: the current scenario name and the references saved by saveAs.
type RequestContext struct {
	mu       sync.Mutex
	values   map[string]interface{}
	scenario string
	refs     map[string]bookmark.Bookmark
}

// NewRequestContext returns an empty RequestContext.
func NewRequestContext() *RequestContext {
	return &RequestContext{
		values: make(map[string]interface{}),
		refs:   make(map[string]bookmark.Bookmark),
	}
}

// WithRequestContext attaches a fresh RequestContext to ctx.
func WithRequestContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestContextKey{}, NewRequestContext())
}

// RequestContextFrom returns the RequestContext attached to ctx, or nil.
func RequestContextFrom(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// Set stores an arbitrary value.
func (rc *RequestContext) Set(key string, value interface{}) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.values[key] = value
}

// Get returns a value stored by Set.
func (rc *RequestContext) Get(key string) (interface{}, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	v, ok := rc.values[key]
	return v, ok
}

// SetScenario records the scenario the request runs.
func (rc *RequestContext) SetScenario(name string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.scenario = name
}

// Scenario returns the scenario name, if any.
func (rc *RequestContext) Scenario() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.scenario
}

// SaveRef stores b under ref, replacing an earlier reference.
func (rc *RequestContext) SaveRef(ref string, b bookmark.Bookmark) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.refs[ref] = b
}

// Ref returns the bookmark saved under ref.
func (rc *RequestContext) Ref(ref string) (bookmark.Bookmark, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	b, ok := rc.refs[ref]
	return b, ok
}
