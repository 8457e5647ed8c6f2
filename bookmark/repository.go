package bookmark

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go.causeway.dev/gqlv/jerrors"
)

// ServiceIdentifier is the identifier under which singleton services are
// bookmarked.
const ServiceIdentifier = "1"

// TypeNamer reports the logical type name of a pojo, and whether pojos of
// that type are bookmarked lazily on first use (view models).
type TypeNamer func(pojo interface{}) (logicalTypeName string, lazy bool, ok bool)

// Repository is an in-memory Service. It is safe for concurrent use.
type Repository struct {
	mu     sync.RWMutex
	namer  TypeNamer
	byKey  map[Bookmark]interface{}
	byPojo map[interface{}]Bookmark
}

// NewRepository returns an empty Repository. namer may be nil, in which
// case only explicitly persisted pojos can be bookmarked.
func NewRepository(namer TypeNamer) *Repository {
	return &Repository{
		namer:  namer,
		byKey:  make(map[Bookmark]interface{}),
		byPojo: make(map[interface{}]Bookmark),
	}
}

// SetTypeNamer replaces the namer used for lazy bookmarking.
func (r *Repository) SetTypeNamer(namer TypeNamer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namer = namer
}

// Persist registers pojo under a fresh identifier.
func (r *Repository) Persist(logicalTypeName string, pojo interface{}) (Bookmark, error) {
	return r.PersistWithID(logicalTypeName, uuid.NewString(), pojo)
}

// PersistWithID registers pojo under the given identifier. pojo must be
// comparable (usually a pointer).
func (r *Repository) PersistWithID(logicalTypeName, id string, pojo interface{}) (Bookmark, error) {
	if pojo == nil {
		return Bookmark{}, fmt.Errorf("cannot persist nil as %s", logicalTypeName)
	}
	b := New(logicalTypeName, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[b]; ok && existing != pojo {
		return Bookmark{}, fmt.Errorf("bookmark %s already taken", b)
	}
	r.byKey[b] = pojo
	r.byPojo[pojo] = b
	return b, nil
}

// RegisterService bookmarks a singleton service.
func (r *Repository) RegisterService(logicalTypeName string, service interface{}) (Bookmark, error) {
	return r.PersistWithID(logicalTypeName, ServiceIdentifier, service)
}

// Remove forgets b. Later lookups of b fail with NotFound.
func (r *Repository) Remove(b Bookmark) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pojo, ok := r.byKey[b]; ok {
		delete(r.byPojo, pojo)
		delete(r.byKey, b)
	}
}

// Len returns the number of registered pojos.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// BookmarkFor implements Service.
func (r *Repository) BookmarkFor(pojo interface{}) (Bookmark, bool) {
	if pojo == nil {
		return Bookmark{}, false
	}

	r.mu.RLock()
	b, ok := r.byPojo[pojo]
	namer := r.namer
	r.mu.RUnlock()
	if ok {
		return b, true
	}

	if namer == nil {
		return Bookmark{}, false
	}
	name, lazy, ok := namer(pojo)
	if !ok || !lazy {
		return Bookmark{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have bookmarked pojo since the read above.
	if b, ok := r.byPojo[pojo]; ok {
		return b, true
	}
	b = New(name, uuid.NewString())
	r.byKey[b] = pojo
	r.byPojo[pojo] = b
	return b, true
}

// Lookup implements Service.
func (r *Repository) Lookup(_ context.Context, b Bookmark) (interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pojo, ok := r.byKey[b]
	if !ok {
		return nil, jerrors.NotFound("object %s", b)
	}
	return pojo, nil
}

var _ Service = (*Repository)(nil)
