package bookmark_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/jerrors"
)

type order struct{ n int }
type draft struct{}

func TestParseRoundTrip(t *testing.T) {
	b, err := bookmark.Parse("demo.Order:urn:123")
	require.NoError(t, err)
	assert.Equal(t, "demo.Order", b.LogicalTypeName)
	assert.Equal(t, "urn:123", b.Identifier)
	assert.Equal(t, "demo.Order:urn:123", b.String())

	for _, bad := range []string{"", ":1", "demo.Order:", "nocolon"} {
		_, err := bookmark.Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestRepositoryPersistAndLookup(t *testing.T) {
	repo := bookmark.NewRepository(nil)
	o := &order{n: 1}

	b, err := repo.PersistWithID("demo.Order", "123", o)
	require.NoError(t, err)
	assert.Equal(t, bookmark.New("demo.Order", "123"), b)

	got, err := repo.Lookup(context.Background(), b)
	require.NoError(t, err)
	assert.Same(t, o, got)

	again, ok := repo.BookmarkFor(o)
	require.True(t, ok)
	assert.Equal(t, b, again)

	_, err = repo.PersistWithID("demo.Order", "123", &order{n: 2})
	assert.Error(t, err, "identifier clash must be rejected")
}

func TestRepositoryLookupMissing(t *testing.T) {
	repo := bookmark.NewRepository(nil)
	_, err := repo.Lookup(context.Background(), bookmark.New("demo.Order", "404"))
	require.Error(t, err)
	assert.Equal(t, jerrors.CodeNotFound, jerrors.CodeOf(err))
}

func TestRepositoryLazyViewModels(t *testing.T) {
	repo := bookmark.NewRepository(func(pojo interface{}) (string, bool, bool) {
		switch pojo.(type) {
		case *draft:
			return "demo.Draft", true, true
		case *order:
			return "demo.Order", false, true
		}
		return "", false, false
	})

	d := &draft{}
	b, ok := repo.BookmarkFor(d)
	require.True(t, ok)
	assert.Equal(t, "demo.Draft", b.LogicalTypeName)
	assert.NotEmpty(t, b.Identifier)

	same, ok := repo.BookmarkFor(d)
	require.True(t, ok)
	assert.Equal(t, b, same)

	_, ok = repo.BookmarkFor(&order{})
	assert.False(t, ok, "entities are never bookmarked lazily")

	_, ok = repo.BookmarkFor(nil)
	assert.False(t, ok)
}

func TestRepositoryLazyBookmarkIsAssignedOnce(t *testing.T) {
	const callers = 8

	// Every caller reaches the namer before any of them stores a bookmark.
	var arrived sync.WaitGroup
	arrived.Add(callers)
	repo := bookmark.NewRepository(func(pojo interface{}) (string, bool, bool) {
		arrived.Done()
		arrived.Wait()
		return "demo.Draft", true, true
	})

	d := &draft{}
	got := make([]bookmark.Bookmark, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = repo.BookmarkFor(d)
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Equal(t, got[0], b)
	}
	assert.Equal(t, 1, repo.Len())
	pojo, err := repo.Lookup(context.Background(), got[0])
	require.NoError(t, err)
	assert.Same(t, d, pojo)
}

func TestRepositoryRemove(t *testing.T) {
	repo := bookmark.NewRepository(nil)
	o := &order{}
	b, err := repo.Persist("demo.Order", o)
	require.NoError(t, err)
	require.Equal(t, 1, repo.Len())

	repo.Remove(b)
	assert.Equal(t, 0, repo.Len())
	_, ok := repo.BookmarkFor(o)
	assert.False(t, ok)
}
