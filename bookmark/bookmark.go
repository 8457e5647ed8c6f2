// Package bookmark provides the opaque (logical type, identifier) reference
// used to name a domain object instance across the GraphQL boundary.
package bookmark

import (
	"context"
	"fmt"
	"strings"
)

// Bookmark identifies one domain object instance.
type Bookmark struct {
	LogicalTypeName string
	Identifier      string
}

// New returns a Bookmark.
func New(logicalTypeName, identifier string) Bookmark {
	return Bookmark{LogicalTypeName: logicalTypeName, Identifier: identifier}
}

// IsZero reports whether b is the zero Bookmark.
func (b Bookmark) IsZero() bool {
	return b.LogicalTypeName == "" && b.Identifier == ""
}

// String renders b as "type:id".
func (b Bookmark) String() string {
	return b.LogicalTypeName + ":" + b.Identifier
}

// Parse is the inverse of String. The identifier may itself contain colons.
func Parse(s string) (Bookmark, error) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return Bookmark{}, fmt.Errorf("malformed bookmark %q: expected type:id", s)
	}
	return Bookmark{LogicalTypeName: s[:i], Identifier: s[i+1:]}, nil
}

// Service maps pojos to bookmarks and back.
type Service interface {
	// BookmarkFor returns the bookmark of pojo. The second result is false
	// when pojo cannot be bookmarked (values, nil, unknown types).
	BookmarkFor(pojo interface{}) (Bookmark, bool)

	// Lookup resolves b to the live pojo. It returns a *jerrors.NotFoundError
	// when nothing is registered under b.
	Lookup(ctx context.Context, b Bookmark) (interface{}, error)
}
