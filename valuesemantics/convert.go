package valuesemantics

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"go.causeway.dev/gqlv/bookmark"
)

// ParseError reports an argument that cannot be converted to a value kind.
type ParseError struct {
	Kind Kind
	Raw  interface{}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %v (%T) as %s", e.Raw, e.Raw, e.Kind)
}

// OutputType returns the GraphQL type used to render values of kind k.
func OutputType(k Kind) graphql.Output {
	switch k {
	case String:
		return graphql.String
	case Boolean:
		return graphql.Boolean
	case Int:
		return graphql.Int
	case Long:
		return LongScalar
	case Float, Double:
		return graphql.Float
	case BigDecimal:
		return BigDecimalScalar
	case UUID:
		return UUIDScalar
	case Blob:
		return BlobType
	case Clob:
		return ClobType
	case LocalDate:
		return LocalDateScalar
	case DateTime:
		return graphql.DateTime
	case Timestamp:
		return TimestampScalar
	case Duration:
		return DurationScalar
	case Bookmark:
		return BookmarkScalar
	}
	return nil
}

// InputType returns the GraphQL type used to accept values of kind k as
// arguments.
func InputType(k Kind) graphql.Input {
	switch k {
	case Blob:
		return BlobInputType
	case Clob:
		return ClobInputType
	}
	out := OutputType(k)
	if out == nil {
		return nil
	}
	in, ok := out.(graphql.Input)
	if !ok {
		return nil
	}
	return in
}

// Parse converts an already coerced GraphQL argument into the canonical Go
// value of kind k. A nil raw value parses to nil.
func Parse(k Kind, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	fail := func() (interface{}, error) { return nil, &ParseError{Kind: k, Raw: raw} }

	switch k {
	case String:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case Boolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case Int:
		switch n := raw.(type) {
		case int:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return fail()
			}
			return int32(n), nil
		case int32:
			return n, nil
		}
	case Long:
		if n := parseLongValue(raw); n != nil {
			return n, nil
		}
	case Float:
		switch n := raw.(type) {
		case float64:
			return float32(n), nil
		case int:
			return float32(n), nil
		}
	case Double:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		}
	case BigDecimal:
		if d, ok := raw.(Decimal); ok {
			return d, nil
		}
		if d := parseDecimalValue(raw); d != nil {
			return d, nil
		}
	case UUID:
		switch u := raw.(type) {
		case uuid.UUID:
			return u, nil
		case string:
			if v := parseUUID(u); v != nil {
				return v, nil
			}
		}
	case Blob:
		if m, ok := raw.(map[string]interface{}); ok {
			return parseBlob(m)
		}
	case Clob:
		if m, ok := raw.(map[string]interface{}); ok {
			return ClobValue{
				Name:     stringField(m, "name"),
				MimeType: stringField(m, "mimeType"),
				Chars:    stringField(m, "chars"),
			}, nil
		}
	case LocalDate:
		switch d := raw.(type) {
		case Date:
			return d, nil
		case string:
			if v := parseLocalDate(d); v != nil {
				return v, nil
			}
		}
	case DateTime:
		switch t := raw.(type) {
		case time.Time:
			return t, nil
		case string:
			if v, err := time.Parse(time.RFC3339, t); err == nil {
				return v, nil
			}
		}
	case Timestamp:
		switch ts := raw.(type) {
		case *timestamp.Timestamp:
			return ts, nil
		case string:
			if v := parseTimestamp(ts); v != nil {
				return v, nil
			}
		}
	case Duration:
		switch d := raw.(type) {
		case *duration.Duration:
			return d, nil
		case string:
			if v := parseDuration(d); v != nil {
				return v, nil
			}
		}
	case Bookmark:
		switch b := raw.(type) {
		case bookmark.Bookmark:
			return b, nil
		case string:
			if v := parseBookmark(b); v != nil {
				return v, nil
			}
		}
	}
	return fail()
}

// Render converts a pojo value of kind k into what the GraphQL output type
// of k serializes. Pointers are dereferenced; nil renders as nil.
func Render(k Kind, pojo interface{}) (interface{}, error) {
	if pojo == nil {
		return nil, nil
	}
	v := reflect.ValueOf(pojo)
	if v.Kind() == reflect.Ptr && k != Timestamp && k != Duration {
		if v.IsNil() {
			return nil, nil
		}
		pojo = v.Elem().Interface()
	}

	switch k {
	case Int:
		switch n := pojo.(type) {
		case int32:
			return int(n), nil
		case int:
			return n, nil
		}
	case Long:
		if n := serializeLong(pojo); n != nil {
			return n, nil
		}
	case Float:
		switch n := pojo.(type) {
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case Blob:
		if b, ok := pojo.(BlobValue); ok {
			return b, nil
		}
	case Clob:
		if c, ok := pojo.(ClobValue); ok {
			return c, nil
		}
	default:
		if want := GoType(k); want != nil && reflect.TypeOf(pojo) == want {
			return pojo, nil
		}
		if k == String {
			if s, ok := pojo.(fmt.Stringer); ok {
				return s.String(), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot render %T as %s", pojo, k)
}

func parseBlob(m map[string]interface{}) (interface{}, error) {
	raw := stringField(m, "bytes")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &ParseError{Kind: Blob, Raw: raw}
	}
	return BlobValue{
		Name:     stringField(m, "name"),
		MimeType: stringField(m, "mimeType"),
		Bytes:    data,
	}, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
