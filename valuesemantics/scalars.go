package valuesemantics

import (
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"go.causeway.dev/gqlv/bookmark"
)

// Custom scalars. Built-in kinds use graphql.String, graphql.Boolean,
// graphql.Int, graphql.Float and graphql.DateTime.
var (
	LongScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:         "Long",
		Description:  "64-bit signed integer.",
		Serialize:    serializeLong,
		ParseValue:   parseLongValue,
		ParseLiteral: parseLongLiteral,
	})

	BigDecimalScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:         "BigDecimal",
		Description:  "Arbitrary precision decimal, in text form.",
		Serialize:    serializeDecimal,
		ParseValue:   parseDecimalValue,
		ParseLiteral: parseDecimalLiteral,
	})

	UUIDScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        "UUID",
		Description: "RFC 4122 universally unique identifier.",
		Serialize:   serializeUUID,
		ParseValue: func(v interface{}) interface{} {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return parseUUID(s)
		},
		ParseLiteral: func(v ast.Value) interface{} {
			lit, ok := v.(*ast.StringValue)
			if !ok {
				return nil
			}
			return parseUUID(lit.Value)
		},
	})

	LocalDateScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        "LocalDate",
		Description: "Calendar date, ISO-8601 (yyyy-mm-dd).",
		Serialize:   serializeLocalDate,
		ParseValue: func(v interface{}) interface{} {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return parseLocalDate(s)
		},
		ParseLiteral: func(v ast.Value) interface{} {
			lit, ok := v.(*ast.StringValue)
			if !ok {
				return nil
			}
			return parseLocalDate(lit.Value)
		},
	})

	TimestampScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Timestamp",
		Description: "Instant in time, RFC 3339.",
		Serialize:   serializeTimestamp,
		ParseValue: func(v interface{}) interface{} {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return parseTimestamp(s)
		},
		ParseLiteral: func(v ast.Value) interface{} {
			lit, ok := v.(*ast.StringValue)
			if !ok {
				return nil
			}
			return parseTimestamp(lit.Value)
		},
	})

	DurationScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Duration",
		Description: "Elapsed time, e.g. 1h30m.",
		Serialize:   serializeDuration,
		ParseValue: func(v interface{}) interface{} {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return parseDuration(s)
		},
		ParseLiteral: func(v ast.Value) interface{} {
			lit, ok := v.(*ast.StringValue)
			if !ok {
				return nil
			}
			return parseDuration(lit.Value)
		},
	})

	BookmarkScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        "Bookmark",
		Description: "Reference to a domain object, logicalTypeName:identifier.",
		Serialize:   serializeBookmark,
		ParseValue: func(v interface{}) interface{} {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return parseBookmark(s)
		},
		ParseLiteral: func(v ast.Value) interface{} {
			lit, ok := v.(*ast.StringValue)
			if !ok {
				return nil
			}
			return parseBookmark(lit.Value)
		},
	})
)

func serializeLong(v interface{}) interface{} {
	switch n := v.(type) {
	case int64:
		return n
	case *int64:
		if n == nil {
			return nil
		}
		return *n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	return nil
}

func parseLongValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return nil
		}
		return int64(n)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil
		}
		return i
	}
	return nil
}

func parseLongLiteral(v ast.Value) interface{} {
	switch lit := v.(type) {
	case *ast.IntValue:
		i, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			return nil
		}
		return i
	case *ast.StringValue:
		return parseLongValue(lit.Value)
	}
	return nil
}

func serializeDecimal(v interface{}) interface{} {
	switch d := v.(type) {
	case Decimal:
		return string(d)
	case *Decimal:
		if d == nil {
			return nil
		}
		return string(*d)
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	}
	return nil
}

func parseDecimal(s string) interface{} {
	if _, ok := new(big.Float).SetString(s); !ok {
		return nil
	}
	return Decimal(s)
}

func parseDecimalValue(v interface{}) interface{} {
	switch d := v.(type) {
	case string:
		return parseDecimal(d)
	case float64:
		return Decimal(strconv.FormatFloat(d, 'f', -1, 64))
	case int:
		return Decimal(strconv.Itoa(d))
	}
	return nil
}

func parseDecimalLiteral(v ast.Value) interface{} {
	switch lit := v.(type) {
	case *ast.StringValue:
		return parseDecimal(lit.Value)
	case *ast.FloatValue:
		return parseDecimal(lit.Value)
	case *ast.IntValue:
		return parseDecimal(lit.Value)
	}
	return nil
}

func serializeUUID(v interface{}) interface{} {
	switch u := v.(type) {
	case uuid.UUID:
		return u.String()
	case *uuid.UUID:
		if u == nil {
			return nil
		}
		return u.String()
	case string:
		return u
	}
	return nil
}

func parseUUID(s string) interface{} {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

func serializeLocalDate(v interface{}) interface{} {
	switch d := v.(type) {
	case Date:
		return d.String()
	case *Date:
		if d == nil {
			return nil
		}
		return d.String()
	}
	return nil
}

func parseLocalDate(s string) interface{} {
	t, err := time.Parse(localDateLayout, s)
	if err != nil {
		return nil
	}
	return Date{t}
}

func serializeTimestamp(v interface{}) interface{} {
	ts, ok := v.(*timestamp.Timestamp)
	if !ok || ts == nil {
		return nil
	}
	t, err := ptypes.Timestamp(ts)
	if err != nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTimestamp(s string) interface{} {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	ts, err := ptypes.TimestampProto(t)
	if err != nil {
		return nil
	}
	return ts
}

func serializeDuration(v interface{}) interface{} {
	d, ok := v.(*duration.Duration)
	if !ok || d == nil {
		return nil
	}
	td, err := ptypes.Duration(d)
	if err != nil {
		return nil
	}
	return td.String()
}

func parseDuration(s string) interface{} {
	td, err := time.ParseDuration(s)
	if err != nil {
		return nil
	}
	return ptypes.DurationProto(td)
}

func serializeBookmark(v interface{}) interface{} {
	switch b := v.(type) {
	case bookmark.Bookmark:
		return b.String()
	case *bookmark.Bookmark:
		if b == nil {
			return nil
		}
		return b.String()
	}
	return nil
}

func parseBookmark(s string) interface{} {
	b, err := bookmark.Parse(s)
	if err != nil {
		return nil
	}
	return b
}
