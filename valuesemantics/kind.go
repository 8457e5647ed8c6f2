// Package valuesemantics converts built-in value types between their domain
// (pojo) representation and their GraphQL representation.
//
// Every value type is identified by a Kind. For each Kind the package knows
// the Go type used by domain objects, the GraphQL output and input types, and
// how to parse an argument and render a result.
package valuesemantics

import (
	"reflect"
	"time"

	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"

	"go.causeway.dev/gqlv/bookmark"
)

// Kind enumerates the supported value types.
type Kind int

const (
	Unknown Kind = iota
	String
	Boolean
	Int
	Long
	Float
	Double
	BigDecimal
	UUID
	Blob
	Clob
	LocalDate
	DateTime
	Timestamp
	Duration
	Bookmark
)

var kindNames = map[Kind]string{
	Unknown:    "Unknown",
	String:     "String",
	Boolean:    "Boolean",
	Int:        "Int",
	Long:       "Long",
	Float:      "Float",
	Double:     "Double",
	BigDecimal: "BigDecimal",
	UUID:       "UUID",
	Blob:       "Blob",
	Clob:       "Clob",
	LocalDate:  "LocalDate",
	DateTime:   "DateTime",
	Timestamp:  "Timestamp",
	Duration:   "Duration",
	Bookmark:   "Bookmark",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// IsLob reports whether k is a large object kind. Large objects are exposed
// as objects whose parts are fetched separately.
func (k Kind) IsLob() bool {
	return k == Blob || k == Clob
}

// Decimal is an arbitrary precision decimal kept in its canonical text form.
type Decimal string

// Date is a calendar date without time zone.
type Date struct {
	time.Time
}

// NewDate returns the date y-m-d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String renders the date as ISO-8601.
func (d Date) String() string {
	return d.Format(localDateLayout)
}

const localDateLayout = "2006-01-02"

// BlobValue is a named binary large object.
type BlobValue struct {
	Name     string
	MimeType string
	Bytes    []byte
}

// ClobValue is a named character large object.
type ClobValue struct {
	Name     string
	MimeType string
	Chars    string
}

var goTypes = map[reflect.Type]Kind{
	reflect.TypeOf(""):                    String,
	reflect.TypeOf(false):                 Boolean,
	reflect.TypeOf(int32(0)):              Int,
	reflect.TypeOf(int(0)):                Long,
	reflect.TypeOf(int64(0)):              Long,
	reflect.TypeOf(float32(0)):            Float,
	reflect.TypeOf(float64(0)):            Double,
	reflect.TypeOf(Decimal("")):           BigDecimal,
	reflect.TypeOf(uuid.UUID{}):           UUID,
	reflect.TypeOf(BlobValue{}):           Blob,
	reflect.TypeOf(ClobValue{}):           Clob,
	reflect.TypeOf(Date{}):                LocalDate,
	reflect.TypeOf(time.Time{}):           DateTime,
	reflect.TypeOf(&timestamp.Timestamp{}): Timestamp,
	reflect.TypeOf(&duration.Duration{}):   Duration,
	reflect.TypeOf(bookmark.Bookmark{}):   Bookmark,
}

// KindOf returns the Kind used for values of Go type t. Pointers to value
// types (other than the protobuf well-known types, which are always
// pointers) map to the pointee's kind.
func KindOf(t reflect.Type) (Kind, bool) {
	if t == nil {
		return Unknown, false
	}
	if k, ok := goTypes[t]; ok {
		return k, true
	}
	if t.Kind() == reflect.Ptr {
		if k, ok := goTypes[t.Elem()]; ok {
			return k, true
		}
	}
	return Unknown, false
}

// GoType returns the canonical Go type of values of kind k.
func GoType(k Kind) reflect.Type {
	for t, kk := range goTypes {
		if kk != k {
			continue
		}
		// int and int64 both map to Long; int64 is canonical.
		if k == Long && t.Kind() != reflect.Int64 {
			continue
		}
		return t
	}
	return nil
}
