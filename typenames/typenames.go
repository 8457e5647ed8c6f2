// Package typenames maps metamodel identifiers to GraphQL type and field
// names.
//
// Every type name is the escaped owner type name, followed by the escaped
// member and parameter ids and a suffix naming the kind of node. Distinct
// identifiers therefore never share a name, and every name matches
// [_A-Za-z][_0-9A-Za-z]*.
package typenames

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/valuesemantics"
)

// Suffix distinguishes the nodes generated for the same identifier.
type Suffix string

const (
	None            Suffix = ""
	Input           Suffix = "__gqlv_input"
	Meta            Suffix = "__gqlv_meta"
	Action          Suffix = "__gqlv_action"
	ActionParams    Suffix = "__gqlv_action_params"
	ActionParameter Suffix = "__gqlv_action_parameter"
	Property        Suffix = "__gqlv_property"
	Blob            Suffix = "__gqlv_blob"
	Clob            Suffix = "__gqlv_clob"
	Collection      Suffix = "__gqlv_collection"
)

// separator joins the owner, member and parameter parts.
const separator = "__"

var replacer = strings.NewReplacer(
	".", "_",
	"#", "__",
	"-", "_",
	" ", "_",
	"$", "_",
	":", "_",
	"(", "",
	")", "",
)

// Sanitize turns s into a legal GraphQL name. It keeps names readable and
// may map distinct strings to the same name, so it is only used for names
// that are unique within their parent type.
func Sanitize(s string) string {
	s = replacer.Replace(s)

	var b strings.Builder
	for _, r := range s {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()

	switch {
	case out == "":
		return "_"
	case out[0] >= '0' && out[0] <= '9':
		return "_" + out
	case strings.HasPrefix(out, "__"):
		// Names starting with "__" are reserved for introspection.
		return "gqlv" + out
	}
	return out
}

// escapes are the replacements of characters that Escape does not keep.
// Each is "_" and a digit, while a "." before a letter is "_" and that letter.
var escapes = map[rune]string{
	'_': "_0",
	'-': "_1",
	' ': "_2",
	'$': "_3",
	':': "_4",
	'.': "_5",
}

// Escape is the injective counterpart of Sanitize. Like Sanitize it turns
// "." before a letter into "_" and "#" into "__", and drops parentheses.
// Every other character outside [0-9A-Za-z], including "_" itself, becomes
// "_" followed by a digit, so "shop.Order" and "shop_Order" stay apart.
func Escape(s string) string {
	rs := []rune(s)

	var b strings.Builder
	for i, r := range rs {
		switch {
		case isASCIILetter(r) || isASCIIDigit(r):
			b.WriteRune(r)
		case r == '(' || r == ')':
		case r == '#':
			b.WriteString(separator)
		case r == '.' && i+1 < len(rs) && isASCIILetter(rs[i+1]):
			b.WriteByte('_')
		default:
			if code, ok := escapes[r]; ok {
				b.WriteString(code)
			} else {
				fmt.Fprintf(&b, "_7%x_", r)
			}
		}
	}
	out := b.String()

	switch {
	case out == "":
		return "_"
	case isASCIIDigit(rune(out[0])) || strings.HasPrefix(out, "__"):
		// "_6" is an empty escape.
		return "_6" + out
	}
	return out
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ForIdentifier is the name of the node of kind suffix generated for id.
func ForIdentifier(id metamodel.Identifier, suffix Suffix) string {
	name := Escape(id.LogicalTypeName)
	if id.MemberID != "" {
		name += separator + Escape(id.MemberID)
	}
	if id.ParameterID != "" {
		name += separator + Escape(id.ParameterID)
	}
	return name + string(suffix)
}

// ObjectTypeNameFor names the object type of a domain object or service.
func ObjectTypeNameFor(logicalTypeName string) string {
	return ForIdentifier(metamodel.TypeIdentifier(logicalTypeName), None)
}

// EnumTypeNameFor names the enum type of an enum value type.
func EnumTypeNameFor(logicalTypeName string) string {
	return ForIdentifier(metamodel.TypeIdentifier(logicalTypeName), None)
}

func InputTypeNameFor(logicalTypeName string) string {
	return ForIdentifier(metamodel.TypeIdentifier(logicalTypeName), Input)
}

func MetaTypeNameFor(logicalTypeName string) string {
	return ForIdentifier(metamodel.TypeIdentifier(logicalTypeName), Meta)
}

func ActionTypeNameFor(owner, actionID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, actionID), Action)
}

func ActionParamsTypeNameFor(owner, actionID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, actionID), ActionParams)
}

func ActionParamTypeNameFor(owner, actionID, paramID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, actionID).ParameterIdentifier(paramID), ActionParameter)
}

func PropertyTypeNameFor(owner, propertyID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, propertyID), Property)
}

// PropertyLobTypeNameFor names the type returned by the get field of a Blob
// or Clob property.
func PropertyLobTypeNameFor(owner, propertyID string, kind valuesemantics.Kind) string {
	suffix := Blob
	if kind == valuesemantics.Clob {
		suffix = Clob
	}
	return ForIdentifier(metamodel.MemberIdentifier(owner, propertyID), suffix)
}

func CollectionTypeNameFor(owner, collectionID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, collectionID), Collection)
}

// MutationFieldNameFor names the field of the mutation root that invokes an
// action or sets a property.
func MutationFieldNameFor(owner, memberID string) string {
	return ForIdentifier(metamodel.MemberIdentifier(owner, memberID), None)
}

// LookupFieldNameFor names the query root field that looks up instances of a
// domain type: the lower camel case of the unqualified type name, so
// "demo.OrderLine" is looked up by "orderLine".
func LookupFieldNameFor(logicalTypeName string) string {
	simple := logicalTypeName
	if i := strings.LastIndexByte(simple, '.'); i >= 0 && i < len(simple)-1 {
		simple = simple[i+1:]
	}
	return Sanitize(strcase.ToLowerCamel(Sanitize(simple)))
}

// QualifiedLookupFieldNameFor is the lookup field name used when two types
// share an unqualified name.
func QualifiedLookupFieldNameFor(logicalTypeName string) string {
	return Sanitize(strcase.ToLowerCamel(Sanitize(logicalTypeName)))
}

// FieldNameFor names the field exposing a member on its owner's type.
func FieldNameFor(memberID string) string {
	return Sanitize(memberID)
}

// ArgumentNameFor names the argument carrying an action parameter.
func ArgumentNameFor(paramID string) string {
	return Sanitize(paramID)
}
