package specbuilder

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// paramFieldInfo contains the parameter information parsed from one field of
// an action's args struct.
type paramFieldInfo struct {
	// Skipped indicates that this field is not a parameter.
	Skipped bool

	// Name is the parameter id.
	Name string

	// Optional marks the parameter as not mandatory. Pointer to value types
	// are optional without the tag option.
	Optional bool

	// Description is taken from a `description=` tag option.
	Description string
}

// parseParamFieldInfo parses a struct field of an args struct. The name is
// taken from the graphql tag, then the json tag, then the lower camel field
// name. Supported options: optional, description=<text>.
func parseParamFieldInfo(field reflect.StructField) *paramFieldInfo {
	if field.PkgPath != "" {
		return &paramFieldInfo{Skipped: true}
	}

	tag := field.Tag.Get("graphql")
	if tag == "" {
		tag = field.Tag.Get("json")
	}
	tags := strings.Split(tag, ",")
	name := strings.TrimSpace(tags[0])
	if name == "-" {
		return &paramFieldInfo{Skipped: true}
	}
	if name == "" {
		name = makeParamName(field.Name)
	}

	info := &paramFieldInfo{Name: name}
	for _, opt := range tags[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "optional":
			info.Optional = true
		case strings.HasPrefix(opt, "description="):
			info.Description = strings.TrimPrefix(opt, "description=")
		}
	}
	return info
}

// makeParamName converts a field name "ProductID" into "productId".
func makeParamName(s string) string {
	return strcase.ToLowerCamel(s)
}

// Common types that we need to perform type assertions against.
var errType = reflect.TypeOf((*error)(nil)).Elem()
var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// hook is a user supplied func with an optional leading context.Context and
// an optional trailing error result.
type hook struct {
	fn         reflect.Value
	hasContext bool
	ins        []reflect.Type // excluding the context
	out        reflect.Type   // nil when the func returns nothing but an error
	hasError   bool
}

// newHook validates fn against the expected number of (non-context) inputs.
// It panics on a malformed func: registration mistakes are programming errors.
func newHook(what string, fn interface{}, nIn int, needsResult bool) *hook {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Errorf("%s: expected a func, got %T", what, fn))
	}
	typ := v.Type()

	h := &hook{fn: v}
	in := 0
	if typ.NumIn() > 0 && typ.In(0) == contextType {
		h.hasContext = true
		in = 1
	}
	for ; in < typ.NumIn(); in++ {
		h.ins = append(h.ins, typ.In(in))
	}
	if len(h.ins) != nIn {
		panic(fmt.Errorf("%s: expected %d arguments besides context.Context, got %d", what, nIn, len(h.ins)))
	}

	switch typ.NumOut() {
	case 0:
	case 1:
		if typ.Out(0) == errType {
			h.hasError = true
		} else {
			h.out = typ.Out(0)
		}
	case 2:
		if typ.Out(1) != errType {
			panic(fmt.Errorf("%s: second result must be error", what))
		}
		h.out = typ.Out(0)
		h.hasError = true
	default:
		panic(fmt.Errorf("%s: at most two results allowed", what))
	}
	if needsResult && h.out == nil {
		panic(fmt.Errorf("%s: func must return a value", what))
	}
	return h
}

// call invokes the hook. args are converted to the declared input types.
func (h *hook) call(ctx context.Context, args ...interface{}) (interface{}, error) {
	in := make([]reflect.Value, 0, len(h.ins)+1)
	if h.hasContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, typ := range h.ins {
		var arg interface{}
		if i < len(args) {
			arg = args[i]
		}
		v := reflect.New(typ).Elem()
		if err := assign(v, arg); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}

	out := h.fn.Call(in)

	if h.hasError {
		if errV := out[len(out)-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
	}
	if h.out == nil {
		return nil, nil
	}
	return unwrapValue(out[0]), nil
}

// unwrapValue returns the interface held by v, mapping nil pointers, maps,
// slices and interfaces to an untyped nil.
func unwrapValue(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// assign stores value into dest, converting between named and underlying
// types and allocating pointers as needed. A nil value leaves dest zero.
func assign(dest reflect.Value, value interface{}) error {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	typ := dest.Type()

	switch {
	case v.Type().AssignableTo(typ):
		dest.Set(v)
	case typ.Kind() == reflect.Ptr && v.Type().AssignableTo(typ.Elem()):
		p := reflect.New(typ.Elem())
		p.Elem().Set(v)
		dest.Set(p)
	case typ.Kind() == reflect.Ptr && v.Type().ConvertibleTo(typ.Elem()) && convertible(v.Type(), typ.Elem()):
		p := reflect.New(typ.Elem())
		p.Elem().Set(v.Convert(typ.Elem()))
		dest.Set(p)
	case v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Type().AssignableTo(typ):
		dest.Set(v.Elem())
	case v.Type().ConvertibleTo(typ) && convertible(v.Type(), typ):
		dest.Set(v.Convert(typ))
	default:
		return fmt.Errorf("cannot use %T as %s", value, typ)
	}
	return nil
}

// convertible restricts reflect conversions to types of the same class, so
// that an int64 may become an int but never a string.
func convertible(from, to reflect.Type) bool {
	return kindClass(from.Kind()) == kindClass(to.Kind())
}

func kindClass(k reflect.Kind) reflect.Kind {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.Int
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.Uint
	case reflect.Float32, reflect.Float64:
		return reflect.Float64
	default:
		return k
	}
}

// toSlice flattens a slice or array value into []interface{}.
func toSlice(value interface{}) ([]interface{}, error) {
	if value == nil {
		return nil, nil
	}
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a slice, got %T", value)
	}
	out := make([]interface{}, v.Len())
	for i := range out {
		out[i] = unwrapValue(v.Index(i))
	}
	return out, nil
}

// funcArity returns the number of inputs of fn, not counting a leading
// context.Context. It returns -1 when fn is not a func.
func funcArity(fn interface{}) int {
	typ := reflect.TypeOf(fn)
	if typ == nil || typ.Kind() != reflect.Func {
		return -1
	}
	n := typ.NumIn()
	if n > 0 && typ.In(0) == contextType {
		n--
	}
	return n
}

// typeKey normalizes the Go type used to register a type: structs are keyed
// by their pointer type since domain objects are always handled by pointer.
func typeKey(proto interface{}) reflect.Type {
	typ := reflect.TypeOf(proto)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Struct {
		return reflect.PtrTo(typ)
	}
	return typ
}
