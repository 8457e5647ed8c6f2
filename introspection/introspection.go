// Package introspection exports a built schema, as the JSON result of the
// introspection query or as SDL text.
package introspection

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
)

// Export runs Query against schema and returns the indented JSON result.
func Export(schema graphql.Schema) ([]byte, error) {
	res := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: Query,
		Context:       context.Background(),
	})
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("introspection: %s", res.Errors[0].Message)
	}
	return json.MarshalIndent(res.Data, "", "  ")
}

var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// PrintSDL renders the types of schema as SDL. Types, fields, arguments and
// enum values are sorted by name so the output is stable between builds.
func PrintSDL(schema graphql.Schema) string {
	var names []string
	for name, typ := range schema.TypeMap() {
		if strings.HasPrefix(name, "__") {
			continue
		}
		if _, ok := typ.(*graphql.Scalar); ok && builtinScalars[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var blocks []string
	if def := schemaDefinition(schema); def != "" {
		blocks = append(blocks, def)
	}
	for _, name := range names {
		if block := printType(schema.TypeMap()[name]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// schemaDefinition is empty when the root types carry their conventional
// names.
func schemaDefinition(schema graphql.Schema) string {
	q, m := schema.QueryType(), schema.MutationType()
	if (q == nil || q.Name() == "Query") && (m == nil || m.Name() == "Mutation") {
		return ""
	}
	var b strings.Builder
	b.WriteString("schema {\n")
	if q != nil {
		fmt.Fprintf(&b, "  query: %s\n", q.Name())
	}
	if m != nil {
		fmt.Fprintf(&b, "  mutation: %s\n", m.Name())
	}
	b.WriteString("}")
	return b.String()
}

func printType(typ graphql.Type) string {
	var b strings.Builder
	printDescription(&b, "", typ.Description())

	switch t := typ.(type) {
	case *graphql.Scalar:
		fmt.Fprintf(&b, "scalar %s", t.Name())
	case *graphql.Enum:
		fmt.Fprintf(&b, "enum %s {\n", t.Name())
		values := t.Values()
		sorted := make([]*graphql.EnumValueDefinition, len(values))
		copy(sorted, values)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
		for _, v := range sorted {
			printDescription(&b, "  ", v.Description)
			fmt.Fprintf(&b, "  %s%s\n", v.Name, deprecated(v.DeprecationReason))
		}
		b.WriteString("}")
	case *graphql.InputObject:
		fmt.Fprintf(&b, "input %s {\n", t.Name())
		fields := t.Fields()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := fields[name]
			printDescription(&b, "  ", f.Description())
			fmt.Fprintf(&b, "  %s: %s%s\n", name, f.Type.String(), defaultValue(f.DefaultValue))
		}
		b.WriteString("}")
	case *graphql.Object:
		fmt.Fprintf(&b, "type %s%s {\n", t.Name(), implements(t.Interfaces()))
		printFields(&b, t.Fields())
		b.WriteString("}")
	case *graphql.Interface:
		fmt.Fprintf(&b, "interface %s {\n", t.Name())
		printFields(&b, t.Fields())
		b.WriteString("}")
	case *graphql.Union:
		var members []string
		for _, o := range t.Types() {
			members = append(members, o.Name())
		}
		sort.Strings(members)
		fmt.Fprintf(&b, "union %s = %s", t.Name(), strings.Join(members, " | "))
	default:
		return ""
	}
	return b.String()
}

func printFields(b *strings.Builder, fields graphql.FieldDefinitionMap) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := fields[name]
		printDescription(b, "  ", f.Description)
		fmt.Fprintf(b, "  %s%s: %s%s\n", name, printArgs(f.Args), f.Type.String(), deprecated(f.DeprecationReason))
	}
}

func printArgs(args []*graphql.Argument) string {
	if len(args) == 0 {
		return ""
	}
	sorted := make([]*graphql.Argument, len(args))
	copy(sorted, args)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	parts := make([]string, 0, len(sorted))
	for _, a := range sorted {
		parts = append(parts, fmt.Sprintf("%s: %s%s", a.Name(), a.Type.String(), defaultValue(a.DefaultValue)))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func implements(interfaces []*graphql.Interface) string {
	if len(interfaces) == 0 {
		return ""
	}
	names := make([]string, 0, len(interfaces))
	for _, i := range interfaces {
		names = append(names, i.Name())
	}
	sort.Strings(names)
	return " implements " + strings.Join(names, " & ")
}

func printDescription(b *strings.Builder, indent, desc string) {
	if desc == "" {
		return
	}
	if !strings.Contains(desc, "\n") {
		fmt.Fprintf(b, "%s%q\n", indent, desc)
		return
	}
	fmt.Fprintf(b, "%s\"\"\"\n", indent)
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(b, "%s%s\n", indent, line)
	}
	fmt.Fprintf(b, "%s\"\"\"\n", indent)
}

func deprecated(reason string) string {
	if reason == "" {
		return ""
	}
	return fmt.Sprintf(" @deprecated(reason: %q)", reason)
}

func defaultValue(v interface{}) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return " = " + string(raw)
}
