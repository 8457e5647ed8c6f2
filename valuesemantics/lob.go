package valuesemantics

import (
	"encoding/base64"

	"github.com/graphql-go/graphql"
)

// Shared object and input types for large objects returned by actions or
// accepted as arguments. Properties of a large object kind get their own
// per-property type from the schema builder.
var (
	BlobType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "gqlv_Blob",
		Description: "Binary large object.",
		Fields:      BlobFields(),
	})

	ClobType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "gqlv_Clob",
		Description: "Character large object.",
		Fields:      ClobFields(),
	})

	BlobInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "gqlv_Blob__gqlv_input",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"mimeType": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"bytes":    &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "base64 encoded content"},
		},
	})

	ClobInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "gqlv_Clob__gqlv_input",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"mimeType": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"chars":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
)

// BlobFields returns fresh field configs exposing a BlobValue source.
func BlobFields() graphql.Fields {
	return graphql.Fields{
		"name": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if b, ok := p.Source.(BlobValue); ok {
				return b.Name, nil
			}
			return nil, nil
		}},
		"mimeType": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if b, ok := p.Source.(BlobValue); ok {
				return b.MimeType, nil
			}
			return nil, nil
		}},
		"bytes": &graphql.Field{Type: graphql.String, Description: "base64 encoded content", Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if b, ok := p.Source.(BlobValue); ok {
				return base64.StdEncoding.EncodeToString(b.Bytes), nil
			}
			return nil, nil
		}},
	}
}

// ClobFields returns fresh field configs exposing a ClobValue source.
func ClobFields() graphql.Fields {
	return graphql.Fields{
		"name": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if c, ok := p.Source.(ClobValue); ok {
				return c.Name, nil
			}
			return nil, nil
		}},
		"mimeType": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if c, ok := p.Source.(ClobValue); ok {
				return c.MimeType, nil
			}
			return nil, nil
		}},
		"chars": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if c, ok := p.Source.(ClobValue); ok {
				return c.Chars, nil
			}
			return nil, nil
		}},
	}
}
