package schemabuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/config"
	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/metamodel/specbuilder"
	"go.causeway.dev/gqlv/metrics"
	"go.causeway.dev/gqlv/valuesemantics"
)

type genre string

const (
	fiction    genre = "fiction"
	nonFiction genre = "non-fiction"
)

type book struct {
	Title  string
	Pages  int32
	Genre  genre
	Author *author
	Locked bool
	Cover  valuesemantics.BlobValue
	Rev    int64
}

type author struct {
	Name  string
	Books []*book
}

type shelf struct {
	Label string
	Books []*book
}

type library struct {
	repo  *bookmark.Repository
	books []*book
}

type fixture struct {
	mm          *specbuilder.Metamodel
	repo        *bookmark.Repository
	lib         *library
	book        *book
	author      *author
	secretReads int
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{repo: bookmark.NewRepository(nil)}
	f.author = &author{Name: "Le Guin"}
	f.book = &book{
		Title:  "Earthsea",
		Pages:  120,
		Genre:  fiction,
		Author: f.author,
		Cover:  valuesemantics.BlobValue{Name: "cover.png", MimeType: "image/png", Bytes: []byte("png")},
		Rev:    3,
	}
	f.author.Books = []*book{f.book}
	f.lib = &library{repo: f.repo, books: []*book{f.book}}

	m := specbuilder.New()
	m.Enum("lib.Genre", fiction, map[string]interface{}{"FICTION": fiction, "NON_FICTION": nonFiction})

	b := m.Entity("lib.Book", &book{})
	b.Title(func(b *book) string { return b.Title })
	b.Version(func(b *book) int64 { return b.Rev })
	b.Property("title", func(b *book) string { return b.Title }).
		Setter(func(b *book, title string) { b.Title = title })
	b.Property("pages", func(b *book) int32 { return b.Pages }).
		Setter(func(b *book, pages int32) { b.Pages = pages }).
		Validate(func(b *book, pages int32) string {
			if pages <= 0 {
				return "must be positive"
			}
			return ""
		}).
		Disabled(func(b *book) string {
			if b.Locked {
				return "locked"
			}
			return ""
		})
	b.Property("genre", func(b *book) genre { return b.Genre }).
		Setter(func(b *book, g genre) { b.Genre = g })
	b.Property("author", func(b *book) *author { return b.Author })
	b.Property("secret", func(b *book) string {
		f.secretReads++
		return "plot twist"
	}).Hidden(func(b *book) bool { return true })
	b.Property("cover", func(b *book) valuesemantics.BlobValue { return b.Cover })
	b.Action("excerpt", func(b *book, args struct{ Length int32 }) string {
		if int(args.Length) > len(b.Title) {
			return b.Title
		}
		return b.Title[:args.Length]
	}).
		Semantics(metamodel.Safe).
		Param("length").
		Choices(func(b *book) []int32 { return []int32{3, 5} }).
		Default(func(b *book) int32 { return 3 }).
		Validate(func(b *book, n int32) string {
			if n > 50 {
				return "too long"
			}
			return ""
		})
	b.Action("lock", func(b *book) { b.Locked = true }).
		Disabled(func(b *book) string {
			if b.Locked {
				return "already locked"
			}
			return ""
		})
	b.Action("retitle", func(b *book, args struct{ Title string }) *book {
		b.Title = args.Title
		return b
	})

	a := m.Entity("lib.Author", &author{})
	a.Property("name", func(a *author) string { return a.Name })
	a.Collection("books", func(a *author) []*book { return a.Books })

	s := m.ViewModel("lib.Shelf", &shelf{})
	s.Property("label", func(s *shelf) string { return s.Label })
	s.Collection("books", func(s *shelf) []*book { return s.Books })

	l := m.Service("lib.Library", f.lib)
	l.Action("findBook", func(l *library, args struct{ Title string }) *book {
		for _, b := range l.books {
			if b.Title == args.Title {
				return b
			}
		}
		return nil
	}).Semantics(metamodel.Safe)
	l.Action("allBooks", func(l *library) []*book { return l.books }).Semantics(metamodel.Safe)
	l.Action("shelf", func(l *library) *shelf {
		return &shelf{Label: "all", Books: l.books}
	}).Semantics(metamodel.Safe)
	l.Action("addBook", func(l *library, args struct {
		Title  string
		Pages  int32
		Author *author `graphql:"author"`
	}) (*book, error) {
		nb := &book{Title: args.Title, Pages: args.Pages, Author: args.Author, Genre: fiction}
		if _, err := l.repo.Persist("lib.Book", nb); err != nil {
			return nil, err
		}
		l.books = append(l.books, nb)
		return nb, nil
	})

	mm, err := m.Build()
	require.NoError(t, err)
	f.mm = mm
	f.repo.SetTypeNamer(mm.BookmarkNamer())
	require.NoError(t, mm.RegisterServices(f.repo))
	_, err = f.repo.PersistWithID("lib.Book", "1", f.book)
	require.NoError(t, err)
	_, err = f.repo.PersistWithID("lib.Author", "a1", f.author)
	require.NoError(t, err)
	return f
}

func (f *fixture) schema(t *testing.T, configure func(*config.Config), opts ...Option) graphql.Schema {
	cfg := config.Default()
	if configure != nil {
		configure(cfg)
	}
	schema, err := Build(NewContext(cfg, f.mm, f.repo, opts...))
	require.NoError(t, err)
	return schema
}

func run(schema graphql.Schema, query string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       WithRequestContext(context.Background()),
	})
}

func fieldNames(t *testing.T, schema graphql.Schema, typeName string) []string {
	obj, ok := schema.Type(typeName).(*graphql.Object)
	require.True(t, ok, "no object type %s", typeName)
	var names []string
	for name := range obj.Fields() {
		names = append(names, name)
	}
	return names
}

func errorCodes(res *graphql.Result) []interface{} {
	var codes []interface{}
	for _, e := range res.Errors {
		codes = append(codes, e.Extensions["code"])
	}
	return codes
}

func TestBuildExposesMetamodel(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	assert.ElementsMatch(t, []string{"_gqlv_meta", "title", "pages", "genre", "author", "secret", "cover", "excerpt", "lock", "retitle"},
		fieldNames(t, schema, "lib_Book"))
	assert.ElementsMatch(t, []string{"hidden", "disabled", "get", "validate", "datatype"},
		fieldNames(t, schema, "lib_Book__pages__gqlv_property"))
	assert.ElementsMatch(t, []string{"id", "logicalTypeName", "title", "version"},
		fieldNames(t, schema, "lib_Book__gqlv_meta"))
	assert.ElementsMatch(t, []string{"id", "logicalTypeName", "title"},
		fieldNames(t, schema, "lib_Shelf__gqlv_meta"), "view models have no version")
	assert.ElementsMatch(t, []string{"hidden", "disabled", "validate", "invoke", "params"},
		fieldNames(t, schema, "lib_Book__excerpt__gqlv_action"))
	assert.ElementsMatch(t, []string{"hidden", "disabled", "validate"},
		fieldNames(t, schema, "lib_Book__lock__gqlv_action"), "non-safe actions are invoked through the mutation root")
	assert.ElementsMatch(t, []string{"hidden", "disabled", "choices", "default", "validate"},
		fieldNames(t, schema, "lib_Book__excerpt__length__gqlv_action_parameter"))
	assert.ElementsMatch(t, []string{"name", "mimeType", "bytes"},
		fieldNames(t, schema, "lib_Book__cover__gqlv_blob"))
	assert.ElementsMatch(t, []string{"findBook", "allBooks", "shelf", "addBook"},
		fieldNames(t, schema, "lib_Library"))
	assert.ElementsMatch(t, []string{"lib_Library", "book", "author", "shelf"},
		fieldNames(t, schema, "Query"))
	assert.ElementsMatch(t, []string{"lib_Library__addBook", "lib_Book__lock", "lib_Book__retitle", "lib_Book__title", "lib_Book__pages", "lib_Book__genre"},
		fieldNames(t, schema, "Mutation"))

	_, ok := schema.Type("lib_Book__gqlv_input").(*graphql.InputObject)
	assert.True(t, ok)
	_, ok = schema.Type("lib_Genre").(*graphql.Enum)
	assert.True(t, ok)
}

func TestCyclicTypesShareOneType(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	bookType := schema.Type("lib_Book")
	authorType := schema.Type("lib_Author")
	require.NotNil(t, bookType)
	require.NotNil(t, authorType)

	authorGet := schema.Type("lib_Book__author__gqlv_property").(*graphql.Object).Fields()["get"].Type
	assert.Same(t, authorType, authorGet)

	booksGet := schema.Type("lib_Author__books__gqlv_collection").(*graphql.Object).Fields()["get"].Type
	list, ok := booksGet.(*graphql.List)
	require.True(t, ok)
	assert.Same(t, bookType, list.OfType)

	again := f.schema(t, nil)
	for name := range schema.TypeMap() {
		assert.NotNil(t, again.Type(name), name)
	}
	assert.Equal(t, len(schema.TypeMap()), len(again.TypeMap()))
}

func TestQueryObjectByID(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.Meta.FieldName = "meta" })

	res := run(schema, `{
		book(id: "1") {
			meta { id logicalTypeName version title }
			title { get }
			pages { get disabled }
			genre { get }
			author { get { name { get } books { get { title { get } } } } }
			excerpt { invoke(length: 4) }
		}
	}`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"meta": map[string]interface{}{
				"id":              "1",
				"logicalTypeName": "lib.Book",
				"version":         "3",
				"title":           "Earthsea",
			},
			"title": map[string]interface{}{"get": "Earthsea"},
			"pages": map[string]interface{}{"get": 120, "disabled": nil},
			"genre": map[string]interface{}{"get": "FICTION"},
			"author": map[string]interface{}{
				"get": map[string]interface{}{
					"name": map[string]interface{}{"get": "Le Guin"},
					"books": map[string]interface{}{
						"get": []interface{}{
							map[string]interface{}{"title": map[string]interface{}{"get": "Earthsea"}},
						},
					},
				},
			},
			"excerpt": map[string]interface{}{"invoke": "Eart"},
		},
	}, res.Data)
	assert.Equal(t, "Earthsea", f.book.Title, "queries have no side effects")
}

func TestLookupOfUnknownObject(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `{ book(id: "404") { title { get } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []interface{}{"NOT_FOUND"}, errorCodes(res))
	assert.Equal(t, map[string]interface{}{"book": nil}, res.Data)

	res = run(schema, `{ book { title { get } } }`)
	assert.Equal(t, []interface{}{"INVALID"}, errorCodes(res))
}

func TestHiddenPropertyIsNeverRead(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `{ book(id: "1") { secret { hidden get } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []interface{}{"HIDDEN"}, errorCodes(res))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"secret": map[string]interface{}{"hidden": true, "get": nil},
		},
	}, res.Data)
	assert.Zero(t, f.secretReads)

	res = run(schema, `{ book(id: "1") { secret { disabled } } }`)
	assert.Equal(t, []interface{}{"HIDDEN"}, errorCodes(res))
	assert.Zero(t, f.secretReads)
}

func TestInvalidValueIsNotSet(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `mutation { lib_Book__pages(_gqlv_target: {id: "1"}, value: 0) { pages { get } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "INVALID", res.Errors[0].Extensions["code"])
	assert.Equal(t, "must be positive", res.Errors[0].Extensions["reason"])
	assert.Equal(t, int32(120), f.book.Pages)

	res = run(schema, `mutation { lib_Book__pages(_gqlv_target: {id: "1"}, value: 300) { pages { get } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"lib_Book__pages": map[string]interface{}{"pages": map[string]interface{}{"get": 300}},
	}, res.Data)
	assert.Equal(t, int32(300), f.book.Pages)

	res = run(schema, `{ book(id: "1") { pages { validate(value: -1) } title { validate } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"pages": map[string]interface{}{"validate": "must be positive"},
			"title": map[string]interface{}{"validate": "'title' is mandatory"},
		},
	}, res.Data)
}

func TestDisabledMembers(t *testing.T) {
	f := newFixture(t)
	f.book.Locked = true
	schema := f.schema(t, nil)

	res := run(schema, `{ book(id: "1") { pages { disabled } lock { disabled } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"pages": map[string]interface{}{"disabled": "locked"},
			"lock":  map[string]interface{}{"disabled": "already locked"},
		},
	}, res.Data)

	res = run(schema, `mutation { lib_Book__lock(_gqlv_target: {id: "1"}) { title { get } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "DISABLED", res.Errors[0].Extensions["code"])
	assert.Equal(t, "already locked", res.Errors[0].Extensions["reason"])

	res = run(schema, `mutation { lib_Book__pages(_gqlv_target: {id: "1"}, value: 10) { title { get } } }`)
	assert.Equal(t, []interface{}{"DISABLED"}, errorCodes(res))
	assert.Equal(t, int32(120), f.book.Pages)
}

func TestActionParameters(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `{
		book(id: "1") {
			excerpt {
				validate(length: 99)
				params { length { choices default validate(value: 60) } }
			}
		}
	}`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"excerpt": map[string]interface{}{
				"validate": "too long",
				"params": map[string]interface{}{
					"length": map[string]interface{}{
						"choices":  []interface{}{3, 5},
						"default":  3,
						"validate": "too long",
					},
				},
			},
		},
	}, res.Data)

	res = run(schema, `{ book(id: "1") { excerpt { invoke(length: 99) } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "INVALID", res.Errors[0].Extensions["code"])
	assert.Equal(t, "too long", res.Errors[0].Extensions["reason"])
}

func TestServiceActions(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `{
		lib_Library {
			findBook { invoke(title: "Earthsea") { _gqlv_meta { id } } }
			allBooks { invoke { title { get } } }
			shelf { invoke { label { get } _gqlv_meta { logicalTypeName } } }
		}
	}`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"lib_Library": map[string]interface{}{
			"findBook": map[string]interface{}{
				"invoke": map[string]interface{}{"_gqlv_meta": map[string]interface{}{"id": "1"}},
			},
			"allBooks": map[string]interface{}{
				"invoke": []interface{}{map[string]interface{}{"title": map[string]interface{}{"get": "Earthsea"}}},
			},
			"shelf": map[string]interface{}{
				"invoke": map[string]interface{}{
					"label":      map[string]interface{}{"get": "all"},
					"_gqlv_meta": map[string]interface{}{"logicalTypeName": "lib.Shelf"},
				},
			},
		},
	}, res.Data)

	res = run(schema, `mutation {
		lib_Library__addBook(title: "Tehanu", pages: 250, author: {id: "a1"}) {
			title { get }
			author { get { name { get } } }
		}
	}`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"lib_Library__addBook": map[string]interface{}{
			"title":  map[string]interface{}{"get": "Tehanu"},
			"author": map[string]interface{}{"get": map[string]interface{}{"name": map[string]interface{}{"get": "Le Guin"}}},
		},
	}, res.Data)
	require.Len(t, f.lib.books, 2)
	assert.Same(t, f.author, f.lib.books[1].Author)
}

func TestVoidActionReturnsTarget(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `mutation { lib_Book__lock(_gqlv_target: {id: "1"}) { _gqlv_meta { id } lock { disabled } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"lib_Book__lock": map[string]interface{}{
			"_gqlv_meta": map[string]interface{}{"id": "1"},
			"lock":       map[string]interface{}{"disabled": "already locked"},
		},
	}, res.Data)
	assert.True(t, f.book.Locked)
}

func TestBlobPartsAreFetchedSeparately(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := run(schema, `{ book(id: "1") { cover { get { name mimeType bytes } } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"book": map[string]interface{}{
			"cover": map[string]interface{}{
				"get": map[string]interface{}{"name": "cover.png", "mimeType": "image/png", "bytes": "cG5n"},
			},
		},
	}, res.Data)
}

func TestInlineMutationsVariant(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.API.Variant = config.QueryWithMutationsNonSpecCompliant })

	assert.Nil(t, schema.MutationType())
	assert.Contains(t, fieldNames(t, schema, "lib_Book__pages__gqlv_property"), "set")
	assert.Contains(t, fieldNames(t, schema, "lib_Book__lock__gqlv_action"), "invokeNonSafe")
	assert.NotContains(t, fieldNames(t, schema, "lib_Book__author__gqlv_property"), "set")

	res := run(schema, `{ book(id: "1") { pages { set(value: -5) { title { get } } } } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "must be positive", res.Errors[0].Extensions["reason"])
	assert.Equal(t, int32(120), f.book.Pages)

	res = run(schema, `{ book(id: "1") { genre { set(value: NON_FICTION) { genre { get } } } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, nonFiction, f.book.Genre)
}

func TestQueryOnlyVariant(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.API.Variant = config.QueryOnly })

	assert.Nil(t, schema.MutationType())
	assert.NotContains(t, fieldNames(t, schema, "lib_Book__pages__gqlv_property"), "set")
	assert.NotContains(t, fieldNames(t, schema, "lib_Book__lock__gqlv_action"), "invokeNonSafe")
	assert.NotContains(t, fieldNames(t, schema, "lib_Book__lock__gqlv_action"), "invoke")
}

func TestViewModelScope(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.API.Scope = config.ScopeViewModels })

	assert.Nil(t, schema.Type("lib_Book"))
	assert.Nil(t, schema.Type("lib_Author"))
	assert.ElementsMatch(t, []string{"_gqlv_meta", "label"}, fieldNames(t, schema, "lib_Shelf"),
		"collections of entities are not exposed")
	assert.ElementsMatch(t, []string{"lib_Library", "shelf"}, fieldNames(t, schema, "Query"))

	library := fieldNames(t, schema, "lib_Library")
	assert.Contains(t, library, "shelf")
	assert.Contains(t, library, "findBook")
	assert.NotContains(t, library, "addBook", "entity parameters cannot be passed")
	assert.NotContains(t, fieldNames(t, schema, "lib_Library__findBook__gqlv_action"), "invoke")
}

func TestLookupsDisabled(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.Lookup.Enabled = false })
	assert.ElementsMatch(t, []string{"lib_Library"}, fieldNames(t, schema, "Query"))
}

func TestScenarioSavesReference(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, func(cfg *config.Config) { cfg.Scenario.Enabled = true })

	ctx := WithRequestContext(context.Background())
	res := graphql.Do(graphql.Params{
		Schema: schema,
		RequestString: `{
			Scenario(name: "Checkout") {
				Name
				Given {
					book(id: "1") {
						_gqlv_meta {
							saveAs(ref: "b") {
								book(ref: "b") { title { get } }
							}
						}
					}
				}
			}
		}`,
		Context: ctx,
	})
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"Scenario": map[string]interface{}{
			"Name": "Checkout",
			"Given": map[string]interface{}{
				"book": map[string]interface{}{
					"_gqlv_meta": map[string]interface{}{
						"saveAs": map[string]interface{}{
							"book": map[string]interface{}{"title": map[string]interface{}{"get": "Earthsea"}},
						},
					},
				},
			},
		},
	}, res.Data)

	rc := RequestContextFrom(ctx)
	require.NotNil(t, rc)
	assert.Equal(t, "Checkout", rc.Scenario())
	saved, ok := rc.Ref("b")
	require.True(t, ok)
	assert.Equal(t, bookmark.New("lib.Book", "1"), saved)

	pojo, err := f.repo.Lookup(ctx, saved)
	require.NoError(t, err)
	assert.Same(t, f.book, pojo)
}

func TestReferenceRequiresRequestContext(t *testing.T) {
	f := newFixture(t)
	schema := f.schema(t, nil)

	res := graphql.Do(graphql.Params{Schema: schema, RequestString: `{ book(ref: "b") { title { get } } }`})
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.Contains(res.Errors[0].Message, jerrors.ErrNoRequestContext.Error()), res.Errors[0].Message)

	res = run(schema, `{ author(ref: "missing") { name { get } } }`)
	assert.Equal(t, []interface{}{"NOT_FOUND"}, errorCodes(res))
}

func TestFetchersRecordMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	schema := f.schema(t, nil, WithMetrics(m))

	run(schema, `{ book(id: "1") { title { get } secret { get } } }`)

	count, err := testutil.GatherAndCount(reg, "gqlv_fetcher_vetoes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "gqlv_fetcher_invocations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "lookup and get")
	count, err = testutil.GatherAndCount(reg, "gqlv_schema_types")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUnrepresentableMembersAreSkipped(t *testing.T) {
	type gadget struct{ Any interface{} }
	type opaque struct{ N int }

	m := specbuilder.New()
	g := m.ViewModel("lab.Gadget", &gadget{})
	g.Property("name", func(g *gadget) string { return "g" })
	g.Property("any", func(g *gadget) interface{} { return g.Any })
	g.Action("probe", func(g *gadget) opaque { return opaque{} }).Semantics(metamodel.Safe)
	g.Action("feed", func(g *gadget, args struct{ With opaque }) {})
	mm, err := m.Build()
	require.NoError(t, err)

	repo := bookmark.NewRepository(mm.BookmarkNamer())
	schema, err := Build(NewContext(nil, mm, repo))
	require.NoError(t, err)

	fields := fieldNames(t, schema, "lab_Gadget")
	assert.Contains(t, fields, "name")
	assert.NotContains(t, fields, "any")
	assert.NotContains(t, fields, "feed")
	assert.ElementsMatch(t, []string{"hidden", "disabled", "validate"}, fieldNames(t, schema, "lab_Gadget__probe__gqlv_action"))
}

func TestMetaFieldNameWinsOverMember(t *testing.T) {
	type thing struct{}
	m := specbuilder.New()
	th := m.ViewModel("lab.Thing", &thing{})
	th.Property("meta", func(*thing) string { return "member" })
	th.Property("other", func(*thing) string { return "other" })
	mm, err := m.Build()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Meta.FieldName = "meta"
	schema, err := Build(NewContext(cfg, mm, bookmark.NewRepository(mm.BookmarkNamer())))
	require.NoError(t, err)

	meta := schema.Type("lab_Thing").(*graphql.Object).Fields()["meta"]
	require.NotNil(t, meta)
	assert.Equal(t, "lab_Thing__gqlv_meta", meta.Type.Name())
	assert.Contains(t, fieldNames(t, schema, "lab_Thing"), "other")
}

func TestEmptyMetamodelFails(t *testing.T) {
	mm, err := specbuilder.New().Build()
	require.NoError(t, err)
	_, err = Build(NewContext(nil, mm, bookmark.NewRepository(nil)))
	assert.True(t, errors.Is(err, errEmptyType), fmt.Sprint(err))
}

func TestHiddenMembersNeverExecute(t *testing.T) {
	type vault struct{ Label string }
	calls := map[string]int{}
	never := func(*vault) bool { return true }

	m := specbuilder.New()
	v := m.Entity("lab.Vault", &vault{})
	v.Property("label", func(v *vault) string { return v.Label })
	v.Action("peek", func(v *vault) string {
		calls["peek"]++
		return "gold"
	}).Semantics(metamodel.Safe).Hidden(never)
	v.Action("open", func(v *vault) {
		calls["open"]++
	}).Hidden(never)
	v.Collection("contents", func(v *vault) []*vault {
		calls["contents"]++
		return []*vault{v}
	}).Hidden(never)
	mm, err := m.Build()
	require.NoError(t, err)

	repo := bookmark.NewRepository(mm.BookmarkNamer())
	_, err = repo.PersistWithID("lab.Vault", "v1", &vault{Label: "main"})
	require.NoError(t, err)
	schema, err := Build(NewContext(nil, mm, repo))
	require.NoError(t, err)

	res := run(schema, `{ vault(id: "v1") { peek { hidden invoke } contents { hidden get { label { get } } } } }`)
	assert.Equal(t, []interface{}{"HIDDEN", "HIDDEN"}, errorCodes(res))
	assert.Equal(t, map[string]interface{}{
		"vault": map[string]interface{}{
			"peek":     map[string]interface{}{"hidden": true, "invoke": nil},
			"contents": map[string]interface{}{"hidden": true, "get": nil},
		},
	}, res.Data)

	res = run(schema, `mutation { lab_Vault__open(_gqlv_target: {id: "v1"}) { label { get } } }`)
	assert.Equal(t, []interface{}{"HIDDEN"}, errorCodes(res))

	assert.Empty(t, calls)
}

func TestLookalikeTypeNamesStayDistinct(t *testing.T) {
	type dotted struct {
		Name   string
		Closed bool
	}
	type underscored struct {
		Amount string
		Closed bool
	}

	m := specbuilder.New()
	d := m.Entity("shop.Order", &dotted{})
	d.Property("name", func(o *dotted) string { return o.Name })
	d.Action("close", func(o *dotted) { o.Closed = true })
	u := m.Entity("shop_Order", &underscored{})
	u.Property("amount", func(o *underscored) string { return o.Amount })
	u.Action("close", func(o *underscored) { o.Closed = true })
	mm, err := m.Build()
	require.NoError(t, err)

	a := &dotted{Name: "first"}
	b := &underscored{Amount: "9.99"}
	repo := bookmark.NewRepository(mm.BookmarkNamer())
	_, err = repo.PersistWithID("shop.Order", "a1", a)
	require.NoError(t, err)
	_, err = repo.PersistWithID("shop_Order", "b1", b)
	require.NoError(t, err)
	schema, err := Build(NewContext(nil, mm, repo))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"_gqlv_meta", "name", "close"}, fieldNames(t, schema, "shop_Order"))
	assert.ElementsMatch(t, []string{"_gqlv_meta", "amount", "close"}, fieldNames(t, schema, "shop_0Order"))
	assert.ElementsMatch(t, []string{"shop_Order__close", "shop_0Order__close"}, fieldNames(t, schema, "Mutation"))

	res := run(schema, `{ order(id: "a1") { name { get } } shopOrder(id: "b1") { amount { get } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Equal(t, map[string]interface{}{
		"order":     map[string]interface{}{"name": map[string]interface{}{"get": "first"}},
		"shopOrder": map[string]interface{}{"amount": map[string]interface{}{"get": "9.99"}},
	}, res.Data)

	res = run(schema, `mutation { shop_0Order__close(_gqlv_target: {id: "b1"}) { amount { get } } }`)
	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.True(t, b.Closed)
	assert.False(t, a.Closed)
}

func TestTypeNameOwnedByAnotherTypeIsSkipped(t *testing.T) {
	type thing struct{}
	type other struct{}
	m := specbuilder.New()
	m.ViewModel("lab.Thing", &thing{}).Property("name", func(*thing) string { return "thing" })
	m.ViewModel("lab.Other", &other{}).Property("name", func(*other) string { return "other" })
	mm, err := m.Build()
	require.NoError(t, err)

	c := NewContext(nil, mm, bookmark.NewRepository(mm.BookmarkNamer()))
	c.Types.LookupOrAdd("lab_Thing", func() graphql.Type {
		return graphql.NewObject(graphql.ObjectConfig{Name: "lab_Thing", Fields: graphql.Fields{"x": &graphql.Field{Type: graphql.String}}})
	})
	schema, err := Build(c)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"other"}, fieldNames(t, schema, "Query"))
	assert.Nil(t, schema.Type("lab_Thing"))
}
