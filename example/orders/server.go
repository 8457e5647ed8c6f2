package orders

import (
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv"
	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/config"
	"go.causeway.dev/gqlv/metamodel/specbuilder"
	"go.causeway.dev/gqlv/schemabuilder"
	"go.causeway.dev/gqlv/valuesemantics"
)

// Fixture is a seeded instance of the domain.
type Fixture struct {
	Repo      *bookmark.Repository
	Orders    *Orders
	Metamodel *specbuilder.Metamodel
}

// NewFixture registers the model and seeds two customers, two products and
// the orders 123 (open) and 124 (shipped).
func NewFixture() (*Fixture, error) {
	repo := bookmark.NewRepository(nil)
	svc := NewOrders(repo)

	m := specbuilder.New()
	RegisterModel(m, svc)
	mm, err := m.Build()
	if err != nil {
		return nil, err
	}
	repo.SetTypeNamer(mm.BookmarkNamer())
	if err := mm.RegisterServices(repo); err != nil {
		return nil, err
	}

	f := &Fixture{Repo: repo, Orders: svc, Metamodel: mm}
	if err := f.seed(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fixture) seed() error {
	ada := &Customer{Name: "Ada Lovelace", Email: "ada@example.com"}
	grace := &Customer{Name: "Grace Hopper"}
	widget := &Product{SKU: "p-100", Name: "Widget", PriceCents: 250}
	gadget := &Product{SKU: "p-200", Name: "Gadget", PriceCents: 1299}

	s := f.Orders
	for id, c := range map[string]*Customer{"c1": ada, "c2": grace} {
		if err := s.addCustomer(id, c); err != nil {
			return err
		}
	}
	for _, p := range []*Product{widget, gadget} {
		if err := s.addProduct(p); err != nil {
			return err
		}
	}

	placed := valuesemantics.NewDate(2024, time.March, 1)
	open := &Order{
		Number:   "123",
		Customer: ada,
		Status:   StatusOpen,
		PlacedOn: placed,
		Lines: []*OrderLine{
			{Product: widget, Quantity: 2},
			{Product: gadget, Quantity: 1},
		},
		Rev: 1,
	}
	shipped := &Order{
		Number:   "124",
		Customer: grace,
		Status:   StatusShipped,
		PlacedOn: placed,
		Lines:    []*OrderLine{{Product: widget, Quantity: 1}},
		Rev:      4,
	}
	for _, o := range []*Order{open, shipped} {
		if err := s.addOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// BuildSchema generates the schema of the fixture's model.
func (f *Fixture) BuildSchema(cfg *config.Config, opts ...schemabuilder.Option) (graphql.Schema, error) {
	return schemabuilder.Build(schemabuilder.NewContext(cfg, f.Metamodel, f.Repo, opts...))
}

// GetGraphqlServer seeds a fixture, builds its schema and returns the
// handler serving it.
func GetGraphqlServer(cfg *config.Config, logger *zap.Logger, opts ...schemabuilder.Option) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := NewFixture()
	if err != nil {
		return nil, err
	}
	opts = append([]schemabuilder.Option{schemabuilder.WithLogger(logger)}, opts...)
	schema, err := f.BuildSchema(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return gqlv.HTTPHandler(schema, gqlv.WithLogger(logger), gqlv.WithPlaygroundTitle("Orders")), nil
}
