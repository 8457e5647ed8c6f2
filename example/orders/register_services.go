package orders

import (
	"context"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/metamodel/specbuilder"
)

// RegisterServices registers svc as the Orders domain service.
func RegisterServices(m *specbuilder.Model, svc *Orders) {
	s := m.Service(OrdersType, svc).Describe("Order taking.")
	s.Action("findOrder", func(s *Orders, args struct{ Number string }) *Order {
		return s.FindOrder(args.Number)
	}).Semantics(metamodel.Safe)
	s.Action("allProducts", func(s *Orders) []*Product {
		return s.AllProducts()
	}).Semantics(metamodel.Safe)
	s.Action("newOrder", func(ctx context.Context, s *Orders, args struct{ Customer *Customer }) (*Order, error) {
		return s.NewOrder(ctx, args.Customer)
	}).Validate(func(s *Orders, args struct{ Customer *Customer }) string {
		if args.Customer == nil {
			return "customer is required"
		}
		return ""
	})
}
