package orders

import (
	"strings"

	"go.causeway.dev/gqlv/metamodel"
	"go.causeway.dev/gqlv/metamodel/specbuilder"
	"go.causeway.dev/gqlv/valuesemantics"
)

const maxNotes = 80

// RegisterObjects registers the domain object types. Product choices are
// read from svc's catalogue.
func RegisterObjects(m *specbuilder.Model, svc *Orders) {
	registerCustomer(m)
	registerProduct(m)
	registerOrder(m, svc)
	registerOrderLine(m)
}

func registerCustomer(m *specbuilder.Model) {
	c := m.Entity(CustomerType, &Customer{}).Describe("A customer placing orders.")
	c.Title(func(c *Customer) string { return c.Name })
	c.Property("name", func(c *Customer) string { return c.Name })
	c.Property("email", func(c *Customer) string { return c.Email }).
		Hidden(func(c *Customer) bool { return c.Email == "" })
	c.Collection("orders", func(c *Customer) []*Order { return c.Orders })
}

func registerProduct(m *specbuilder.Model) {
	p := m.Entity(ProductType, &Product{})
	p.Title(func(p *Product) string { return p.Name })
	p.Property("sku", func(p *Product) string { return p.SKU })
	p.Property("name", func(p *Product) string { return p.Name })
	p.Property("price", func(p *Product) valuesemantics.Decimal { return p.Price() })
}

func registerOrder(m *specbuilder.Model, svc *Orders) {
	o := m.Entity(OrderType, &Order{}).Describe("An order of one customer.")
	o.Version(func(o *Order) int64 { return o.Rev })

	o.Property("customer", func(o *Order) *Customer { return o.Customer })
	o.Property("status", func(o *Order) Status { return o.Status })
	o.Property("placedOn", func(o *Order) valuesemantics.Date { return o.PlacedOn })
	o.Property("total", func(o *Order) valuesemantics.Decimal { return o.Total() }).
		Describe("Sum of all lines.")
	o.Property("notes", func(o *Order) string { return o.Notes }).
		Setter(func(o *Order, notes string) {
			o.Notes = notes
			o.touch()
		}).
		Validate(func(o *Order, notes string) string {
			if len(notes) > maxNotes {
				return "notes must not exceed 80 characters"
			}
			return ""
		}).
		Disabled(func(o *Order) string { return o.cannotChange() }).
		AutoComplete(func(o *Order, search string) []string {
			var hits []string
			for _, s := range []string{"gift wrap", "leave at the door", "call on arrival"} {
				if strings.Contains(s, strings.ToLower(search)) {
					hits = append(hits, s)
				}
			}
			return hits
		})
	o.Property("invoice", func(o *Order) valuesemantics.BlobValue { return o.Invoice() }).
		Hidden(func(o *Order) bool { return len(o.Lines) == 0 })
	o.Collection("lines", func(o *Order) []*OrderLine { return o.Lines })

	addLine := o.Action("addLine", func(o *Order, args addLineArgs) *Order {
		o.AddLine(args.Product, args.Quantity)
		return o
	}).
		Describe("Adds a quantity of a product.").
		Disabled(func(o *Order) string { return o.cannotChange() }).
		Validate(func(o *Order, args addLineArgs) string {
			if args.Product == nil {
				return "product is required"
			}
			return ""
		})
	addLine.Param("product").
		Choices(func(o *Order) []*Product { return svc.AllProducts() })
	addLine.Param("quantity").
		Default(func(o *Order) int32 { return 1 }).
		Validate(func(o *Order, quantity int32) string {
			if quantity < 1 || quantity > 100 {
				return "quantity must be between 1 and 100"
			}
			return ""
		})

	o.Action("cancel", func(o *Order) error { return o.Cancel() }).
		Disabled(func(o *Order) string { return o.cannotChange() })
	o.Action("ship", func(o *Order) error { return o.Ship() }).
		Semantics(metamodel.Idempotent).
		Disabled(func(o *Order) string { return o.cannotShip() })
}

type addLineArgs struct {
	Product  *Product
	Quantity int32
}

func registerOrderLine(m *specbuilder.Model) {
	l := m.ViewModel(OrderLineType, &OrderLine{})
	l.Title(func(l *OrderLine) string { return l.Product.Name })
	l.Property("product", func(l *OrderLine) *Product { return l.Product })
	l.Property("quantity", func(l *OrderLine) int32 { return l.Quantity })
	l.Property("subtotal", func(l *OrderLine) valuesemantics.Decimal { return l.Subtotal() })
}
