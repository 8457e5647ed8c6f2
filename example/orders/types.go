// Package orders is a small order-taking domain exposed through gqlv. It is
// used by the gqlv command and by end-to-end tests.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.causeway.dev/gqlv/bookmark"
	"go.causeway.dev/gqlv/valuesemantics"
)

// Status of an order.
type Status string

const (
	StatusOpen      Status = "open"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Customer places orders.
type Customer struct {
	Name   string
	Email  string
	Orders []*Order
}

// Product is sold by the cent.
type Product struct {
	SKU        string
	Name       string
	PriceCents int64
}

// Price renders the unit price.
func (p *Product) Price() valuesemantics.Decimal {
	return cents(p.PriceCents)
}

// OrderLine is one product of an order. Lines are view models: they live
// inside their order and are not persisted on their own.
type OrderLine struct {
	Product  *Product
	Quantity int32
}

// Subtotal is the price of the line.
func (l *OrderLine) Subtotal() valuesemantics.Decimal {
	return cents(l.Product.PriceCents * int64(l.Quantity))
}

// Order is placed by a customer. Rev is bumped on every change.
type Order struct {
	Number   string
	Customer *Customer
	Lines    []*OrderLine
	Status   Status
	Notes    string
	PlacedOn valuesemantics.Date
	Rev      int64
}

func (o *Order) String() string {
	return "Order " + o.Number
}

// Total is the sum of all lines.
func (o *Order) Total() valuesemantics.Decimal {
	var total int64
	for _, l := range o.Lines {
		total += l.Product.PriceCents * int64(l.Quantity)
	}
	return cents(total)
}

// Invoice renders the order as a plain text document.
func (o *Order) Invoice() valuesemantics.BlobValue {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %s\n", o.Number)
	if o.Customer != nil {
		fmt.Fprintf(&b, "Customer: %s\n", o.Customer.Name)
	}
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%d x %s %s\n", l.Quantity, l.Product.Name, l.Subtotal())
	}
	fmt.Fprintf(&b, "Total: %s\n", o.Total())
	return valuesemantics.BlobValue{
		Name:     "invoice-" + o.Number + ".txt",
		MimeType: "text/plain",
		Bytes:    []byte(b.String()),
	}
}

// AddLine adds quantity of p, merging with an existing line of p.
func (o *Order) AddLine(p *Product, quantity int32) {
	defer o.touch()
	for _, l := range o.Lines {
		if l.Product == p {
			l.Quantity += quantity
			return
		}
	}
	o.Lines = append(o.Lines, &OrderLine{Product: p, Quantity: quantity})
}

// Cancel cancels an open order.
func (o *Order) Cancel() error {
	if reason := o.cannotChange(); reason != "" {
		return errors.New(reason)
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

// Ship ships an open order with at least one line.
func (o *Order) Ship() error {
	if reason := o.cannotShip(); reason != "" {
		return errors.New(reason)
	}
	o.Status = StatusShipped
	o.touch()
	return nil
}

func (o *Order) cannotChange() string {
	switch o.Status {
	case StatusShipped:
		return "already shipped"
	case StatusCancelled:
		return "cancelled"
	}
	return ""
}

func (o *Order) cannotShip() string {
	if reason := o.cannotChange(); reason != "" {
		return reason
	}
	if len(o.Lines) == 0 {
		return "no lines"
	}
	return ""
}

func (o *Order) touch() {
	o.Rev++
}

func cents(c int64) valuesemantics.Decimal {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return valuesemantics.Decimal(fmt.Sprintf("%s%d.%02d", sign, c/100, c%100))
}

// Orders is the domain service of the package.
type Orders struct {
	repo  *bookmark.Repository
	clock func() time.Time

	mu        sync.Mutex
	orders    []*Order
	customers []*Customer
	products  []*Product
	next      int
}

// NewOrders returns an empty service persisting into repo.
func NewOrders(repo *bookmark.Repository) *Orders {
	return &Orders{repo: repo, clock: time.Now, next: 1000}
}

// FindOrder returns the order numbered number, or nil.
func (s *Orders) FindOrder(number string) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.Number == number {
			return o
		}
	}
	return nil
}

// AllProducts lists the catalogue.
func (s *Orders) AllProducts() []*Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Product(nil), s.products...)
}

// NewOrder opens an order for c and persists it.
func (s *Orders) NewOrder(ctx context.Context, c *Customer) (*Order, error) {
	if c == nil {
		return nil, errors.New("customer is required")
	}
	s.mu.Lock()
	number := fmt.Sprint(s.next)
	s.next++
	now := s.clock()
	o := &Order{
		Number:   number,
		Customer: c,
		Status:   StatusOpen,
		PlacedOn: valuesemantics.NewDate(now.Year(), now.Month(), now.Day()),
		Rev:      1,
	}
	s.mu.Unlock()

	if _, err := s.repo.PersistWithID(OrderType, number, o); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.orders = append(s.orders, o)
	c.Orders = append(c.Orders, o)
	s.mu.Unlock()
	return o, nil
}

func (s *Orders) addCustomer(id string, c *Customer) error {
	if _, err := s.repo.PersistWithID(CustomerType, id, c); err != nil {
		return err
	}
	s.customers = append(s.customers, c)
	return nil
}

func (s *Orders) addProduct(p *Product) error {
	if _, err := s.repo.PersistWithID(ProductType, p.SKU, p); err != nil {
		return err
	}
	s.products = append(s.products, p)
	return nil
}

func (s *Orders) addOrder(o *Order) error {
	if _, err := s.repo.PersistWithID(OrderType, o.Number, o); err != nil {
		return err
	}
	s.orders = append(s.orders, o)
	o.Customer.Orders = append(o.Customer.Orders, o)
	return nil
}
