package orders

import "go.causeway.dev/gqlv/metamodel/specbuilder"

// Logical type names.
const (
	StatusType    = "demo.Status"
	CustomerType  = "demo.Customer"
	ProductType   = "demo.Product"
	OrderType     = "demo.Order"
	OrderLineType = "demo.OrderLine"
	OrdersType    = "demo.Orders"
)

// RegisterModel registers the whole domain, served by svc.
func RegisterModel(m *specbuilder.Model, svc *Orders) {
	RegisterEnums(m)
	RegisterObjects(m, svc)
	RegisterServices(m, svc)
}
