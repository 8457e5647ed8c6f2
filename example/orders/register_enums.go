package orders

import "go.causeway.dev/gqlv/metamodel/specbuilder"

// RegisterEnums registers the value types of the package.
func RegisterEnums(m *specbuilder.Model) {
	m.Enum(StatusType, StatusOpen, map[string]interface{}{
		"OPEN":      StatusOpen,
		"SHIPPED":   StatusShipped,
		"CANCELLED": StatusCancelled,
	})
}
