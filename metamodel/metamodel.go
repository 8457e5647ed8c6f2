// Package metamodel describes the read-only reflective API the GraphQL layer
// consumes: object specifications, their members and the interaction checks
// those members support.
//
// The schema builder never mutates a metamodel. Implementations are built
// once at startup and shared by every request.
package metamodel

import (
	"context"

	"go.causeway.dev/gqlv/valuesemantics"
)

// BeanSort classifies a type.
type BeanSort int

const (
	SortUnknown BeanSort = iota
	SortValue
	SortEntity
	SortViewModel
	SortManagedBean
	SortCollection
	SortAbstract
)

func (s BeanSort) String() string {
	switch s {
	case SortValue:
		return "VALUE"
	case SortEntity:
		return "ENTITY"
	case SortViewModel:
		return "VIEW_MODEL"
	case SortManagedBean:
		return "MANAGED_BEAN"
	case SortCollection:
		return "COLLECTION"
	case SortAbstract:
		return "ABSTRACT"
	default:
		return "UNKNOWN"
	}
}

// IsEntity reports whether s is SortEntity.
func (s BeanSort) IsEntity() bool { return s == SortEntity }

// IsViewModel reports whether s is SortViewModel.
func (s BeanSort) IsViewModel() bool { return s == SortViewModel }

// IsService reports whether s is SortManagedBean.
func (s BeanSort) IsService() bool { return s == SortManagedBean }

// IsDomainObject reports whether instances of s are addressable by bookmark.
func (s BeanSort) IsDomainObject() bool { return s == SortEntity || s == SortViewModel }

// ActionSemantics describes the side effects of invoking an action.
type ActionSemantics int

const (
	Safe ActionSemantics = iota
	Idempotent
	NonIdempotent
)

// IsSafe reports whether the action has no side effects.
func (a ActionSemantics) IsSafe() bool { return a == Safe }

func (a ActionSemantics) String() string {
	switch a {
	case Safe:
		return "SAFE"
	case Idempotent:
		return "IDEMPOTENT"
	default:
		return "NON_IDEMPOTENT"
	}
}

// ObjectSpecification describes one type known to the metamodel.
type ObjectSpecification interface {
	LogicalTypeName() string
	BeanSort() BeanSort
	Description() string

	// ValueType is meaningful for SortValue specifications that are not
	// enums.
	ValueType() valuesemantics.Kind

	// EnumValues lists the enum constants of an enum value type, in
	// declaration order. It is empty for every other specification.
	EnumValues() []EnumValue

	Properties() []Property
	Collections() []Collection
	Actions() []Action

	Property(id string) (Property, bool)
	Collection(id string) (Collection, bool)
	Action(id string) (Action, bool)

	// Title renders a human readable title of pojo.
	Title(pojo interface{}) string

	// Version returns the optimistic locking token of an entity.
	Version(pojo interface{}) (interface{}, bool)
}

// EnumValue is one constant of an enum type.
type EnumValue struct {
	Name  string
	Value interface{}
}

// Member is common to properties, collections and actions.
type Member interface {
	ID() string
	Identifier() Identifier
	Description() string

	IsVisible(ctx context.Context, target interface{}) Consent
	IsUsable(ctx context.Context, target interface{}) Consent
}

// Property is a scalar or reference association.
type Property interface {
	Member

	ElementType() ObjectSpecification
	IsOptional() bool

	Get(ctx context.Context, target interface{}) (interface{}, error)

	HasChoices() bool
	Choices(ctx context.Context, target interface{}) ([]interface{}, error)
	HasAutoComplete() bool
	AutoComplete(ctx context.Context, target interface{}, search string) ([]interface{}, error)

	// IsEditable reports whether the property declares a setter.
	IsEditable() bool
	IsAssociationValid(ctx context.Context, target, value interface{}) Consent
	Set(ctx context.Context, target, value interface{}) error
}

// Collection is a to-many association.
type Collection interface {
	Member

	ElementType() ObjectSpecification
	Get(ctx context.Context, target interface{}) ([]interface{}, error)
}

// Action is an invocable operation.
type Action interface {
	Member

	Semantics() ActionSemantics
	// ReturnType is the element type when ReturnsCollection is true. It is
	// nil for actions without a result.
	ReturnType() ObjectSpecification
	ReturnsCollection() bool
	Parameters() []ActionParameter

	IsArgumentSetValid(ctx context.Context, target interface{}, args []interface{}) Consent
	// Execute runs the action. Collection results are []interface{}.
	Execute(ctx context.Context, target interface{}, args []interface{}) (interface{}, error)
}

// ActionParameter is one positional parameter of an action.
type ActionParameter interface {
	ID() string
	Number() int
	Identifier() Identifier
	Description() string
	ElementType() ObjectSpecification
	IsOptional() bool

	IsVisible(ctx context.Context, target interface{}) Consent
	IsUsable(ctx context.Context, target interface{}) Consent

	HasChoices() bool
	Choices(ctx context.Context, target interface{}) ([]interface{}, error)
	HasAutoComplete() bool
	AutoComplete(ctx context.Context, target interface{}, search string) ([]interface{}, error)
	HasDefault() bool
	Default(ctx context.Context, target interface{}) (interface{}, error)

	IsValid(ctx context.Context, target, value interface{}) Consent
}

// SpecificationLoader gives access to every specification.
type SpecificationLoader interface {
	// SpecificationFor returns the specification of pojo's runtime type.
	SpecificationFor(pojo interface{}) (ObjectSpecification, bool)
	SpecificationByName(logicalTypeName string) (ObjectSpecification, bool)
	// Specifications returns every specification ordered by logical type
	// name.
	Specifications() []ObjectSpecification
	// Services returns the registered service singletons ordered by logical
	// type name.
	Services() []interface{}
}
