package metamodel

// Identifier names a type or one of its features.
type Identifier struct {
	LogicalTypeName string
	MemberID        string
	// ParameterID is set for action parameters.
	ParameterID string
}

// TypeIdentifier identifies a type.
func TypeIdentifier(logicalTypeName string) Identifier {
	return Identifier{LogicalTypeName: logicalTypeName}
}

// MemberIdentifier identifies a member of a type.
func MemberIdentifier(logicalTypeName, memberID string) Identifier {
	return Identifier{LogicalTypeName: logicalTypeName, MemberID: memberID}
}

// ParameterIdentifier identifies a parameter of an action.
func (id Identifier) ParameterIdentifier(paramID string) Identifier {
	id.ParameterID = paramID
	return id
}

// String renders "type", "type#member" or "type#member(param)".
func (id Identifier) String() string {
	s := id.LogicalTypeName
	if id.MemberID != "" {
		s += "#" + id.MemberID
	}
	if id.ParameterID != "" {
		s += "(" + id.ParameterID + ")"
	}
	return s
}

// Consent is the outcome of an interaction check.
type Consent struct {
	Vetoed bool
	Reason string
}

// Allow returns a consent that permits the interaction.
func Allow() Consent {
	return Consent{}
}

// Veto returns a consent that forbids the interaction with reason.
func Veto(reason string) Consent {
	return Consent{Vetoed: true, Reason: reason}
}

// VetoIf vetoes when reason is not empty.
func VetoIf(reason string) Consent {
	if reason == "" {
		return Allow()
	}
	return Veto(reason)
}

// IsAllowed reports whether c permits the interaction.
func (c Consent) IsAllowed() bool {
	return !c.Vetoed
}
