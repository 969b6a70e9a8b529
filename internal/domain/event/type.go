package event

// Type identifies the type of domain event
type Type string

const (
	TypeReturnCreated   Type = "return.created"
	TypeReturnApproved  Type = "return.approved"
	TypeReturnRejected  Type = "return.rejected"
	TypeReturnFinalized Type = "return.finalized"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeReturnCreated,
		TypeReturnApproved,
		TypeReturnRejected,
		TypeReturnFinalized:
		return true
	default:
		return false
	}
}
