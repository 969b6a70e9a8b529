package entity

import "time"

// Trail classifies a ledger event.
type Trail string

const (
	TrailPending  Trail = "Pending"
	TrailApproved Trail = "Approved"
	TrailRejected Trail = "Rejected"
)

// IsValid returns true if the trail is a known value.
func (t Trail) IsValid() bool {
	switch t {
	case TrailPending, TrailApproved, TrailRejected:
		return true
	}
	return false
}

// String returns the string representation of the trail.
func (t Trail) String() string {
	return string(t)
}

// ApprovalEvent is one entry in a return request's append-only approval ledger.
// SequenceNo strictly increases within a ledger and is never reused, including
// across reject/re-approve cycles. Level is the structured workflow level the
// event belongs to; Status is display text only and carries no authoritative
// state. Superseded marks entries from an abandoned approval path; the
// effective ledger is the non-superseded subsequence. At most one event per
// ledger has IsFinalized set, and it is the terminal Approved event at the
// maximum configured level.
type ApprovalEvent struct {
	ID          int64     `json:"id"`
	ReturnID    int64     `json:"return_id"`
	SequenceNo  int       `json:"sequence_no"`
	Level       int       `json:"level"`
	Trail       Trail     `json:"trail"`
	Status      string    `json:"status"`
	RoleID      string    `json:"role_id"`
	ApprovedBy  string    `json:"approvedBy,omitempty"`
	RejectedBy  string    `json:"rejectedBy,omitempty"`
	RejectedTo  string    `json:"rejectedTo,omitempty"`
	IsFinalized bool      `json:"isFinalized"`
	Superseded  bool      `json:"superseded"`
	Comment     string    `json:"comment,omitempty"`
	StatusID    *int64    `json:"status_id,omitempty"`
	Date        time.Time `json:"date"`
}
