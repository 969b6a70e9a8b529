package workflow

import (
	"fmt"

	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// EffectiveLedger returns the non-superseded subsequence of a ledger,
// preserving order. Superseded entries belong to abandoned approval paths
// and carry no workflow state.
func EffectiveLedger(events []entity.ApprovalEvent) []entity.ApprovalEvent {
	eff := make([]entity.ApprovalEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Superseded {
			eff = append(eff, ev)
		}
	}
	return eff
}

// MaxSequence returns the highest sequence number in the ledger, superseded
// entries included. Sequence numbers are never reused.
func MaxSequence(events []entity.ApprovalEvent) int {
	max := 0
	for _, ev := range events {
		if ev.SequenceNo > max {
			max = ev.SequenceNo
		}
	}
	return max
}

// IsFinalized reports whether the effective ledger contains the terminal
// finalized approval.
func IsFinalized(events []entity.ApprovalEvent) bool {
	for _, ev := range events {
		if ev.IsFinalized && !ev.Superseded {
			return true
		}
	}
	return false
}

// IsTerminallyRejected reports whether the effective ledger ends in a level-1
// rejection. The request is back in its created state with no pending level,
// so no further transition applies until it is resubmitted.
func IsTerminallyRejected(events []entity.ApprovalEvent) bool {
	if len(events) == 0 {
		return false
	}
	last := events[len(events)-1]
	return last.Trail == entity.TrailRejected && last.Level <= 1
}

// LastApproverAt returns the user who most recently approved the given level,
// or empty when no such approval exists.
func LastApproverAt(events []entity.ApprovalEvent, level int) string {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Superseded {
			continue
		}
		if ev.Trail == entity.TrailApproved && ev.Level == level {
			return ev.ApprovedBy
		}
	}
	return ""
}

// Display status text for ledger events. The structured Level field is
// authoritative; these strings exist for UI and audit readability only.

// ApprovedStatus returns the display status for an approval at a level.
func ApprovedStatus(level int) string {
	return fmt.Sprintf("Level %d Approved", level)
}

// PendingStatus returns the display status for a pending marker at a level.
func PendingStatus(level int) string {
	return fmt.Sprintf("Level %d Approval Pending", level)
}

// RejectedStatus returns the display status for a rejection at a level. A
// level-1 rejection reads "Created - Rejected" because it sends the request
// back to its created state.
func RejectedStatus(level int) string {
	if level <= 1 {
		return "Created - Rejected"
	}
	return fmt.Sprintf("Level %d Approval Rejected", level)
}
