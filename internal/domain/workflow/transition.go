package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// Actor identifies who is performing a transition. Privileged marks holders
// of the super-admin role; whether that grants override is decided per
// workflow level, not here.
type Actor struct {
	UserID     string
	RoleID     string
	Privileged bool
}

// TransitionInput carries everything a pure transition needs: the request,
// its full ledger ordered by sequence number, and the level configuration
// for the process.
type TransitionInput struct {
	Request *entity.ReturnRequest
	Ledger  []entity.ApprovalEvent
	Levels  []entity.WorkflowLevel
	Actor   Actor
	Comment string
	Now     time.Time
}

// Result is the computed outcome of a transition. Nothing has been persisted:
// NewEvents are the ledger entries to append, SupersededSeqs the sequence
// numbers of effective entries the transition invalidates, and the remaining
// fields the request's resulting workflow pointer and status. The coordinator
// applies all of it in one transaction.
type Result struct {
	NewEvents      []entity.ApprovalEvent
	SupersededSeqs []int
	WorkflowID     *int64
	NextRoleID     *string
	StatusKind     entity.StatusKind
	Terminal       bool

	// NotifyLevel/NotifyRoleID name the role holders to notify about a
	// newly pending level. Zero when the transition leaves nothing pending.
	NotifyLevel  int
	NotifyRoleID string

	// InventoryRestoreNeeded is true exactly when the transition terminates
	// the workflow via rejection, leaving no pending approval path. It is
	// computed from the ledger, never from mutable external state, so the
	// coordinator invokes the restore at most once.
	InventoryRestoreNeeded bool
}

// Approve computes the approval transition for a request.
//
// A privileged actor acting at a level with override enabled collapses all
// remaining levels into one action: an approval for the current level plus a
// Pending/Approved pair for every remaining level, with only the final
// approval finalized. A privileged actor without override, like any other
// actor, must hold the role configured for the current level.
func Approve(in TransitionInput) (*Result, error) {
	if in.Request == nil {
		return nil, fmt.Errorf("%w: request is required", ErrValidation)
	}
	eff := EffectiveLedger(in.Ledger)
	if IsFinalized(eff) {
		return nil, ErrTerminated
	}

	info, err := ComputeNextLevel(in.Request.WorkflowID, eff, in.Levels)
	if err != nil {
		return nil, err
	}

	if in.Actor.Privileged && info.OverrideEnabled {
		return overrideApprove(in, info, eff)
	}
	if in.Actor.RoleID != info.CurrentRoleID {
		return nil, fmt.Errorf("%w: level %d requires role %s", ErrPermission, info.CurrentLevel, info.CurrentRoleID)
	}

	res := &Result{SupersededSeqs: staleBeyond(eff, info.CurrentLevel)}
	seq := MaxSequence(in.Ledger)

	if info.IsMaxLevel {
		seq++
		final := approvedEvent(in, info.CurrentLevel, in.Actor.RoleID, seq)
		final.IsFinalized = true
		res.NewEvents = append(res.NewEvents, final)
		res.StatusKind = entity.StatusKindCompleted
		res.Terminal = true
		return res, nil
	}

	seq++
	res.NewEvents = append(res.NewEvents, approvedEvent(in, info.CurrentLevel, in.Actor.RoleID, seq))
	seq++
	res.NewEvents = append(res.NewEvents, pendingEvent(in.Request.ID, info.NextLevel, info.NextRoleID, seq, in.Now))

	wfID, roleID := info.NextWorkflowID, info.NextRoleID
	res.WorkflowID = &wfID
	res.NextRoleID = &roleID
	res.StatusKind = entity.StatusKindInProgress
	res.NotifyLevel = info.NextLevel
	res.NotifyRoleID = info.NextRoleID
	return res, nil
}

// overrideApprove collapses the remaining ladder into a single bulk
// completion. Only the approval at the maximum level is finalized; the
// synthesized intermediate levels never are.
func overrideApprove(in TransitionInput, info *NextLevelInfo, eff []entity.ApprovalEvent) (*Result, error) {
	chain := activeChain(in.Levels)
	res := &Result{
		SupersededSeqs: staleBeyond(eff, info.CurrentLevel),
		StatusKind:     entity.StatusKindCompleted,
		Terminal:       true,
	}
	seq := MaxSequence(in.Ledger)

	seq++
	first := approvedEvent(in, info.CurrentLevel, in.Actor.RoleID, seq)
	first.IsFinalized = info.CurrentLevel >= info.MaxLevel
	res.NewEvents = append(res.NewEvents, first)

	for lvl := info.CurrentLevel + 1; lvl <= info.MaxLevel; lvl++ {
		cfg := levelByNumber(chain, lvl)
		if cfg == nil {
			return nil, fmt.Errorf("%w: level %d", ErrConfiguration, lvl)
		}
		seq++
		res.NewEvents = append(res.NewEvents, pendingEvent(in.Request.ID, lvl, cfg.RoleID, seq, in.Now))
		seq++
		ev := approvedEvent(in, lvl, cfg.RoleID, seq)
		ev.IsFinalized = lvl == info.MaxLevel
		res.NewEvents = append(res.NewEvents, ev)
	}
	return res, nil
}

// Reject computes the rejection transition for a request. A non-empty comment
// is required. Rejection at level N>1 bounces the request back to the
// previous level's approver; rejection at level 1 returns it to its created
// state and flags inventory for restoration.
func Reject(in TransitionInput) (*Result, error) {
	if in.Request == nil {
		return nil, fmt.Errorf("%w: request is required", ErrValidation)
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, fmt.Errorf("%w: rejection comment is required", ErrValidation)
	}
	eff := EffectiveLedger(in.Ledger)
	if IsFinalized(eff) {
		return nil, ErrTerminated
	}
	if in.Request.WorkflowID == nil && IsTerminallyRejected(eff) {
		return nil, ErrTerminated
	}

	info, err := ComputeNextLevel(in.Request.WorkflowID, eff, in.Levels)
	if err != nil {
		return nil, err
	}
	if !in.Actor.Privileged && in.Actor.RoleID != info.CurrentRoleID {
		return nil, fmt.Errorf("%w: level %d requires role %s", ErrPermission, info.CurrentLevel, info.CurrentRoleID)
	}

	res := &Result{SupersededSeqs: stalePendingFrom(eff, info.CurrentLevel)}

	ev := entity.ApprovalEvent{
		ReturnID:   in.Request.ID,
		SequenceNo: MaxSequence(in.Ledger) + 1,
		Level:      info.CurrentLevel,
		Trail:      entity.TrailRejected,
		Status:     RejectedStatus(info.CurrentLevel),
		RoleID:     in.Actor.RoleID,
		RejectedBy: in.Actor.UserID,
		RejectedTo: LastApproverAt(eff, info.CurrentLevel-1),
		Comment:    in.Comment,
		Date:       in.Now,
	}
	res.NewEvents = append(res.NewEvents, ev)

	if info.CurrentLevel > 1 {
		prev := levelByNumber(activeChain(in.Levels), info.CurrentLevel-1)
		if prev == nil {
			return nil, fmt.Errorf("%w: level %d", ErrConfiguration, info.CurrentLevel-1)
		}
		wfID, roleID := prev.ID, prev.RoleID
		res.WorkflowID = &wfID
		res.NextRoleID = &roleID
		res.StatusKind = entity.StatusKindInProgress
		return res, nil
	}

	res.StatusKind = entity.StatusKindCreated
	res.InventoryRestoreNeeded = true
	return res, nil
}

// staleBeyond returns sequence numbers of effective events above the given
// level. They belong to an approval path abandoned by an earlier rejection
// and must not survive a re-approval.
func staleBeyond(eff []entity.ApprovalEvent, level int) []int {
	var seqs []int
	for _, ev := range eff {
		if ev.Level > level {
			seqs = append(seqs, ev.SequenceNo)
		}
	}
	return seqs
}

// stalePendingFrom returns sequence numbers of effective Pending markers at
// or above the given level. The marker for the rejected level is consumed by
// the rejection; anything above it is an abandoned path.
func stalePendingFrom(eff []entity.ApprovalEvent, level int) []int {
	var seqs []int
	for _, ev := range eff {
		if ev.Level > level || (ev.Level == level && ev.Trail == entity.TrailPending) {
			seqs = append(seqs, ev.SequenceNo)
		}
	}
	return seqs
}

func approvedEvent(in TransitionInput, level int, roleID string, seq int) entity.ApprovalEvent {
	return entity.ApprovalEvent{
		ReturnID:   in.Request.ID,
		SequenceNo: seq,
		Level:      level,
		Trail:      entity.TrailApproved,
		Status:     ApprovedStatus(level),
		RoleID:     roleID,
		ApprovedBy: in.Actor.UserID,
		Comment:    in.Comment,
		Date:       in.Now,
	}
}

func pendingEvent(returnID int64, level int, roleID string, seq int, now time.Time) entity.ApprovalEvent {
	return entity.ApprovalEvent{
		ReturnID:   returnID,
		SequenceNo: seq,
		Level:      level,
		Trail:      entity.TrailPending,
		Status:     PendingStatus(level),
		RoleID:     roleID,
		Date:       now,
	}
}
