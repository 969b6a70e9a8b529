package workflow

import (
	"fmt"
	"sort"

	"github.com/garagehub/returns-workflow/internal/domain/entity"
)

// NextLevelInfo describes where a request sits in its approval ladder and
// what the next rung is. When IsMaxLevel is true the next-level fields are
// zero: an approval at the current level finalizes the workflow.
type NextLevelInfo struct {
	CurrentLevel      int
	CurrentRoleID     string
	CurrentWorkflowID int64
	OverrideEnabled   bool
	IsMaxLevel        bool
	MaxLevel          int
	NextLevel         int
	NextRoleID        string
	NextWorkflowID    int64
}

// ComputeNextLevel is the single source of truth for "what level is this
// request at". Given the request's workflow pointer (nil once the pointer was
// cleared or never advanced), its ledger, and the ordered level configuration
// for the process, it resolves the current level and, unless the current
// level is the last, the next one.
//
// Resolution order when the pointer is nil: resume from the level of the last
// Rejected event; otherwise one past the most recent Approved event; otherwise
// level 1. The first matching configuration for a level number wins when more
// than one exists. A missing configuration is ErrConfiguration, never a
// silent default.
func ComputeNextLevel(workflowID *int64, ledger []entity.ApprovalEvent, levels []entity.WorkflowLevel) (*NextLevelInfo, error) {
	chain := activeChain(levels)
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: no active levels configured", ErrConfiguration)
	}
	maxLevel := chain[len(chain)-1].Level

	var current *entity.WorkflowLevel
	if workflowID != nil {
		current = levelByID(chain, *workflowID)
		if current == nil {
			return nil, fmt.Errorf("%w: workflow id %d", ErrConfiguration, *workflowID)
		}
	} else {
		n := deriveLevel(EffectiveLedger(ledger))
		current = levelByNumber(chain, n)
		if current == nil {
			return nil, fmt.Errorf("%w: level %d", ErrConfiguration, n)
		}
	}

	info := &NextLevelInfo{
		CurrentLevel:      current.Level,
		CurrentRoleID:     current.RoleID,
		CurrentWorkflowID: current.ID,
		OverrideEnabled:   current.OverrideEnabled,
		MaxLevel:          maxLevel,
	}

	if current.Level >= maxLevel {
		info.IsMaxLevel = true
		return info, nil
	}

	next := levelByNumber(chain, current.Level+1)
	if next == nil {
		return nil, fmt.Errorf("%w: level %d", ErrConfiguration, current.Level+1)
	}
	info.NextLevel = next.Level
	info.NextRoleID = next.RoleID
	info.NextWorkflowID = next.ID
	return info, nil
}

// EntryLevel returns the level-1 configuration a freshly created request is
// parked at. The first matching level-1 entry is authoritative.
func EntryLevel(levels []entity.WorkflowLevel) (*entity.WorkflowLevel, error) {
	l1 := levelByNumber(activeChain(levels), 1)
	if l1 == nil {
		return nil, fmt.Errorf("%w: level 1", ErrConfiguration)
	}
	return l1, nil
}

// deriveLevel resumes a level from the effective ledger of a request whose
// workflow pointer is nil.
func deriveLevel(eff []entity.ApprovalEvent) int {
	if len(eff) == 0 {
		return 1
	}
	if last := eff[len(eff)-1]; last.Trail == entity.TrailRejected {
		if last.Level >= 1 {
			return last.Level
		}
		return 1
	}
	for i := len(eff) - 1; i >= 0; i-- {
		ev := eff[i]
		if ev.Trail == entity.TrailApproved && ev.RoleID != "" {
			return ev.Level + 1
		}
	}
	return 1
}

// activeChain returns the active levels ordered by level number. Sorting is
// stable so the first configured entry for a level number stays first.
func activeChain(levels []entity.WorkflowLevel) []entity.WorkflowLevel {
	chain := make([]entity.WorkflowLevel, 0, len(levels))
	for _, l := range levels {
		if l.IsActive {
			chain = append(chain, l)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool { return chain[i].Level < chain[j].Level })
	return chain
}

func levelByNumber(chain []entity.WorkflowLevel, n int) *entity.WorkflowLevel {
	for i := range chain {
		if chain[i].Level == n {
			return &chain[i]
		}
	}
	return nil
}

func levelByID(chain []entity.WorkflowLevel, id int64) *entity.WorkflowLevel {
	for i := range chain {
		if chain[i].ID == id {
			return &chain[i]
		}
	}
	return nil
}
