package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garagehub/returns-workflow/internal/application/dispatcher"
	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/internal/domain/event"
	"github.com/garagehub/returns-workflow/internal/domain/workflow"
)

// TransitionOutcome is what a completed approve/reject call reports back.
// Warnings list dependent writes that failed after the ledger committed; the
// transition itself is intact whenever an outcome is returned.
type TransitionOutcome struct {
	Request   *entity.ReturnRequest  `json:"request"`
	NewEvents []entity.ApprovalEvent `json:"new_events"`
	Warnings  []string               `json:"warnings,omitempty"`
}

// ApprovalService coordinates workflow transitions for purchase returns: it
// runs the pure transition logic, persists the ledger mutation as the unit of
// atomicity, then applies dependent writes (inventory reversal, audit log,
// notification fan-out) best-effort.
type ApprovalService interface {
	Approve(ctx context.Context, returnID int64, actorUserID, comment string) (*TransitionOutcome, error)
	Reject(ctx context.Context, returnID int64, actorUserID, comment string) (*TransitionOutcome, error)
}

type approvalServiceImpl struct {
	returnRepo     port.ReturnRequestRepository
	eventRepo      port.ApprovalEventRepository
	userRepo       port.UserRepository
	roleRepo       port.RoleRepository
	auditRepo      port.AuditLogRepository
	configService  WorkflowConfigService
	statusResolver StatusResolver
	notifications  NotificationService
	inventory      InventoryService
	txManager      port.TransactionManager
	events         dispatcher.Dispatcher
	logger         Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	returnRepo port.ReturnRequestRepository,
	eventRepo port.ApprovalEventRepository,
	userRepo port.UserRepository,
	roleRepo port.RoleRepository,
	auditRepo port.AuditLogRepository,
	configService WorkflowConfigService,
	statusResolver StatusResolver,
	notifications NotificationService,
	inventory InventoryService,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		returnRepo:     returnRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		auditRepo:      auditRepo,
		configService:  configService,
		statusResolver: statusResolver,
		notifications:  notifications,
		inventory:      inventory,
		txManager:      txManager,
		events:         events,
		logger:         logger,
	}
}

// Approve advances the request one level, finalizes it at the last level, or
// bulk-completes it when the actor holds override authority.
func (s *approvalServiceImpl) Approve(ctx context.Context, returnID int64, actorUserID, comment string) (*TransitionOutcome, error) {
	req, ledger, levels, actor, err := s.loadTransitionState(ctx, returnID, actorUserID)
	if err != nil {
		return nil, err
	}

	res, err := workflow.Approve(workflow.TransitionInput{
		Request: req,
		Ledger:  ledger,
		Levels:  levels,
		Actor:   actor,
		Comment: comment,
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.commit(ctx, req, res)
	if err != nil {
		return nil, err
	}

	level := res.NewEvents[0].Level
	action := entity.AuditActionLevelApproved
	if actor.Privileged && res.Terminal && len(res.NewEvents) > 1 {
		action = entity.AuditActionOverrideApproved
	}
	s.writeAudit(ctx, outcome, req, actor.UserID, action,
		fmt.Sprintf("%s approved return %s at level %d", actorUserID, req.ReturnNumber, level))

	message := fmt.Sprintf("Return %s approved at level %d", req.ReturnNumber, level)
	if res.Terminal {
		message = fmt.Sprintf("Return %s fully approved", req.ReturnNumber)
	}
	s.notifyCreator(ctx, outcome, req, actor.UserID, message, entity.AlertReturnApproved)
	if res.NotifyRoleID != "" {
		s.notifyNextLevel(ctx, outcome, req, actor.UserID, res)
	}

	evtType := event.TypeReturnApproved
	if res.Terminal {
		evtType = event.TypeReturnFinalized
	}
	s.publish(ctx, evtType, req, actor.UserID, message, res)

	return outcome, nil
}

// Reject records a rejection, bounces the request to the previous approver
// (or back to created for level 1), and restores inventory exactly when the
// rejection leaves no pending approval path.
func (s *approvalServiceImpl) Reject(ctx context.Context, returnID int64, actorUserID, comment string) (*TransitionOutcome, error) {
	req, ledger, levels, actor, err := s.loadTransitionState(ctx, returnID, actorUserID)
	if err != nil {
		return nil, err
	}

	res, err := workflow.Reject(workflow.TransitionInput{
		Request: req,
		Ledger:  ledger,
		Levels:  levels,
		Actor:   actor,
		Comment: comment,
		Now:     time.Now(),
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.commit(ctx, req, res)
	if err != nil {
		return nil, err
	}

	if res.InventoryRestoreNeeded {
		restored, warnings := s.inventory.Restore(ctx, req)
		outcome.Warnings = append(outcome.Warnings, warnings...)
		s.writeAudit(ctx, outcome, req, actor.UserID, entity.AuditActionInventoryRestore,
			fmt.Sprintf("restored %d inventory lines for return %s", restored, req.ReturnNumber))
	}

	level := res.NewEvents[0].Level
	s.writeAudit(ctx, outcome, req, actor.UserID, entity.AuditActionLevelRejected,
		fmt.Sprintf("%s rejected return %s at level %d: %s", actorUserID, req.ReturnNumber, level, comment))

	message := fmt.Sprintf("Return %s rejected at level %d: %s", req.ReturnNumber, level, comment)
	s.notifyCreator(ctx, outcome, req, actor.UserID, message, entity.AlertReturnRejected)

	s.publish(ctx, event.TypeReturnRejected, req, actor.UserID, message, res)

	return outcome, nil
}

// loadTransitionState reads everything a transition needs and resolves the
// acting user into a workflow actor.
func (s *approvalServiceImpl) loadTransitionState(ctx context.Context, returnID int64, actorUserID string) (*entity.ReturnRequest, []entity.ApprovalEvent, []entity.WorkflowLevel, workflow.Actor, error) {
	var actor workflow.Actor

	req, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, nil, nil, actor, fmt.Errorf("get return: %w", err)
	}
	if req == nil {
		return nil, nil, nil, actor, fmt.Errorf("return %d: %w", returnID, port.ErrNotFound)
	}

	user, err := s.userRepo.GetByID(ctx, actorUserID)
	if err != nil {
		return nil, nil, nil, actor, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, nil, nil, actor, fmt.Errorf("user %s: %w", actorUserID, port.ErrNotFound)
	}

	role, err := s.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, nil, nil, actor, fmt.Errorf("get role: %w", err)
	}
	actor = workflow.Actor{
		UserID:     user.ID,
		RoleID:     user.RoleID,
		Privileged: role != nil && role.IsPrivileged,
	}

	levels, err := s.configService.Levels(ctx, req.CompanyID, entity.ProcessPurchaseReturn)
	if err != nil {
		return nil, nil, nil, actor, err
	}

	ledger, err := s.eventRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		return nil, nil, nil, actor, fmt.Errorf("get ledger: %w", err)
	}

	return req, ledger, levels, actor, nil
}

// commit persists the transition result in one transaction: supersede stale
// entries, append the new events, and conditionally advance the request's
// workflow pointer keyed on its last known ledger sequence. A concurrent
// writer makes the conditional update fail with ErrStaleRequest and nothing
// is committed.
func (s *approvalServiceImpl) commit(ctx context.Context, req *entity.ReturnRequest, res *workflow.Result) (*TransitionOutcome, error) {
	status, err := s.statusResolver.Resolve(ctx, req.CompanyID, res.StatusKind)
	if err != nil {
		return nil, err
	}

	newSeq := res.NewEvents[len(res.NewEvents)-1].SequenceNo
	res.NewEvents[len(res.NewEvents)-1].StatusID = &status.ID

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.returnRepo.UpdateWorkflowState(txCtx, req.ID, res.WorkflowID, res.NextRoleID, status.ID, req.LedgerSeq, newSeq); err != nil {
			return err
		}
		if err := s.eventRepo.MarkSuperseded(txCtx, req.ID, res.SupersededSeqs); err != nil {
			return fmt.Errorf("supersede stale events: %w", err)
		}
		if err := s.eventRepo.AppendBatch(txCtx, res.NewEvents); err != nil {
			return fmt.Errorf("append ledger events: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to commit workflow transition", "error", err, "return_id", req.ID)
		return nil, err
	}

	req.WorkflowID = res.WorkflowID
	req.NextLevelRoleID = res.NextRoleID
	req.ReturnStatusID = status.ID
	req.LedgerSeq = newSeq
	req.UpdatedAt = time.Now()

	s.logger.Info("Workflow transition committed",
		"return_id", req.ID,
		"events", len(res.NewEvents),
		"terminal", res.Terminal,
	)

	return &TransitionOutcome{Request: req, NewEvents: res.NewEvents}, nil
}

// writeAudit records a system_log entry; failure becomes a warning.
func (s *approvalServiceImpl) writeAudit(ctx context.Context, outcome *TransitionOutcome, req *entity.ReturnRequest, actor, action, detail string) {
	entry := &entity.AuditEntry{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		Actor:     actor,
		Action:    action,
		EntityID:  req.ID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit entry", "error", err, "return_id", req.ID, "action", action)
		outcome.Warnings = append(outcome.Warnings, "audit log entry failed")
	}
}

// notifyCreator notifies the request creator; failure becomes a warning.
func (s *approvalServiceImpl) notifyCreator(ctx context.Context, outcome *TransitionOutcome, req *entity.ReturnRequest, actor, message, alertType string) {
	if _, err := s.notifications.NotifyUser(ctx, req.CompanyID, req.CreatedBy, message, alertType, req.ID, actor); err != nil {
		outcome.Warnings = append(outcome.Warnings, "creator notification failed")
	}
}

// notifyNextLevel notifies all holders of the next level's role; failure
// becomes a warning.
func (s *approvalServiceImpl) notifyNextLevel(ctx context.Context, outcome *TransitionOutcome, req *entity.ReturnRequest, actor string, res *workflow.Result) {
	message := fmt.Sprintf("Return %s awaits your approval at level %d", req.ReturnNumber, res.NotifyLevel)
	if _, err := s.notifications.NotifyRole(ctx, req.CompanyID, res.NotifyRoleID, message, entity.AlertReturnApproved, req.ID, actor); err != nil {
		outcome.Warnings = append(outcome.Warnings, "next-level notification failed")
	}
}

// publish emits a domain event for async subscribers (chat push). Errors in
// subscribers are logged by the dispatcher, never surfaced here.
func (s *approvalServiceImpl) publish(ctx context.Context, evtType event.Type, req *entity.ReturnRequest, actor, message string, res *workflow.Result) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"message":        message,
		"creator":        req.CreatedBy,
		"notify_role_id": res.NotifyRoleID,
	}
	s.events.DispatchAsync(context.WithoutCancel(ctx), event.New(evtType, req.ID, req.CompanyID, actor, payload))
}
