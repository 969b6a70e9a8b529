package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garagehub/returns-workflow/internal/application/port"
	"github.com/garagehub/returns-workflow/internal/application/service"
	"github.com/garagehub/returns-workflow/internal/domain/entity"
	"github.com/garagehub/returns-workflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	returnService   service.ReturnService
	approvalService service.ApprovalService
	configService   service.WorkflowConfigService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	returnService service.ReturnService,
	approvalService service.ApprovalService,
	configService service.WorkflowConfigService,
	logger Logger,
) *Handlers {
	return &Handlers{
		returnService:   returnService,
		approvalService: approvalService,
		configService:   configService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Total    *int        `json:"total,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TransitionRequest is the body of approve/reject calls
type TransitionRequest struct {
	Comment string `json:"comment"`
}

// ListReturnsRequest represents query parameters for listing returns
type ListReturnsRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateReturn handles POST /api/v1/returns
func (h *Handlers) CreateReturn(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var in service.CreateReturnInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}
	in.CompanyID = companyID
	in.CreatedBy = userID

	req, err := h.returnService.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err, "failed to create return")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    req,
	})
}

// ListReturns handles GET /api/v1/returns
func (h *Handlers) ListReturns(c *gin.Context) {
	companyID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req ListReturnsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	kind, ok := parseStatusKind(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "status must be one of: created, in_progress, completed",
		})
		return
	}

	rows, total, err := h.returnService.ListByStatus(c.Request.Context(), companyID, kind, req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err, "failed to list returns")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    rows,
		Total:   &total,
	})
}

// GetReturn handles GET /api/v1/returns/:id
func (h *Handlers) GetReturn(c *gin.Context) {
	id, ok := h.returnID(c)
	if !ok {
		return
	}

	req, err := h.returnService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get return")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    req,
	})
}

// GetReturnEvents handles GET /api/v1/returns/:id/events
func (h *Handlers) GetReturnEvents(c *gin.Context) {
	id, ok := h.returnID(c)
	if !ok {
		return
	}

	events, err := h.returnService.Events(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to get approval events")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    events,
	})
}

// ApproveReturn handles POST /api/v1/returns/:id/approve
func (h *Handlers) ApproveReturn(c *gin.Context) {
	h.transition(c, h.approvalService.Approve, "approval failed")
}

// RejectReturn handles POST /api/v1/returns/:id/reject
func (h *Handlers) RejectReturn(c *gin.Context) {
	h.transition(c, h.approvalService.Reject, "rejection failed")
}

// transitionFunc matches the signature of ApprovalService.Approve and Reject
type transitionFunc func(ctx context.Context, returnID int64, actorUserID, comment string) (*service.TransitionOutcome, error)

func (h *Handlers) transition(c *gin.Context, fn transitionFunc, failMsg string) {
	_, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.returnID(c)
	if !ok {
		return
	}

	var body TransitionRequest
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		h.logger.Error("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	outcome, err := fn(c.Request.Context(), id, userID, body.Comment)
	if err != nil {
		h.respondError(c, err, failMsg)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:  true,
		Data:     outcome,
		Warnings: outcome.Warnings,
	})
}

// ListWorkflowLevels handles GET /api/v1/workflow-levels
func (h *Handlers) ListWorkflowLevels(c *gin.Context) {
	companyID, _, ok := h.identity(c)
	if !ok {
		return
	}

	levels, err := h.configService.Levels(c.Request.Context(), companyID, entity.ProcessPurchaseReturn)
	if err != nil {
		h.respondError(c, err, "failed to load workflow levels")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    levels,
	})
}

// identity pulls the acting user and company from request headers
func (h *Handlers) identity(c *gin.Context) (int64, string, bool) {
	userID := c.GetHeader("X-User-ID")
	companyStr := c.GetHeader("X-Company-ID")
	if userID == "" || companyStr == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "X-User-ID and X-Company-ID headers are required",
		})
		return 0, "", false
	}

	companyID, err := strconv.ParseInt(companyStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid X-Company-ID header",
		})
		return 0, "", false
	}
	return companyID, userID, true
}

// returnID parses the :id path parameter
func (h *Handlers) returnID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid return ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid return ID",
		})
		return 0, false
	}
	return id, true
}

// respondError maps domain and port errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, workflow.ErrPermission):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, port.ErrStaleRequest), errors.Is(err, workflow.ErrTerminated):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, workflow.ErrConfiguration):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	default:
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

func parseStatusKind(s string) (entity.StatusKind, bool) {
	switch s {
	case "created", "":
		return entity.StatusKindCreated, true
	case "in_progress":
		return entity.StatusKindInProgress, true
	case "completed":
		return entity.StatusKindCompleted, true
	}
	return entity.StatusKindCreated, false
}
