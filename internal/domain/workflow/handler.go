package workflow

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homehealth/intake/pkg/pagination"
)

// Handler exposes the workflow engine over HTTP.
type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the workflow routes on the given group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/workflows", h.ListWorkflows)
	api.GET("/workflows/:id", h.GetWorkflow)
	api.POST("/workflows/:id/executions", h.StartExecution)
	api.GET("/executions/:id", h.GetExecution)
	api.POST("/executions/:id/approvals", h.SubmitApproval)
	api.GET("/approvals/pending", h.PendingApprovals)
}

func (h *Handler) ListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.ListWorkflows())
}

func (h *Handler) GetWorkflow(c echo.Context) error {
	def, err := h.engine.GetWorkflow(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "workflow not found")
	}
	return c.JSON(http.StatusOK, def)
}

// StartExecutionRequest is the body for starting a workflow run.
type StartExecutionRequest struct {
	Context map[string]interface{} `json:"context"`
}

func (h *Handler) StartExecution(c echo.Context) error {
	var req StartExecutionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ex, err := h.engine.StartWorkflow(c.Request().Context(), c.Param("id"), req.Context)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "workflow not found")
		case errors.Is(err, ErrDisabled):
			return echo.NewHTTPError(http.StatusConflict, "workflow is disabled")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to start workflow")
		}
	}
	return c.JSON(http.StatusCreated, ex)
}

func (h *Handler) GetExecution(c echo.Context) error {
	ex, err := h.engine.GetExecution(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "execution not found")
	}
	return c.JSON(http.StatusOK, ex)
}

// SubmitApprovalRequest is the body for recording an approval. IP address
// and device info come from the request itself.
type SubmitApprovalRequest struct {
	ApproverType        ApproverType `json:"approverType"`
	ApproverID          string       `json:"approverId"`
	ApproverName        string       `json:"approverName"`
	ApproverCredentials string       `json:"approverCredentials"`
	Comments            string       `json:"comments"`
}

// SubmitApprovalResponse reports the recorded approval outcome.
type SubmitApprovalResponse struct {
	Advanced  bool       `json:"advanced"`
	Execution *Execution `json:"execution"`
}

func (h *Handler) SubmitApproval(c echo.Context) error {
	var req SubmitApprovalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ApproverID == "" || req.ApproverName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "approverId and approverName are required")
	}
	approver := Approver{
		ID:          req.ApproverID,
		Name:        req.ApproverName,
		Credentials: req.ApproverCredentials,
		IPAddress:   c.RealIP(),
		DeviceInfo:  c.Request().UserAgent(),
	}
	id := c.Param("id")
	advanced, err := h.engine.SubmitApproval(c.Request().Context(), id, req.ApproverType, approver, req.Comments)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "execution not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ex, err := h.engine.GetExecution(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load execution")
	}
	return c.JSON(http.StatusOK, SubmitApprovalResponse{Advanced: advanced, Execution: ex})
}

func (h *Handler) PendingApprovals(c echo.Context) error {
	approverType := ApproverType(c.QueryParam("approver_type"))
	if approverType != "" && !validApproverTypes[approverType] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid approver_type")
	}
	pending := h.engine.GetPendingApprovals(approverType)
	p := pagination.FromContext(c)
	start, end := p.Slice(len(pending))
	return c.JSON(http.StatusOK, pagination.NewResponse(pending[start:end], len(pending), p))
}
