package referral

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homehealth/intake/internal/platform/metrics"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/referrals/decision", h.Decide)
}

// DecisionRequest is the decision endpoint's body: the referral plus optional
// weight overrides for what-if scoring.
type DecisionRequest struct {
	Referral ReferralData   `json:"referral"`
	Weights  *FactorWeights `json:"weights,omitempty"`
}

func (h *Handler) Decide(c echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	decision := h.engine.Decide(req.Referral, req.Weights)
	metrics.IncDecision(string(decision.Action))
	return c.JSON(http.StatusOK, decision)
}
