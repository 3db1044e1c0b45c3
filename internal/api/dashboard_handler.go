package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// ClientDashboardResponse is service.ClientDashboard with the plan mapped.
type ClientDashboardResponse struct {
	LatestWeight   *float64            `json:"latestWeight"`
	LastSubmission *service.Submission `json:"lastSubmission"`
	WeightTrend    []domain.TrendPoint `json:"weightTrend"`
	CurrentPlan    *PlanResponse       `json:"currentPlan"`
}

// GetClientDashboard godoc
// @Summary Latest weight, last submission, weight trend and active plan of the client
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ClientDashboardResponse
// @Router /dashboard/client [get]
func (h *DashboardHandler) GetClientDashboard(c *gin.Context) {
	board, err := h.dashboardService.Client(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := ClientDashboardResponse{
		LatestWeight:   board.LatestWeight,
		LastSubmission: board.LastSubmission,
		WeightTrend:    board.WeightTrend,
	}
	if board.CurrentPlan != nil {
		plan := MapPlanToResponse(board.CurrentPlan)
		resp.CurrentPlan = &plan
	}
	c.JSON(http.StatusOK, resp)
}

// GetCoachDashboard godoc
// @Summary Client roster with aggregates, weight trends and pending review count
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.CoachDashboard
// @Router /dashboard/coach [get]
func (h *DashboardHandler) GetCoachDashboard(c *gin.Context) {
	board, err := h.dashboardService.Coach(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
