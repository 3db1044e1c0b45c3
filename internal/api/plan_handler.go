package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type CreatePlanRequest struct {
	ClientID    uint   `json:"clientId"`
	DietText    string `json:"dietText"`
	WorkoutText string `json:"workoutText"`
}

type UpdatePlanRequest struct {
	DietText    *string `json:"dietText"`
	WorkoutText *string `json:"workoutText"`
}

// idParam reads a positive numeric path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreatePlan godoc
// @Summary Assign a new active plan to a client
// @Description Any active plan the client had is deactivated.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan details"
// @Success 201 {object} PlanResponse
// @Failure 403 {object} gin.H "Not a coach"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 422 {object} gin.H "Validation error"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), currentUser(c), service.PlanInput{
		ClientID:    req.ClientID,
		DietText:    req.DietText,
		WorkoutText: req.WorkoutText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// GetPlans godoc
// @Summary List plans
// @Description Coaches get the plans they authored, clients the plans assigned to them. Newest first.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanResponse
// @Router /plans [get]
func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans, err := h.planService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetCurrentPlan godoc
// @Summary Get the client's active plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "No active plan found"
// @Router /plans/current [get]
func (h *PlanHandler) GetCurrentPlan(c *gin.Context) {
	plan, err := h.planService.Current(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// UpdatePlan godoc
// @Summary Edit the texts of a plan the coach authored
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param plan body UpdatePlanRequest true "Fields to change"
// @Success 200 {object} PlanResponse
// @Failure 404 {object} gin.H "Plan not found"
// @Router /plans/{id} [put]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), currentUser(c), planID, service.PlanUpdate{
		DietText:    req.DietText,
		WorkoutText: req.WorkoutText,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}
