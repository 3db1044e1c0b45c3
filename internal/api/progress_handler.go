package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/service"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// SubmitProgressRequest is a weekly report. Ranges are checked by the service.
type SubmitProgressRequest struct {
	WeekStartDate     string   `json:"weekStartDate" binding:"required"`
	Weight            *float64 `json:"weight" binding:"required"`
	MealAdherence     *int     `json:"mealAdherence" binding:"required"`
	WorkoutCompletion *int     `json:"workoutCompletion" binding:"required"`
	Notes             *string  `json:"notes"`
}

// SubmitProgress godoc
// @Summary Submit the weekly progress report
// @Description One report per week. Any existing report for the week is a conflict.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body SubmitProgressRequest true "Weekly report"
// @Success 201 {object} ProgressLogResponse
// @Failure 403 {object} gin.H "Not an approved client"
// @Failure 422 {object} gin.H "Validation error or duplicate week"
// @Router /progress [post]
func (h *ProgressHandler) SubmitProgress(c *gin.Context) {
	var req SubmitProgressRequest
	if !bindJSON(c, &req) {
		return
	}
	week, err := domain.ParseWeek(req.WeekStartDate)
	if err != nil {
		abortWithValidation(c, []string{"weekStartDate must be a date in YYYY-MM-DD format"})
		return
	}

	entry, err := h.progressService.Submit(c.Request.Context(), currentUser(c), service.ProgressInput{
		WeekStartDate:     week,
		Weight:            *req.Weight,
		MealAdherence:     *req.MealAdherence,
		WorkoutCompletion: *req.WorkoutCompletion,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProgressLogToResponse(entry))
}

// GetProgressLogs godoc
// @Summary List progress logs
// @Description Coaches see the logs of their clients, clients their own logs with feedback.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProgressLogResponse
// @Router /progress [get]
func (h *ProgressHandler) GetProgressLogs(c *gin.Context) {
	logs, err := h.progressService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressLogsToResponse(logs))
}

// GetProgressLog godoc
// @Summary Get one progress log
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "Progress log ID"
// @Success 200 {object} ProgressLogResponse
// @Failure 404 {object} gin.H "Progress log not found"
// @Router /progress/{id} [get]
func (h *ProgressHandler) GetProgressLog(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.progressService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressLogToResponse(entry))
}
