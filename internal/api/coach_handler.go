package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/service"
)

// CoachHandler serves the coach-only client approval and review workflow.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

type ReviewLogRequest struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback"`
}

// GetPendingClients godoc
// @Summary List clients waiting for approval
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} gin.H "Not a coach"
// @Router /coach/pending-clients [get]
func (h *CoachHandler) GetPendingClients(c *gin.Context) {
	clients, err := h.coachService.PendingClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// ApproveClient godoc
// @Summary Approve a pending client
// @Description A client without any plan gets a placeholder plan from a random active coach.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param clientId path int true "Client ID"
// @Success 200 {object} gin.H "{message, client}"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 422 {object} gin.H "Client is not pending"
// @Router /coach/approve-client/{clientId} [post]
func (h *CoachHandler) ApproveClient(c *gin.Context) {
	clientID, ok := idParam(c, "clientId")
	if !ok {
		return
	}
	client, err := h.coachService.ApproveClient(c.Request.Context(), currentUser(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Client approved successfully",
		"client":  MapUserToResponse(client),
	})
}

// RejectClient godoc
// @Summary Reject a pending client
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param clientId path int true "Client ID"
// @Success 200 {object} gin.H "{message, client}"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 422 {object} gin.H "Client is not pending"
// @Router /coach/reject-client/{clientId} [post]
func (h *CoachHandler) RejectClient(c *gin.Context) {
	clientID, ok := idParam(c, "clientId")
	if !ok {
		return
	}
	client, err := h.coachService.RejectClient(c.Request.Context(), currentUser(c), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Client rejected",
		"client":  MapUserToResponse(client),
	})
}

// GetMyClients godoc
// @Summary List the coach's clients with plan and log counts
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ClientSummary
// @Router /coach/my-clients [get]
func (h *CoachHandler) GetMyClients(c *gin.Context) {
	clients, err := h.coachService.MyClients(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// ReviewLog godoc
// @Summary Approve or reject a submitted progress log
// @Description Rejecting requires feedback. Approving removes earlier feedback.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logId path int true "Progress log ID"
// @Param review body ReviewLogRequest true "action is approve or reject"
// @Success 200 {object} gin.H "{message, progressLog[, feedback]}"
// @Failure 403 {object} gin.H "Client is not linked to this coach"
// @Failure 404 {object} gin.H "Progress log not found"
// @Failure 422 {object} gin.H "Invalid action, missing feedback or already reviewed"
// @Router /coach/review-log/{logId} [post]
func (h *CoachHandler) ReviewLog(c *gin.Context) {
	logID, ok := idParam(c, "logId")
	if !ok {
		return
	}
	var req ReviewLogRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	entry, err := h.coachService.ReviewLog(c.Request.Context(), currentUser(c), logID, service.ReviewAction(req.Action), req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}

	if entry.Feedback == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Progress log approved",
			"progressLog": MapProgressLogToResponse(entry),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Progress log rejected with feedback",
		"progressLog": MapProgressLogToResponse(entry),
		"feedback":    MapFeedbackToResponse(entry.Feedback),
	})
}
