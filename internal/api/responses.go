package api

import (
	"time"

	"mjnutrafit/coaching-api/internal/domain"
)

// UserResponse excludes sensitive info like password hash and refresh token
type UserResponse struct {
	ID             uint              `json:"id"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Email          string            `json:"email"`
	Role           domain.Role       `json:"role"`
	Status         domain.UserStatus `json:"status"`
	ProfilePicture *string           `json:"profilePicture"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// UserSummary is the short form of a user embedded in other resources.
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type PlanResponse struct {
	ID          uint         `json:"id"`
	CoachID     uint         `json:"coachId"`
	ClientID    uint         `json:"clientId"`
	DietText    string       `json:"dietText"`
	WorkoutText string       `json:"workoutText"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Coach       *UserSummary `json:"coach,omitempty"`
	Client      *UserSummary `json:"client,omitempty"`
}

type FeedbackResponse struct {
	ID            uint         `json:"id"`
	ProgressLogID uint         `json:"progressLogId"`
	CoachID       uint         `json:"coachId"`
	Feedback      string       `json:"feedback"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Coach         *UserSummary `json:"coach,omitempty"`
}

// ProgressLogResponse renders weekStartDate as YYYY-MM-DD. Client name and
// email are filled in for coach views.
type ProgressLogResponse struct {
	ID                uint              `json:"id"`
	ClientID          uint              `json:"clientId"`
	WeekStartDate     domain.Date       `json:"weekStartDate"`
	Weight            float64           `json:"weight"`
	MealAdherence     int               `json:"mealAdherence"`
	WorkoutCompletion int               `json:"workoutCompletion"`
	Notes             *string           `json:"notes"`
	Status            domain.LogStatus  `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	ClientFirstName   string            `json:"clientFirstName,omitempty"`
	ClientLastName    string            `json:"clientLastName,omitempty"`
	ClientEmail       string            `json:"clientEmail,omitempty"`
	Feedback          *FeedbackResponse `json:"feedback"`
}

// --- Mappers ---

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           user.Role,
		Status:         user.Status,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func MapUsersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = MapUserToResponse(&users[i])
	}
	return resp
}

func mapUserSummary(user *domain.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{ID: user.ID, FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
}

func MapPlanToResponse(plan *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:          plan.ID,
		CoachID:     plan.CoachID,
		ClientID:    plan.ClientID,
		DietText:    plan.DietText,
		WorkoutText: plan.WorkoutText,
		IsActive:    plan.IsActive,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
		Coach:       mapUserSummary(plan.Coach),
		Client:      mapUserSummary(plan.Client),
	}
}

func MapPlansToResponse(plans []domain.Plan) []PlanResponse {
	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = MapPlanToResponse(&plans[i])
	}
	return resp
}

func MapFeedbackToResponse(fb *domain.Feedback) *FeedbackResponse {
	if fb == nil {
		return nil
	}
	return &FeedbackResponse{
		ID:            fb.ID,
		ProgressLogID: fb.ProgressLogID,
		CoachID:       fb.CoachID,
		Feedback:      fb.Text,
		CreatedAt:     fb.CreatedAt,
		UpdatedAt:     fb.UpdatedAt,
		Coach:         mapUserSummary(fb.Coach),
	}
}

func MapProgressLogToResponse(entry *domain.ProgressLog) ProgressLogResponse {
	resp := ProgressLogResponse{
		ID:                entry.ID,
		ClientID:          entry.ClientID,
		WeekStartDate:     domain.Date(entry.WeekStartDate),
		Weight:            entry.Weight,
		MealAdherence:     entry.MealAdherence,
		WorkoutCompletion: entry.WorkoutCompletion,
		Notes:             entry.Notes,
		Status:            entry.Status,
		CreatedAt:         entry.CreatedAt,
		UpdatedAt:         entry.UpdatedAt,
		Feedback:          MapFeedbackToResponse(entry.Feedback),
	}
	if entry.Client != nil {
		resp.ClientFirstName = entry.Client.FirstName
		resp.ClientLastName = entry.Client.LastName
		resp.ClientEmail = entry.Client.Email
	}
	return resp
}

func MapProgressLogsToResponse(logs []domain.ProgressLog) []ProgressLogResponse {
	resp := make([]ProgressLogResponse, len(logs))
	for i := range logs {
		resp[i] = MapProgressLogToResponse(&logs[i])
	}
	return resp
}
