package domain

import (
	"fmt"
	"time"
)

// LogStatus type for the progress log review lifecycle.
type LogStatus string

const (
	LogSubmitted LogStatus = "submitted" // Client sent the weekly report
	LogApproved  LogStatus = "approved"  // Coach accepted it
	LogRejected  LogStatus = "rejected"  // Coach sent it back with feedback
)

// WeekLayout is the wire format of ProgressLog.WeekStartDate.
const WeekLayout = "2006-01-02"

// ProgressLog is a client's weekly self-report.
type ProgressLog struct {
	ID                uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	ClientID          uint      `gorm:"not null;index:idx_progress_client_week" bson:"clientId" json:"clientId"`
	WeekStartDate     time.Time `gorm:"type:date;not null;index:idx_progress_client_week" bson:"weekStartDate" json:"weekStartDate"`
	Weight            float64   `gorm:"type:decimal(5,2);not null" bson:"weight" json:"weight"`
	MealAdherence     int       `gorm:"not null" bson:"mealAdherence" json:"mealAdherence"`
	WorkoutCompletion int       `gorm:"not null" bson:"workoutCompletion" json:"workoutCompletion"`
	Notes             *string   `gorm:"type:text" bson:"notes,omitempty" json:"notes"`
	Status            LogStatus `gorm:"type:varchar(16);not null;default:submitted;index" bson:"status" json:"status"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`

	Client   *User     `gorm:"foreignKey:ClientID" bson:"-" json:"client,omitempty"`
	Feedback *Feedback `gorm:"foreignKey:ProgressLogID" bson:"-" json:"feedback,omitempty"`
}

// Validate checks the field rules of a log and returns one message per violation.
func (l *ProgressLog) Validate() []string {
	var errs []string
	if l.WeekStartDate.IsZero() {
		errs = append(errs, "Week start date is required")
	}
	if l.Weight < 0 {
		errs = append(errs, "Weight must be positive")
	} else if l.Weight >= 1000 {
		errs = append(errs, "Weight must be less than 1000")
	}
	if l.MealAdherence < 0 || l.MealAdherence > 100 {
		errs = append(errs, "Meal adherence must be between 0 and 100")
	}
	if l.WorkoutCompletion < 0 || l.WorkoutCompletion > 100 {
		errs = append(errs, "Workout completion must be between 0 and 100")
	}
	return errs
}

// NormalizeWeek truncates t to midnight UTC of the same calendar day.
func NormalizeWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseWeek accepts either a plain date or an RFC 3339 timestamp.
func ParseWeek(s string) (time.Time, error) {
	if t, err := time.Parse(WeekLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week start date %q", s)
	}
	return NormalizeWeek(t), nil
}
