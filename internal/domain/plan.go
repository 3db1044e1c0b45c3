// internal/domain/plan.go
package domain

import "time"

// Placeholder texts used when a plan is created automatically on client approval.
const (
	PlaceholderDietText    = "Your personalized diet plan will be created by your coach."
	PlaceholderWorkoutText = "Your personalized workout plan will be created by your coach."
)

// Plan is the diet/workout text a coach assigns to a client.
// At most one plan per client is active at a time.
type Plan struct {
	ID          uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	CoachID     uint      `gorm:"not null;index" bson:"coachId" json:"coachId"`
	ClientID    uint      `gorm:"not null;index" bson:"clientId" json:"clientId"`
	DietText    string    `gorm:"type:text;not null" bson:"dietText" json:"dietText"`
	WorkoutText string    `gorm:"type:text;not null" bson:"workoutText" json:"workoutText"`
	IsActive    bool      `gorm:"not null;default:true" bson:"isActive" json:"isActive"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`

	Coach  *User `gorm:"foreignKey:CoachID" bson:"-" json:"coach,omitempty"`
	Client *User `gorm:"foreignKey:ClientID" bson:"-" json:"client,omitempty"`
}
