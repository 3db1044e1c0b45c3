package domain

import "time"

// Feedback is the coach's explanation attached to a rejected progress log.
// There is at most one per log.
type Feedback struct {
	ID            uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	ProgressLogID uint      `gorm:"uniqueIndex;not null" bson:"progressLogId" json:"progressLogId"`
	CoachID       uint      `gorm:"not null;index" bson:"coachId" json:"coachId"`
	Text          string    `gorm:"column:feedback;type:text;not null" bson:"feedback" json:"feedback"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`

	Coach *User `gorm:"foreignKey:CoachID" bson:"-" json:"coach,omitempty"`
}
