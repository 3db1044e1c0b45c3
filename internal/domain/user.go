package domain

import (
	"strings"
	"time"
)

// Role distinguishes coaches from clients.
type Role string

const (
	RoleCoach  Role = "coach"
	RoleClient Role = "client"
)

// UserStatus tracks where a user is in the approval workflow.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusRejected UserStatus = "rejected"
)

// User represents an account in the system (either a Coach or a Client).
type User struct {
	ID             uint       `gorm:"primaryKey" bson:"_id" json:"id"`
	FirstName      string     `gorm:"not null" bson:"firstName" json:"firstName"`
	LastName       string     `gorm:"not null" bson:"lastName" json:"lastName"`
	Email          string     `gorm:"uniqueIndex;not null;size:255" bson:"email" json:"email"`
	PasswordHash   string     `gorm:"column:password;not null" bson:"password" json:"-"` // Never expose via JSON
	Role           Role       `gorm:"type:varchar(16);not null;default:client;index" bson:"role" json:"role"`
	Status         UserStatus `gorm:"type:varchar(16);not null;default:pending;index" bson:"status" json:"status"`
	RefreshToken   *string    `gorm:"type:text" bson:"refreshToken,omitempty" json:"-"`
	ProfilePicture *string    `gorm:"type:text" bson:"profilePicture,omitempty" json:"profilePicture"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DefaultStatusFor returns the status a freshly registered user starts in.
// Coaches are trusted immediately, clients wait for a coach to approve them.
func DefaultStatusFor(role Role) UserStatus {
	if role == RoleCoach {
		return StatusActive
	}
	return StatusPending
}

// SplitName breaks a single display name into first and last name.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
