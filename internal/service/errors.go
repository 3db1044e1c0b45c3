package service

import (
	"errors"
	"strings"
)

// --- Error Definitions ---
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenGeneration     = errors.New("failed to generate authentication token")
	ErrHashingFailed       = errors.New("failed to hash password")

	ErrForbidden       = errors.New("forbidden")
	ErrAccountInactive = errors.New("account must be approved by a coach first")

	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")
	ErrPlanNotFound   = errors.New("plan not found")
	ErrNoActivePlan   = errors.New("no active plan found")
	ErrLogNotFound    = errors.New("progress log not found")

	ErrClientNotPending = errors.New("client has already been reviewed")
	ErrDuplicateWeek    = errors.New("progress log for this week already exists")
	ErrLogNotReviewable = errors.New("progress log has already been reviewed")
	ErrInvalidAction    = errors.New("invalid action, use 'approve' or 'reject'")
	ErrFeedbackRequired = errors.New("feedback is required when rejecting")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrFileTooLarge     = errors.New("file exceeds the 5MB limit")
	ErrNotAnImage       = errors.New("only image files are allowed")
	ErrEmptyUpload      = errors.New("no file uploaded")
)

// ValidationError carries one message per violated field rule.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// validationErr returns nil when msgs is empty.
func validationErr(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Errors: msgs}
}
