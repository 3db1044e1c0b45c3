package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/service"
)

// errorMapping ties a service sentinel to the response it produces.
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnprocessableEntity, "Invalid email or password"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "Invalid or expired token"},
	{service.ErrInvalidRefreshToken, http.StatusForbidden, "Invalid refresh token"},

	{service.ErrForbidden, http.StatusForbidden, "Access denied"},
	{service.ErrAccountInactive, http.StatusForbidden, "Your account must be approved by a coach first"},

	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrClientNotFound, http.StatusNotFound, "Client not found"},
	{service.ErrPlanNotFound, http.StatusNotFound, "Plan not found"},
	{service.ErrNoActivePlan, http.StatusNotFound, "No active plan found"},
	{service.ErrLogNotFound, http.StatusNotFound, "Progress log not found"},

	{service.ErrClientNotPending, http.StatusUnprocessableEntity, "Client has already been reviewed"},
	{service.ErrDuplicateWeek, http.StatusUnprocessableEntity, "Progress log for this week already exists"},
	{service.ErrLogNotReviewable, http.StatusUnprocessableEntity, "Progress log has already been reviewed"},
	{service.ErrInvalidAction, http.StatusUnprocessableEntity, "Invalid action. Use 'approve' or 'reject'"},
	{service.ErrFeedbackRequired, http.StatusUnprocessableEntity, "Feedback is required when rejecting"},
	{service.ErrWrongPassword, http.StatusUnprocessableEntity, "Current password is incorrect"},
	{service.ErrFileTooLarge, http.StatusUnprocessableEntity, "File size must not exceed 5MB"},
	{service.ErrNotAnImage, http.StatusUnprocessableEntity, "Only image files are allowed"},
	{service.ErrEmptyUpload, http.StatusBadRequest, "No file uploaded"},
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"message": message})
}

func abortWithValidation(c *gin.Context, errs []string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"status":  "fail",
		"message": "Validation Error",
		"errors":  errs,
	})
}

// respondError renders known service errors. Anything else is handed to
// ErrorHandler as a 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		abortWithValidation(c, verr.Errors)
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			abortWithError(c, m.status, m.message)
			return
		}
	}
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler is the outermost middleware. It recovers panics and renders
// errors left in c.Errors without a response. Details are only exposed
// outside production.
func ErrorHandler(log *logrus.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				log.WithFields(logrus.Fields{
					"panic":  r,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Error("panic recovered")
				body := gin.H{"message": "Internal server error"}
				if !production {
					body["error"] = fmt.Sprint(r)
					body["stack"] = stack
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		body := gin.H{"message": "Internal server error"}
		if !production {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// --- Request Binding ---

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into req. Rule violations and mistyped fields
// produce a 422 error list, malformed bodies a 400. It reports whether the
// handler may go on.
func bindJSON(c *gin.Context, req any) bool {
	return checkBind(c, c.ShouldBindJSON(req))
}

// bindOptionalJSON is bindJSON for requests whose body may be left out. An
// empty body binds as the zero request and is still validated.
func bindOptionalJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	return checkBind(c, err)
}

func checkBind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		abortWithValidation(c, fieldMessages(verrs))
		return false
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		abortWithValidation(c, []string{typeMessage(typeErr)})
		return false
	}
	abortWithError(c, http.StatusBadRequest, "Invalid request body")
	return false
}

func typeMessage(err *json.UnmarshalTypeError) string {
	var want string
	switch err.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		want = "an integer"
	case reflect.Float32, reflect.Float64:
		want = "a number"
	case reflect.String:
		want = "a string"
	case reflect.Bool:
		want = "a boolean"
	default:
		want = "a valid " + err.Type.Kind().String()
	}
	return fmt.Sprintf("%s must be %s", err.Field, want)
}

func fieldMessages(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return msgs
}
