package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/service"
)

const pictureFormField = "profilePicture"

// UserHandler serves the signed-in user's own account.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CurrentUser godoc
// @Summary Get the signed-in user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H
// @Router /users/currentUser [get]
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update name or email of the signed-in user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} gin.H "{user}"
// @Failure 422 {object} gin.H "Validation error (email already in use)"
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": MapUserToResponse(user)})
}

// ChangePassword godoc
// @Summary Change the signed-in user's password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} gin.H
// @Failure 422 {object} gin.H "Missing fields, bad length or wrong current password"
// @Router /users/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), currentUser(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// UploadPicture godoc
// @Summary Upload or replace the profile picture
// @Description Multipart field "profilePicture", images up to 5MB.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param profilePicture formData file true "Image file"
// @Success 200 {object} gin.H "{message, user}"
// @Failure 400 {object} gin.H "No file uploaded"
// @Failure 422 {object} gin.H "Not an image or too large"
// @Router /users/upload-picture [post]
func (h *UserHandler) UploadPicture(c *gin.Context) {
	header, err := c.FormFile(pictureFormField)
	if err != nil {
		respondError(c, service.ErrEmptyUpload)
		return
	}
	if header.Size > service.MaxPictureSize {
		respondError(c, service.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer file.Close()

	user, err := h.userService.UploadProfilePicture(c.Request.Context(), currentUser(c).ID, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture uploaded successfully",
		"user":    MapUserToResponse(user),
	})
}
