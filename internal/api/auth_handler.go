package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

// RegisterRequest accepts either firstName/lastName or a single name.
// Field rules are checked by the service so all violations are reported together.
type RegisterRequest struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

type RefreshRequest struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func mapAuthResult(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:         MapUserToResponse(result.User),
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
	}
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user (Coach or Client)
// @Description Coaches start active, clients start pending until a coach approves them.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 422 {object} gin.H "Validation error (including email already in use)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapAuthResult(result))
}

// Login godoc
// @Summary Log in with email and password
// @Tags Users
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 422 {object} gin.H "Invalid email or password"
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapAuthResult(result))
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Description The stored refresh token is rotated. Any mismatch is answered with 403.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "User id, email and current refresh token"
// @Success 200 {object} TokenResponse
// @Failure 403 {object} gin.H "Unauthorized"
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusForbidden, "Unauthorized")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.ID, req.Email, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			abortWithError(c, http.StatusForbidden, "Unauthorized")
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: pair.Token, RefreshToken: pair.RefreshToken})
}
