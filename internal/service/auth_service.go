package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/metrics"
	"mjnutrafit/coaching-api/internal/repository"
)

var validate = validator.New()

const (
	minPasswordLen = 6
	maxPasswordLen = 50
)

// RegisterInput is accepted by Register. Name is split into first and last
// name when those are empty.
type RegisterInput struct {
	FirstName string
	LastName  string
	Name      string
	Email     string
	Password  string
	Role      domain.Role
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User *domain.User
	TokenPair
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves an access token to the user it was issued to.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Refresh(ctx context.Context, userID uint, email, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	log      *logrus.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenIssuer, log *logrus.Logger) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, log: log}
}

func validatePassword(field, password string) []string {
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return []string{field + " must be between 6 and 50 characters"}
	}
	return nil
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// 1. Validate input
	if in.FirstName == "" && in.LastName == "" && in.Name != "" {
		in.FirstName, in.LastName = domain.SplitName(in.Name)
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = domain.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleClient
	}

	var msgs []string
	if in.FirstName == "" {
		msgs = append(msgs, "First name is required")
	}
	if in.LastName == "" {
		msgs = append(msgs, "Last name is required")
	}
	if validate.Var(in.Email, "required,email") != nil {
		msgs = append(msgs, "Must be a valid email address")
	}
	msgs = append(msgs, validatePassword("Password", in.Password)...)
	if in.Role != domain.RoleClient && in.Role != domain.RoleCoach {
		msgs = append(msgs, "Role must be either client or coach")
	}
	if err := validationErr(msgs); err != nil {
		return nil, err
	}

	// 2. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// 3. Save the user; the unique index settles concurrent registrations
	user := &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
		Status:       domain.DefaultStatusFor(in.Role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, &ValidationError{Errors: []string{"Email already in use"}}
		}
		return nil, err
	}

	// 4. Issue tokens and remember the refresh token
	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	metrics.RecordRegistration(string(user.Role))
	s.log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("user registered")
	return result, nil
}

// Login handles user authentication and token generation. Unknown email and
// wrong password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Refresh exchanges a valid refresh token for a new pair. The token must
// verify against the refresh secret, name the same user and equal the stored
// token; the stored token is then rotated.
func (s *authService) Refresh(ctx context.Context, userID uint, email, refreshToken string) (*TokenPair, error) {
	if userID == 0 || email == "" || refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.UserID != user.ID ||
		claims.Email != user.Email ||
		domain.NormalizeEmail(email) != user.Email {
		return nil, ErrInvalidRefreshToken
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &result.TokenPair, nil
}

// issue signs a new token pair and stores its refresh half on the user.
func (s *authService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		s.log.WithError(err).Error("token signing failed")
		return nil, ErrTokenGeneration
	}
	user.RefreshToken = &pair.RefreshToken
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}
