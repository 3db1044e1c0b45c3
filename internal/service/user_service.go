package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
	"mjnutrafit/coaching-api/internal/storage"
)

// MaxPictureSize is the largest accepted profile picture, in bytes.
const MaxPictureSize = 5 << 20

// ProfileUpdate holds the optional fields of a profile edit. Nil or blank
// fields keep their current value.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

type UserService interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	// UploadProfilePicture stores an image of at most MaxPictureSize bytes and
	// replaces the user's previous picture.
	UploadProfilePicture(ctx context.Context, userID uint, file io.Reader) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	images   storage.ImageStore
	folder   string
	log      *logrus.Logger
}

// NewUserService creates a new instance of userService. Pictures are stored
// under folder.
func NewUserService(userRepo repository.UserRepository, images storage.ImageStore, folder string, log *logrus.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		images:   images,
		folder:   strings.Trim(folder, "/"),
		log:      log,
	}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func nonBlank(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*domain.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v, ok := nonBlank(in.FirstName); ok {
		user.FirstName = v
	}
	if v, ok := nonBlank(in.LastName); ok {
		user.LastName = v
	}
	if v, ok := nonBlank(in.Email); ok {
		email := domain.NormalizeEmail(v)
		if validate.Var(email, "email") != nil {
			return nil, &ValidationError{Errors: []string{"Must be a valid email address"}}
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, &ValidationError{Errors: []string{"Email already in use"}}
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return nil, err
			}
			user.Email = email
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, &ValidationError{Errors: []string{"Email already in use"}}
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return &ValidationError{Errors: []string{"Current password and new password are required"}}
	}
	if err := validationErr(validatePassword("New password", newPassword)); err != nil {
		return err
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(ctx, user)
}

func (s *userService) UploadProfilePicture(ctx context.Context, userID uint, file io.Reader) (*domain.User, error) {
	// 1. Read at most one byte past the limit to detect oversized files
	data, err := io.ReadAll(io.LimitReader(file, MaxPictureSize+1))
	if err != nil {
		return nil, err
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyUpload
	case len(data) > MaxPictureSize:
		return nil, ErrFileTooLarge
	}

	// 2. Trust the content, not the client-declared type
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotAnImage
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3. Upload the new image before touching the old one
	key := uuid.NewString() + mtype.Extension()
	if s.folder != "" {
		key = s.folder + "/" + key
	}
	url, err := s.images.Upload(ctx, key, mtype.String(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	// 4. Best-effort removal of the previous picture
	if user.ProfilePicture != nil && *user.ProfilePicture != "" {
		if err := s.images.Delete(ctx, *user.ProfilePicture); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"userId": user.ID,
				"url":    *user.ProfilePicture,
			}).Warn("failed to delete old profile picture")
		}
	}

	user.ProfilePicture = &url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
