package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/validation"
	"bonneaffaire/pkg/apperrors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService interface {
	CreateUser(ctx context.Context, username, email, password string, role models.UserRole) (*models.User, error)
	// Authenticate checks a back-office login and returns the active user.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// EnsureAdmin creates the bootstrap administrator unless it already exists.
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, username, email, password string, role models.UserRole) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	var fields []apperrors.FieldError
	if username == "" {
		fields = append(fields, apperrors.FieldError{Field: "username", Message: "username is required"})
	}
	if !validation.IsEmail(email) {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "email: invalid email format"})
	}
	if len(password) < 8 {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "password is too short (min 8)"})
	}
	if err := apperrors.NewValidationError(fields); err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         string(role),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !apperrors.IsNotFound(err) {
		return err
	}

	if _, err := s.CreateUser(ctx, username, email, password, models.SuperAdmin); err != nil {
		return err
	}
	s.logger.Info("admin user created", zap.String("username", username))
	return nil
}
