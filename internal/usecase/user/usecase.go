package user

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "gas-booking-service/internal/domain/user"
	"gas-booking-service/internal/usecase/validation"
	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

// Repository defines the interface for user data access operations.
// The lookups return nil, nil when no user matches.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Service implements registration and login.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new Service.
func New(r Repository, h PasswordHasher, log *zap.Logger) *Service {
	return &Service{repo: r, hasher: h, log: log, validate: validation.New()}
}

// Register stores a new account with a hashed password. Username and email
// must both be unused.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("registering user", zap.String("username", in.Username), zap.String("email", in.Email))

	if in.Password == "" {
		log.Warn("register rejected", zap.String("reason", "missing password"))
		return nil, apperrors.NewValidationError("password", "Password is required")
	}
	if err := validation.Struct(s.validate, in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	existing, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		log.Warn("username already exists", zap.String("username", in.Username))
		return nil, apperrors.NewAlreadyExistsError("user", "username already exists")
	}

	existing, err = s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, apperrors.NewAlreadyExistsError("user", "email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		log.Warn("failed to hash password", zap.Error(err))
		return nil, apperrors.NewValidationError("password", "Password is invalid")
	}

	// the unique indexes still guard against a concurrent registration
	id, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PhoneNo:      in.PhoneNo,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	log.Info("user registered", zap.Int64("id", id))
	return &RegisterResponse{ID: id}, nil
}

// Login checks the password for username. It issues nothing; callers must
// present credentials again for every later check.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	log := logger.WithContext(ctx, s.log)

	u, err := s.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		log.Info("login failed", zap.String("username", in.Username), zap.String("reason", "unknown user"))
		return nil, apperrors.NewNotFoundError("user", "User not found")
	}

	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		log.Info("login failed", zap.String("username", in.Username), zap.String("reason", "bad password"))
		return nil, apperrors.ErrInvalidCredentials
	}

	log.Info("login succeeded", zap.String("username", in.Username))
	return &LoginResponse{Username: u.Username}, nil
}
