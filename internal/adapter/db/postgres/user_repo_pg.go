package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gas-booking-service/internal/domain/user"
	apperrors "gas-booking-service/pkg/errors"
	"gas-booking-service/pkg/logger"
)

// UserRepoPG implements the user Repository interface using GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"size:255;not null;uniqueIndex:idx_users_username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	PhoneNo      string    `gorm:"size:64;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PhoneNo:      m.PhoneNo,
		PasswordHash: m.PasswordHash,
	}
}

// Create inserts a new user. A username or email that is already taken
// yields an AlreadyExistsError.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}
	log := logger.WithContext(ctx, r.log)

	model := UserSchema{
		Username:     u.Username,
		Email:        u.Email,
		PhoneNo:      u.PhoneNo,
		PasswordHash: u.PasswordHash,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicateKey(err) {
			field := duplicateField(err, "users", "username", "email")
			log.Warn("duplicate user", zap.String("field", field), zap.String("username", u.Username))
			if field == "" {
				return 0, apperrors.NewAlreadyExistsError("user", "User already exists")
			}
			return 0, apperrors.NewAlreadyExistsError("user", field+" already exists")
		}
		log.Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return 0, apperrors.NewInternalError("failed to create user", err)
	}

	log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// GetByUsername returns nil, nil when no user has that username.
func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail returns nil, nil when no user has that email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepoPG) getBy(ctx context.Context, column, value string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.String(column, value))
		return nil, apperrors.NewInternalError("failed to get user by "+column, err)
	}
	return model.toDomain(), nil
}
