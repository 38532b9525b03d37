package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrDuplicateKey reports a unique index violation, i.e. an email that is
// already registered.
var ErrDuplicateKey = errors.New("duplicate key")

// DirectoryColumns is the public doctor listing projection.
var DirectoryColumns = []string{
	"name", "specialization", "working_hospital", "phone", "shift_start", "shift_end",
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByRole(ctx context.Context, role model.UserRole, columns ...string) ([]model.User, error)
	FindByIDsAndRole(ctx context.Context, ids []string, role model.UserRole, columns ...string) ([]model.User, error)

	SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	FindByResetToken(ctx context.Context, email, tokenHash string, now time.Time) (*model.User, error)
	ConsumeResetToken(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	logger.Debug("Creating user in database", logger.Fields{
		"email": user.Email,
		"role":  user.Role,
	})

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			logger.Warn("User email already exists in database", logger.Fields{
				"email": user.Email,
			})
			return ErrDuplicateKey
		}
		logger.Error("Failed to create user in database", err, logger.Fields{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", logger.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	logger.Debug("Finding user by ID in database", logger.Fields{
		"user_id": id,
	})

	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		logLookupError("Failed to find user by ID in database", err, logger.Fields{"user_id": id})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", logger.Fields{
		"email": email,
	})

	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		logLookupError("Failed to find user by email in database", err, logger.Fields{"email": email})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByRole(ctx context.Context, role model.UserRole, columns ...string) ([]model.User, error) {
	var users []model.User
	query := r.db.WithContext(ctx).Where("role = ?", role).Order("name")
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	if err := query.Find(&users).Error; err != nil {
		logger.Error("Failed to list users by role", err, logger.Fields{"role": role})
		return nil, err
	}

	logger.Debug("Users listed by role", logger.Fields{
		"role":  role,
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) FindByIDsAndRole(ctx context.Context, ids []string, role model.UserRole, columns ...string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	var users []model.User
	query := r.db.WithContext(ctx).Where("id IN ? AND role = ?", ids, role).Order("name")
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	if err := query.Find(&users).Error; err != nil {
		logger.Error("Failed to list users by IDs", err, logger.Fields{
			"role":     role,
			"id_count": len(ids),
		})
		return nil, err
	}
	return users, nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id, tokenHash string, expire time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token":  tokenHash,
		"reset_password_expire": expire,
	})
	if result.Error != nil {
		logger.Error("Failed to store reset token", result.Error, logger.Fields{"user_id": id})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Reset token stored", logger.Fields{
		"user_id":    id,
		"expires_at": expire,
	})
	return nil
}

func (r *userRepository) ClearResetToken(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token":  nil,
		"reset_password_expire": nil,
	}).Error
	if err != nil {
		logger.Error("Failed to clear reset token", err, logger.Fields{"user_id": id})
		return err
	}

	logger.Debug("Reset token cleared", logger.Fields{"user_id": id})
	return nil
}

func (r *userRepository) FindByResetToken(ctx context.Context, email, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND reset_password_token = ? AND reset_password_expire > ?", email, tokenHash, now).
		First(&user).Error
	if err != nil {
		logLookupError("Failed to find user by reset token", err, logger.Fields{"email": email})
		return nil, err
	}
	return &user, nil
}

// ConsumeResetToken sets the new password and clears the reset state in one
// statement, guarded by the same predicate FindByResetToken uses. It reports
// false when the code was already used or has expired in the meantime.
func (r *userRepository) ConsumeResetToken(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND reset_password_token = ? AND reset_password_expire > ?", id, tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":         passwordHash,
			"reset_password_token":  nil,
			"reset_password_expire": nil,
		})
	if result.Error != nil {
		logger.Error("Failed to consume reset token", result.Error, logger.Fields{"user_id": id})
		return false, result.Error
	}

	consumed := result.RowsAffected == 1
	logger.Debug("Reset token consume attempted", logger.Fields{
		"user_id":  id,
		"consumed": consumed,
	})
	return consumed, nil
}

// logLookupError keeps not-found lookups out of the error log.
func logLookupError(msg string, err error, fields logger.Fields) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug(msg, fields)
		return
	}
	logger.Error(msg, err, fields)
}

// isDuplicateKey recognises unique violations from the translated gorm error
// and, as a fallback, from postgres and sqlite driver messages.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
