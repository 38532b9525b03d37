package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/app/repository"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"github.com/meditrack/meditrack-backend/pkg/mailer"
	"github.com/meditrack/meditrack-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetCode  = errors.New("invalid code or email, or code expired")
	ErrResetEmailNotSent = errors.New("email could not be sent")
)

// ResetCodeExpiry is how long a reset code stays usable.
const ResetCodeExpiry = 10 * time.Minute

const resetEmailSubject = "Password Reset Code"

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) (*model.User, string, error)
}

type passwordResetService struct {
	userRepo repository.UserRepository
	sender   mailer.Sender
	tokens   *TokenIssuer
	now      func() time.Time
}

// NewPasswordResetService wires the reset flow. now may be nil, in which
// case the wall clock in UTC is used.
func NewPasswordResetService(
	userRepo repository.UserRepository,
	sender mailer.Sender,
	tokens *TokenIssuer,
	now func() time.Time,
) PasswordResetService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &passwordResetService{
		userRepo: userRepo,
		sender:   sender,
		tokens:   tokens,
		now:      now,
	}
}

// RequestReset stores a fresh code for the user and mails it. A code that
// cannot be delivered is removed again before the error is returned.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := util.GenerateResetCode()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(ResetCodeExpiry)
	if err := s.userRepo.SetResetToken(ctx, user.ID, util.HashResetCode(code), expiresAt); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: resetEmailSubject,
		Text: fmt.Sprintf(
			"You are receiving this email because you (or someone else) requested a password reset.\n\n"+
				"Your password reset code is: %s\n\nThis code is valid for %d minutes.",
			code, int(ResetCodeExpiry/time.Minute)),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		// The request context may be the reason delivery failed.
		if clearErr := s.userRepo.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			logger.Error("Failed to roll back reset code", clearErr, map[string]interface{}{
				"user_id": user.ID,
			})
			return fmt.Errorf("%w: %w", ErrResetEmailNotSent, errors.Join(err, clearErr))
		}
		return fmt.Errorf("%w: %w", ErrResetEmailNotSent, err)
	}

	logger.Info("Password reset code sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": expiresAt,
	})
	return nil
}

// ResetPassword exchanges a valid code for a new password and a fresh token.
// Wrong, expired and already used codes are indistinguishable to the caller.
func (s *passwordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) (*model.User, string, error) {
	email = NormalizeEmail(email)
	hash := util.HashResetCode(code)
	now := s.now()

	user, err := s.userRepo.FindByResetToken(ctx, email, hash, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid or expired reset code", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidResetCode
		}
		return nil, "", fmt.Errorf("find reset code: %w", err)
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	consumed, err := s.userRepo.ConsumeResetToken(ctx, user.ID, hash, hashedPassword, now)
	if err != nil {
		return nil, "", fmt.Errorf("update password: %w", err)
	}
	if !consumed {
		logger.Warn("Reset code consumed concurrently", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidResetCode
	}
	user.PasswordHash = hashedPassword
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	logger.Info("Password reset successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}
