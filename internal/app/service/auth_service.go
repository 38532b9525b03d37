package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/app/repository"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"github.com/meditrack/meditrack-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileRequired    = errors.New("role profile is required")
)

// SignupInput is a validated signup request. Profile decides the role.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Profile  model.Profile
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetAllDoctors(ctx context.Context) ([]model.User, error)
	GetMyDoctors(ctx context.Context, patientID string) ([]model.User, error)
	GetPatients(ctx context.Context, doctorID string) ([]model.User, error)
}

type authService struct {
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	tokens          *TokenIssuer
}

func NewAuthService(
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	tokens *TokenIssuer,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		tokens:          tokens,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*model.User, string, error) {
	if input.Profile == nil {
		return nil, "", ErrProfileRequired
	}
	email := NormalizeEmail(input.Email)

	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
		"role":  input.Profile.Role(),
	})

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        strings.TrimSpace(input.Phone),
	}
	input.Profile.ApplyTo(user)

	// Uniqueness is enforced by the index on users.email.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			logger.Warn("Signup failed: email already exists", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = NormalizeEmail(email)

	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return user, token, nil
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *authService) GetAllDoctors(ctx context.Context) ([]model.User, error) {
	doctors, err := s.userRepo.FindByRole(ctx, model.RoleDoctor, repository.DirectoryColumns...)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// GetMyDoctors resolves the doctors a patient has appointments with.
func (s *authService) GetMyDoctors(ctx context.Context, patientID string) ([]model.User, error) {
	ids, err := s.appointmentRepo.DistinctDoctorIDs(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointment doctors: %w", err)
	}
	doctors, err := s.userRepo.FindByIDsAndRole(ctx, ids, model.RoleDoctor, repository.DirectoryColumns...)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	return doctors, nil
}

// GetPatients resolves the patients with appointments at a doctor. Full
// profiles are returned; the handler never serializes credential fields.
func (s *authService) GetPatients(ctx context.Context, doctorID string) ([]model.User, error) {
	ids, err := s.appointmentRepo.DistinctPatientIDs(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointment patients: %w", err)
	}
	patients, err := s.userRepo.FindByIDsAndRole(ctx, ids, model.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return patients, nil
}
