package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/app/repository"
	"github.com/meditrack/meditrack-backend/internal/db"
	"github.com/meditrack/meditrack-backend/pkg/mailer"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-services"

type testEnv struct {
	db              *gorm.DB
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	tokens          *TokenIssuer
	auth            AuthService
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	env := &testEnv{
		db:              testDB,
		userRepo:        repository.NewUserRepository(testDB),
		appointmentRepo: repository.NewAppointmentRepository(testDB),
		tokens:          NewTokenIssuer(testJWTSecret, time.Hour),
	}
	env.auth = NewAuthService(env.userRepo, env.appointmentRepo, env.tokens)
	return env
}

func patientInput(email string) SignupInput {
	return SignupInput{
		Name:     "Asha Patel",
		Email:    email,
		Password: "secret123",
		Phone:    "9990001111",
		Profile: model.PatientProfile{
			Age:              34,
			Disease:          "asthma",
			HospitalAdmitted: "City Hospital",
			EmergencyContact: model.EmergencyContact{Name: "Ravi", Phone: "9990002222", Relation: "brother"},
		},
	}
}

func doctorInput(name, email string) SignupInput {
	return SignupInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Phone:    "8880001111",
		Profile: model.DoctorProfile{
			Specialization:  "cardiology",
			WorkingHospital: "City Hospital",
			ShiftTiming:     model.ShiftTiming{Start: "09:00", End: "17:00"},
			LicenseNumber:   "LIC-" + name,
		},
	}
}

func (e *testEnv) signup(t *testing.T, input SignupInput) *model.User {
	user, _, err := e.auth.Signup(context.Background(), input)
	require.NoError(t, err)
	return user
}

// recordingSender captures outgoing mail and fails on demand.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) last() mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
