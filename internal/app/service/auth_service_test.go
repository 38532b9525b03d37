package service

import (
	"context"
	"testing"
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Signup(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	user, token, err := env.auth.Signup(ctx, patientInput("  Asha@Example.COM "))
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, model.RolePatient, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, util.VerifyPassword(user.PasswordHash, "secret123"))

	claims, err := util.ValidateToken(token, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, "patient", claims.Role)
}

func TestAuthService_SignupStoresOnlyRoleFields(t *testing.T) {
	env := setupServiceTest(t)

	doctor := env.signup(t, doctorInput("Dr. Amy", "amy@example.com"))

	stored, err := env.auth.GetUserByID(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, stored.Role)
	assert.Equal(t, "cardiology", stored.Specialization)
	assert.Nil(t, stored.Age)
	assert.Empty(t, stored.Disease)
	assert.Empty(t, stored.EmergencyContact.Name)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	env.signup(t, patientInput("dup@example.com"))

	tests := []struct {
		name  string
		input SignupInput
	}{
		{name: "Same email different role", input: doctorInput("Dr. Dup", "dup@example.com")},
		{name: "Same email different case", input: patientInput("DUP@example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := env.auth.Signup(ctx, tt.input)
			assert.ErrorIs(t, err, ErrEmailAlreadyExists)
			assert.Nil(t, user)
			assert.Empty(t, token)
		})
	}
}

func TestAuthService_SignupRequiresProfile(t *testing.T) {
	env := setupServiceTest(t)

	input := patientInput("p@example.com")
	input.Profile = nil
	_, _, err := env.auth.Signup(context.Background(), input)
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestAuthService_Login(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	registered := env.signup(t, patientInput("login@example.com"))

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid credentials", email: "login@example.com", password: "secret123"},
		{name: "Email case insensitive", email: "LOGIN@example.com", password: "secret123"},
		{name: "Wrong password", email: "login@example.com", password: "wrong-pass", wantErr: ErrInvalidCredentials},
		{name: "Unknown email", email: "nobody@example.com", password: "secret123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := env.auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAuthService_GetUserByIDNotFound(t *testing.T) {
	env := setupServiceTest(t)

	_, err := env.auth.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_GetAllDoctors(t *testing.T) {
	env := setupServiceTest(t)
	env.signup(t, doctorInput("Dr. Zed", "zed@example.com"))
	env.signup(t, doctorInput("Dr. Amy", "amy@example.com"))
	env.signup(t, patientInput("p@example.com"))

	doctors, err := env.auth.GetAllDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	for _, d := range doctors {
		assert.NotEmpty(t, d.Name)
		assert.Empty(t, d.PasswordHash)
		assert.Empty(t, d.Email)
	}
}

func TestAuthService_GetMyDoctorsAndPatients(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	amy := env.signup(t, doctorInput("Dr. Amy", "amy@example.com"))
	zed := env.signup(t, doctorInput("Dr. Zed", "zed@example.com"))
	env.signup(t, doctorInput("Dr. Unseen", "unseen@example.com"))
	asha := env.signup(t, patientInput("asha@example.com"))
	other := env.signup(t, patientInput("other@example.com"))

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, a := range []model.Appointment{
		{PatientID: asha.ID, DoctorID: amy.ID, ScheduledAt: at},
		{PatientID: asha.ID, DoctorID: amy.ID, ScheduledAt: at.Add(time.Hour)},
		{PatientID: asha.ID, DoctorID: zed.ID, ScheduledAt: at},
		{PatientID: other.ID, DoctorID: amy.ID, ScheduledAt: at},
	} {
		a := a
		require.NoError(t, env.appointmentRepo.Create(ctx, &a))
	}

	doctors, err := env.auth.GetMyDoctors(ctx, asha.ID)
	require.NoError(t, err)
	names := []string{}
	for _, d := range doctors {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Dr. Amy", "Dr. Zed"}, names)

	patients, err := env.auth.GetPatients(ctx, amy.ID)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	for _, p := range patients {
		assert.Equal(t, model.RolePatient, p.Role)
		require.NotNil(t, p.Age)
		assert.Equal(t, "Ravi", p.EmergencyContact.Name)
	}

	zedPatients, err := env.auth.GetPatients(ctx, zed.ID)
	require.NoError(t, err)
	assert.Len(t, zedPatients, 1)

	empty, err := env.auth.GetMyDoctors(ctx, "patient-without-appointments")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
