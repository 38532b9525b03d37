package repository

import (
	"context"
	"testing"
	"time"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewUserRepository(testDB)
}

func newPatient(email string) *model.User {
	u := &model.User{
		Name:         "Asha Patel",
		Email:        email,
		PasswordHash: "hash",
		Phone:        "9990001111",
	}
	model.PatientProfile{
		Age:              34,
		Disease:          "asthma",
		EmergencyContact: model.EmergencyContact{Name: "Ravi", Phone: "9990002222", Relation: "brother"},
	}.ApplyTo(u)
	return u
}

func newDoctor(name, email string) *model.User {
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Phone:        "8880001111",
	}
	model.DoctorProfile{
		Specialization:  "cardiology",
		WorkingHospital: "City Hospital",
		ShiftTiming:     model.ShiftTiming{Start: "09:00", End: "17:00"},
		LicenseNumber:   "LIC-1",
	}.ApplyTo(u)
	return u
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newPatient("asha@example.com")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", found.Email)
	require.NotNil(t, found.Age)
	assert.Equal(t, 34, *found.Age)
	assert.Equal(t, "Ravi", found.EmergencyContact.Name)
	assert.Empty(t, found.Specialization)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPatient("dup@example.com")))

	err := repo.Create(ctx, newDoctor("Dr. Dup", "dup@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newPatient("find@example.com")
	require.NoError(t, repo.Create(ctx, user))

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "Existing email", email: "find@example.com"},
		{name: "Unknown email", email: "missing@example.com", wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(ctx, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
		})
	}
}

func TestUserRepository_FindByRole(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newDoctor("Dr. Zed", "zed@example.com")))
	require.NoError(t, repo.Create(ctx, newDoctor("Dr. Amy", "amy@example.com")))
	require.NoError(t, repo.Create(ctx, newPatient("p@example.com")))

	doctors, err := repo.FindByRole(ctx, model.RoleDoctor, DirectoryColumns...)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. Amy", doctors[0].Name)
	assert.Equal(t, "cardiology", doctors[0].Specialization)
	assert.Equal(t, "09:00", doctors[0].ShiftTiming.Start)
	// outside the projection
	assert.Empty(t, doctors[0].Email)
	assert.Empty(t, doctors[0].PasswordHash)
	assert.Empty(t, doctors[0].LicenseNumber)
}

func TestUserRepository_FindByIDsAndRole(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	doctor := newDoctor("Dr. Amy", "amy@example.com")
	patient := newPatient("p@example.com")
	require.NoError(t, repo.Create(ctx, doctor))
	require.NoError(t, repo.Create(ctx, patient))

	users, err := repo.FindByIDsAndRole(ctx, []string{doctor.ID, patient.ID}, model.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, doctor.ID, users[0].ID)

	users, err = repo.FindByIDsAndRole(ctx, nil, model.RoleDoctor)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_ResetTokenLifecycle(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newPatient("reset@example.com")
	require.NoError(t, repo.Create(ctx, user))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expire := now.Add(10 * time.Minute)
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "hash-1", expire))

	t.Run("Matches before expiry", func(t *testing.T) {
		found, err := repo.FindByResetToken(ctx, "reset@example.com", "hash-1", now)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("Wrong hash", func(t *testing.T) {
		_, err := repo.FindByResetToken(ctx, "reset@example.com", "hash-2", now)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Expired", func(t *testing.T) {
		_, err := repo.FindByResetToken(ctx, "reset@example.com", "hash-1", expire.Add(time.Second))
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Consume once", func(t *testing.T) {
		ok, err := repo.ConsumeResetToken(ctx, user.ID, "hash-1", "new-hash", now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ConsumeResetToken(ctx, user.ID, "hash-1", "other-hash", now)
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", stored.PasswordHash)
		assert.Nil(t, stored.ResetPasswordToken)
		assert.Nil(t, stored.ResetPasswordExpire)
	})
}

func TestUserRepository_ConsumeExpiredToken(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newPatient("late@example.com")
	require.NoError(t, repo.Create(ctx, user))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "hash-1", now.Add(-time.Minute)))

	ok, err := repo.ConsumeResetToken(ctx, user.ID, "hash-1", "new-hash", now)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestUserRepository_ClearResetToken(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newPatient("clear@example.com")
	require.NoError(t, repo.Create(ctx, user))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "hash-1", now.Add(10*time.Minute)))
	require.NoError(t, repo.ClearResetToken(ctx, user.ID))

	_, err := repo.FindByResetToken(ctx, "clear@example.com", "hash-1", now)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_SetResetTokenUnknownUser(t *testing.T) {
	_, repo := setupUserTest(t)

	err := repo.SetResetToken(context.Background(), "missing", "hash", time.Now().UTC())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
