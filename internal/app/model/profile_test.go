package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_ApplyTo(t *testing.T) {
	t.Run("Patient clears doctor fields", func(t *testing.T) {
		u := &User{Specialization: "cardiology", LicenseNumber: "LIC-1"}
		PatientProfile{
			Age:              30,
			Disease:          "flu",
			HospitalAdmitted: "no",
			EmergencyContact: EmergencyContact{Name: "John", Phone: "555-0101", Relation: "spouse"},
		}.ApplyTo(u)

		assert.Equal(t, RolePatient, u.Role)
		require.NotNil(t, u.Age)
		assert.Equal(t, 30, *u.Age)
		assert.Equal(t, "flu", u.Disease)
		assert.Equal(t, "spouse", u.EmergencyContact.Relation)
		assert.Empty(t, u.Specialization)
		assert.Empty(t, u.LicenseNumber)
	})

	t.Run("Doctor clears patient fields", func(t *testing.T) {
		age := 40
		u := &User{Age: &age, Disease: "flu"}
		DoctorProfile{
			Specialization:  "dermatology",
			WorkingHospital: "City General",
			ShiftTiming:     ShiftTiming{Start: "09:00", End: "17:00"},
			LicenseNumber:   "LIC-9",
		}.ApplyTo(u)

		assert.Equal(t, RoleDoctor, u.Role)
		assert.Nil(t, u.Age)
		assert.Empty(t, u.Disease)
		assert.Equal(t, "09:00", u.ShiftTiming.Start)
		assert.Equal(t, "LIC-9", u.LicenseNumber)
	})
}

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, RolePatient.Valid())
	assert.True(t, RoleDoctor.Valid())
	assert.False(t, UserRole("admin").Valid())
	assert.False(t, UserRole("").Valid())
}
