package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RolePatient UserRole = "patient"
	RoleDoctor  UserRole = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

type ShiftTiming struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// User is a patient or a doctor account. Only the profile columns of the
// user's own role are populated; see Profile.
type User struct {
	ID           string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"` // stored lower-cased
	PasswordHash string   `gorm:"not null" json:"-"`
	Phone        string   `gorm:"not null" json:"phone"`
	Role         UserRole `gorm:"type:varchar(20);not null;index" json:"role"`

	// patient
	Age              *int             `json:"age,omitempty"`
	Disease          string           `json:"disease,omitempty"`
	HospitalAdmitted string           `json:"hospitalAdmitted,omitempty"`
	EmergencyContact EmergencyContact `gorm:"embedded;embeddedPrefix:emergency_contact_" json:"-"`

	// doctor
	Specialization  string      `json:"specialization,omitempty"`
	WorkingHospital string      `json:"workingHospital,omitempty"`
	ShiftTiming     ShiftTiming `gorm:"embedded;embeddedPrefix:shift_" json:"-"`
	LicenseNumber   string      `json:"licenseNumber,omitempty"`

	// Hash of a pending one-time reset code and its expiry; both nil when no
	// reset is pending.
	ResetPasswordToken  *string    `gorm:"type:varchar(64);index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsPatient() bool { return u.Role == RolePatient }
func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor }
