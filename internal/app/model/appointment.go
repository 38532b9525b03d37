package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment links a patient to a doctor. It is owned by the scheduling
// side of the application; the auth side only reads the two references.
type Appointment struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PatientID   string    `gorm:"type:varchar(36);not null;index" json:"patientId"`
	DoctorID    string    `gorm:"type:varchar(36);not null;index" json:"doctorId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
