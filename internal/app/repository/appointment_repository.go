package repository

import (
	"context"

	"github.com/meditrack/meditrack-backend/internal/app/model"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"gorm.io/gorm"
)

// AppointmentRepository reads the patient/doctor relation that backs the
// "my doctors" and "my patients" lists.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	DistinctDoctorIDs(ctx context.Context, patientID string) ([]string, error)
	DistinctPatientIDs(ctx context.Context, doctorID string) ([]string, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		logger.Error("Failed to create appointment in database", err, logger.Fields{
			"patient_id": appointment.PatientID,
			"doctor_id":  appointment.DoctorID,
		})
		return err
	}
	return nil
}

func (r *appointmentRepository) DistinctDoctorIDs(ctx context.Context, patientID string) ([]string, error) {
	return r.distinct(ctx, "doctor_id", "patient_id", patientID)
}

func (r *appointmentRepository) DistinctPatientIDs(ctx context.Context, doctorID string) ([]string, error) {
	return r.distinct(ctx, "patient_id", "doctor_id", doctorID)
}

func (r *appointmentRepository) distinct(ctx context.Context, column, filter, value string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where(filter+" = ?", value).
		Distinct(column).
		Pluck(column, &ids).Error
	if err != nil {
		logger.Error("Failed to list appointment counterparts", err, logger.Fields{
			"column": column,
			filter:   value,
		})
		return nil, err
	}

	logger.Debug("Appointment counterparts listed", logger.Fields{
		filter:  value,
		"count": len(ids),
	})
	return ids, nil
}
