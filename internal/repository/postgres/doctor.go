package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

const doctorColumns = `
	id, clinic_id, name, avatar_image_url, specialty,
	available_from_week_day, available_to_week_day,
	available_from_hour, available_to_hour,
	appointment_price, created_at, updated_at
`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, clinic_id, name, avatar_image_url, specialty,
			available_from_week_day, available_to_week_day,
			available_from_hour, available_to_hour,
			appointment_price, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.ClinicID,
		doctor.Name,
		doctor.AvatarImageURL,
		doctor.Specialty,
		doctor.AvailableFromWeekDay,
		doctor.AvailableToWeekDay,
		doctor.AvailableFromHour,
		doctor.AvailableToHour,
		doctor.AppointmentPrice,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		// The only constraint on this insert is the clinic FK.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return apperrors.NotFound("clinic", err)
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, translateError(err, "doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE clinic_id = $1 ORDER BY name ASC`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

// UpdateAvailability rewrites the doctor's window under the per-doctor
// lock. Every future appointment must still fit the new window; one
// that does not aborts the whole update with Conflict.
func (r *doctorRepository) UpdateAvailability(ctx context.Context, doctor *model.Doctor) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockDoctor(ctx, tx, doctor.ID); err != nil {
			return fmt.Errorf("failed to lock doctor: %w", err)
		}

		var future []time.Time
		err := tx.SelectContext(ctx, &future,
			`SELECT date FROM appointments WHERE doctor_id = $1 AND date >= $2`,
			doctor.ID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to load future appointments: %w", err)
		}

		for _, date := range future {
			if !doctor.IsWithinAvailability(date) {
				return apperrors.Conflict(
					fmt.Sprintf("appointment at %s falls outside the new availability window", date.Format(time.RFC3339)),
					nil,
				)
			}
		}

		doctor.UpdatedAt = time.Now()
		result, err := tx.ExecContext(ctx, `
			UPDATE doctors
			SET available_from_week_day = $1, available_to_week_day = $2,
			    available_from_hour = $3, available_to_hour = $4,
			    updated_at = $5
			WHERE id = $6
		`,
			doctor.AvailableFromWeekDay,
			doctor.AvailableToWeekDay,
			doctor.AvailableFromHour,
			doctor.AvailableToHour,
			doctor.UpdatedAt,
			doctor.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update availability: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("doctor", nil)
		}
		return nil
	})
}
