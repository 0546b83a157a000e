package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `id, patient_id, doctor_id, clinic_id, date, created_at, updated_at`

// checkAvailability re-reads the doctor inside the transaction and
// validates the requested date against the committed window. Callers
// hold the advisory lock, so the window cannot change underneath the
// check before the transaction commits.
func checkAvailability(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, date time.Time) error {
	var doctor model.Doctor
	err := tx.GetContext(ctx, &doctor,
		`SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, doctorID)
	if err != nil {
		return translateError(err, "doctor")
	}
	if !doctor.IsWithinAvailability(date) {
		return apperrors.OutOfAvailability("requested time is outside the doctor's availability window")
	}
	return nil
}

// Book runs the availability re-check, the slot-conflict check and the
// insert as one unit under the per-doctor advisory lock. Of two
// concurrent bookings for the same slot, exactly one commits; the
// other sees SlotTaken. The doctor row is re-read after the lock so an
// availability rewrite that committed since the caller's read cannot
// be bypassed by a booking validated against the stale window.
func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockDoctor(ctx, tx, appointment.DoctorID); err != nil {
			return fmt.Errorf("failed to lock doctor: %w", err)
		}
		if err := checkAvailability(ctx, tx, appointment.DoctorID, appointment.Date); err != nil {
			return err
		}

		var taken bool
		err := tx.GetContext(ctx, &taken,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND date = $2)`,
			appointment.DoctorID, appointment.Date)
		if err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if taken {
			return apperrors.SlotTaken("doctor already has an appointment at this time")
		}

		appointment.ID = uuid.New()
		appointment.CreatedAt = time.Now()
		appointment.UpdatedAt = appointment.CreatedAt

		_, err = tx.ExecContext(ctx, `
			INSERT INTO appointments (id, patient_id, doctor_id, clinic_id, date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.ClinicID,
			appointment.Date,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", translateError(err, "appointment"))
		}
		return nil
	})
}

// Reschedule moves the row to its new date, re-checking the window
// under the lock and excluding the row itself from the conflict check.
func (r *appointmentRepository) Reschedule(ctx context.Context, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockDoctor(ctx, tx, appointment.DoctorID); err != nil {
			return fmt.Errorf("failed to lock doctor: %w", err)
		}
		if err := checkAvailability(ctx, tx, appointment.DoctorID, appointment.Date); err != nil {
			return err
		}

		var taken bool
		err := tx.GetContext(ctx, &taken,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND date = $2 AND id <> $3)`,
			appointment.DoctorID, appointment.Date, appointment.ID)
		if err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if taken {
			return apperrors.SlotTaken("doctor already has an appointment at this time")
		}

		appointment.UpdatedAt = time.Now()
		result, err := tx.ExecContext(ctx,
			`UPDATE appointments SET date = $1, updated_at = $2 WHERE id = $3`,
			appointment.Date, appointment.UpdatedAt, appointment.ID)
		if err != nil {
			return fmt.Errorf("failed to reschedule appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, translateError(err, "appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE clinic_id = $1`
	args := []interface{}{clinicID}
	argCount := 2

	if filters != nil {
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if !filters.From.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if !filters.To.IsZero() {
			query += fmt.Sprintf(" AND date < $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY date ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}
