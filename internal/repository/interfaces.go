package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles principals and their clinic memberships.
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error
		RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error
		HasAccess(ctx context.Context, userID, clinicID uuid.UUID) (bool, error)
		ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
		ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Rename(ctx context.Context, clinic *model.Clinic) error
		// Delete removes the clinic; memberships, doctors, patients and
		// appointments go with it in the same statement via FK cascade.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
		Delete(ctx context.Context, id uuid.UUID) error
		// UpdateAvailability overwrites the doctor's window atomically,
		// failing with Conflict when a future appointment would fall
		// outside the new window.
		UpdateAvailability(ctx context.Context, doctor *model.Doctor) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AppointmentRepository interface {
		// Book inserts the appointment, failing with SlotTaken when the
		// doctor already holds the slot. Conflict check and insert run
		// under a per-doctor lock so concurrent bookings serialize.
		Book(ctx context.Context, appointment *model.Appointment) error
		// Reschedule moves the appointment to its new date under the
		// same per-doctor lock, ignoring the row's own prior slot.
		Reschedule(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
