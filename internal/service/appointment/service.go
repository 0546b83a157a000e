package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type AppointmentServicer interface {
	BookAppointment(ctx context.Context, clinicID, doctorID, patientID uuid.UUID, date time.Time) (*model.Appointment, error)
	RescheduleAppointment(ctx context.Context, clinicID, id uuid.UUID, newDate time.Time) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, clinicID, id uuid.UUID) error
	GetAppointment(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	ListAppointments(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

// Service is the booking engine. It owns the checks foreign keys cannot
// express: cross-tenant integrity, the availability window, and the
// slot-conflict rule.
type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
}

func NewService(repo repository.AppointmentRepository, doctorRepo repository.DoctorRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
	}
}

// BookAppointment validates tenant integrity and the doctor's window,
// then hands off to the repository, which repeats the window check
// under the per-doctor lock and runs it with the conflict check and
// insert as one atomic unit.
func (s *Service) BookAppointment(ctx context.Context, clinicID, doctorID, patientID uuid.UUID, date time.Time) (*model.Appointment, error) {
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if doctor.ClinicID != clinicID {
		return nil, apperrors.Forbidden("doctor does not belong to this clinic", nil)
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.Forbidden("patient does not belong to this clinic", nil)
	}

	if !doctor.IsWithinAvailability(date) {
		return nil, apperrors.OutOfAvailability("requested time is outside the doctor's availability window")
	}

	appointment := &model.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		ClinicID:  clinicID,
		Date:      date,
	}
	if err := s.repo.Book(ctx, appointment); err != nil {
		if apperrors.Is(err, apperrors.ErrSlotTaken) || apperrors.Is(err, apperrors.ErrOutOfAvailability) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	return appointment, nil
}

// RescheduleAppointment re-runs the availability and conflict checks
// against the new date, ignoring the appointment's own prior slot.
func (s *Service) RescheduleAppointment(ctx context.Context, clinicID, id uuid.UUID, newDate time.Time) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctorRepo.Get(ctx, appointment.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if !doctor.IsWithinAvailability(newDate) {
		return nil, apperrors.OutOfAvailability("requested time is outside the doctor's availability window")
	}

	appointment.Date = newDate
	if err := s.repo.Reschedule(ctx, appointment); err != nil {
		if apperrors.Is(err, apperrors.ErrSlotTaken) || apperrors.Is(err, apperrors.ErrOutOfAvailability) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) CancelAppointment(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.GetAppointment(ctx, clinicID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appointment.ClinicID != clinicID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appointment, nil
}

func (s *Service) ListAppointments(ctx context.Context, clinicID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, clinicID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
