package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type DoctorServicer interface {
	RegisterDoctor(ctx context.Context, clinicID uuid.UUID, req *model.RegisterDoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error)
	ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
	UpdateAvailability(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, clinicID, id uuid.UUID) error
}

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

type window struct {
	fromWeekDay int
	toWeekDay   int
	fromHour    model.TimeOfDay
	toHour      model.TimeOfDay
}

func parseWindow(fromWeekDay, toWeekDay int, fromHour, toHour string) (*window, error) {
	if fromWeekDay < 0 || fromWeekDay > 6 || toWeekDay < 0 || toWeekDay > 6 {
		return nil, apperrors.InvalidArgument("week days must be between 0 and 6", nil)
	}

	from, err := model.ParseTimeOfDay(fromHour)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid available_from_hour", err)
	}
	to, err := model.ParseTimeOfDay(toHour)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid available_to_hour", err)
	}
	if from >= to {
		return nil, apperrors.InvalidArgument("available_from_hour must be before available_to_hour", nil)
	}

	return &window{
		fromWeekDay: fromWeekDay,
		toWeekDay:   toWeekDay,
		fromHour:    from,
		toHour:      to,
	}, nil
}

func (s *Service) RegisterDoctor(ctx context.Context, clinicID uuid.UUID, req *model.RegisterDoctorRequest) (*model.Doctor, error) {
	w, err := parseWindow(req.AvailableFromWeekDay, req.AvailableToWeekDay, req.AvailableFromHour, req.AvailableToHour)
	if err != nil {
		return nil, err
	}
	if req.AppointmentPrice < 0 {
		return nil, apperrors.InvalidArgument("appointment price must not be negative", nil)
	}

	doctor := &model.Doctor{
		ClinicID:             clinicID,
		Name:                 req.Name,
		AvatarImageURL:       req.AvatarImageURL,
		Specialty:            req.Specialty,
		AvailableFromWeekDay: w.fromWeekDay,
		AvailableToWeekDay:   w.toWeekDay,
		AvailableFromHour:    w.fromHour,
		AvailableToHour:      w.toHour,
		AppointmentPrice:     req.AppointmentPrice,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to register doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, clinicID, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if doctor.ClinicID != clinicID {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// UpdateAvailability overwrites the recurring window. The repository
// rejects the rewrite with Conflict when any future appointment would
// fall outside the new window; callers must reschedule or cancel those
// first.
func (s *Service) UpdateAvailability(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.Doctor, error) {
	w, err := parseWindow(req.AvailableFromWeekDay, req.AvailableToWeekDay, req.AvailableFromHour, req.AvailableToHour)
	if err != nil {
		return nil, err
	}

	doctor, err := s.GetDoctor(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	doctor.AvailableFromWeekDay = w.fromWeekDay
	doctor.AvailableToWeekDay = w.toWeekDay
	doctor.AvailableFromHour = w.fromHour
	doctor.AvailableToHour = w.toHour

	if err := s.repo.UpdateAvailability(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.GetDoctor(ctx, clinicID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}
