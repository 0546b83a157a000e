package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type PatientServicer interface {
	RegisterPatient(ctx context.Context, clinicID uuid.UUID, req *model.RegisterPatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error)
	ListPatients(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
	UpdatePatient(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error
}

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// RegisterPatient persists a clinic-scoped record. Email uniqueness is
// network-wide; the storage layer reports a duplicate as AlreadyExists.
func (s *Service) RegisterPatient(ctx context.Context, clinicID uuid.UUID, req *model.RegisterPatientRequest) (*model.Patient, error) {
	sex := model.PatientSex(req.Sex)
	if sex != model.PatientSexFemale && sex != model.PatientSexMale {
		return nil, apperrors.InvalidArgument("sex must be female or male", nil)
	}

	patient := &model.Patient{
		ClinicID:    clinicID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Sex:         sex,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("a patient with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if patient.ClinicID != clinicID {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) UpdatePatient(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		patient.PhoneNumber = *req.PhoneNumber
	}
	if req.Sex != nil {
		sex := model.PatientSex(*req.Sex)
		if sex != model.PatientSexFemale && sex != model.PatientSexMale {
			return nil, apperrors.InvalidArgument("sex must be female or male", nil)
		}
		patient.Sex = sex
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("a patient with this email already exists", err)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// DeletePatient removes the record; the patient's appointments go with
// it via the FK cascade.
func (s *Service) DeletePatient(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, clinicID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
