package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

var _ repository.PatientRepository = (*mockPatientRepo)(nil)

type mockPatientRepo struct {
	CreateFunc func(ctx context.Context, patient *model.Patient) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	ListFunc   func(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error)
	UpdateFunc func(ctx context.Context, patient *model.Patient) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	return nil
}

func (m *mockPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errors.New("GetFunc not implemented in mock")
}

func (m *mockPatientRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Patient, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, clinicID)
	}
	return nil, nil
}

func (m *mockPatientRepo) Update(ctx context.Context, patient *model.Patient) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, patient)
	}
	return nil
}

func (m *mockPatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func TestRegisterPatient(t *testing.T) {
	clinicID := uuid.New()
	var created *model.Patient
	repo := &mockPatientRepo{
		CreateFunc: func(ctx context.Context, patient *model.Patient) error {
			created = patient
			return nil
		},
	}
	svc := NewService(repo)

	p, err := svc.RegisterPatient(context.Background(), clinicID, &model.RegisterPatientRequest{
		Name:        "Ada",
		Email:       "ada@example.com",
		PhoneNumber: "+15550100",
		Sex:         "female",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, clinicID, p.ClinicID)
	assert.Equal(t, model.PatientSexFemale, p.Sex)
}

func TestRegisterPatientInvalidSex(t *testing.T) {
	svc := NewService(&mockPatientRepo{})

	_, err := svc.RegisterPatient(context.Background(), uuid.New(), &model.RegisterPatientRequest{
		Name:        "Ada",
		Email:       "ada@example.com",
		PhoneNumber: "+15550100",
		Sex:         "other",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestRegisterPatientDuplicateEmail(t *testing.T) {
	repo := &mockPatientRepo{
		CreateFunc: func(ctx context.Context, patient *model.Patient) error {
			return apperrors.AlreadyExists("patient", nil)
		},
	}
	svc := NewService(repo)

	_, err := svc.RegisterPatient(context.Background(), uuid.New(), &model.RegisterPatientRequest{
		Name:        "Ada",
		Email:       "ada@example.com",
		PhoneNumber: "+15550100",
		Sex:         "female",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))
}

func TestGetPatientScopedToClinic(t *testing.T) {
	patientID := uuid.New()
	ownerClinic := uuid.New()
	repo := &mockPatientRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
			return &model.Patient{Base: model.Base{ID: patientID}, ClinicID: ownerClinic}, nil
		},
	}
	svc := NewService(repo)

	p, err := svc.GetPatient(context.Background(), ownerClinic, patientID)
	require.NoError(t, err)
	assert.Equal(t, patientID, p.ID)

	_, err = svc.GetPatient(context.Background(), uuid.New(), patientID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdatePatientPartial(t *testing.T) {
	patientID := uuid.New()
	clinicID := uuid.New()
	var updated *model.Patient
	repo := &mockPatientRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
			return &model.Patient{
				Base:        model.Base{ID: patientID},
				ClinicID:    clinicID,
				Name:        "Ada",
				Email:       "ada@example.com",
				PhoneNumber: "+15550100",
				Sex:         model.PatientSexFemale,
			}, nil
		},
		UpdateFunc: func(ctx context.Context, patient *model.Patient) error {
			updated = patient
			return nil
		},
	}
	svc := NewService(repo)

	newPhone := "+15550199"
	p, err := svc.UpdatePatient(context.Background(), clinicID, patientID, &model.UpdatePatientRequest{
		PhoneNumber: &newPhone,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "+15550199", p.PhoneNumber)
	assert.Equal(t, "Ada", p.Name, "untouched fields keep their values")
	assert.Equal(t, "ada@example.com", p.Email)
}

func TestUpdatePatientDuplicateEmail(t *testing.T) {
	patientID := uuid.New()
	clinicID := uuid.New()
	repo := &mockPatientRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
			return &model.Patient{Base: model.Base{ID: patientID}, ClinicID: clinicID}, nil
		},
		UpdateFunc: func(ctx context.Context, patient *model.Patient) error {
			return apperrors.AlreadyExists("patient", nil)
		},
	}
	svc := NewService(repo)

	email := "taken@example.com"
	_, err := svc.UpdatePatient(context.Background(), clinicID, patientID, &model.UpdatePatientRequest{
		Email: &email,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))
}

func TestDeletePatientUnknown(t *testing.T) {
	repo := &mockPatientRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
			return nil, apperrors.NotFound("patient", nil)
		},
	}
	svc := NewService(repo)

	err := svc.DeletePatient(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
