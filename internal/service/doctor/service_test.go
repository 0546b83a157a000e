package doctor

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

var _ repository.DoctorRepository = (*mockDoctorRepo)(nil)

type mockDoctorRepo struct {
	CreateFunc             func(ctx context.Context, doctor *model.Doctor) error
	GetFunc                func(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListFunc               func(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	UpdateAvailabilityFunc func(ctx context.Context, doctor *model.Doctor) error
}

func (m *mockDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, doctor)
	}
	return nil
}

func (m *mockDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errors.New("GetFunc not implemented in mock")
}

func (m *mockDoctorRepo) List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, clinicID)
	}
	return nil, nil
}

func (m *mockDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockDoctorRepo) UpdateAvailability(ctx context.Context, doctor *model.Doctor) error {
	if m.UpdateAvailabilityFunc != nil {
		return m.UpdateAvailabilityFunc(ctx, doctor)
	}
	return nil
}

func validRegisterRequest() *model.RegisterDoctorRequest {
	return &model.RegisterDoctorRequest{
		Name:                 "Dr. Greene",
		Specialty:            "Cardiology",
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromHour:    "09:00",
		AvailableToHour:      "17:00",
		AppointmentPrice:     15000,
	}
}

func TestRegisterDoctor(t *testing.T) {
	clinicID := uuid.New()
	var created *model.Doctor
	repo := &mockDoctorRepo{
		CreateFunc: func(ctx context.Context, doctor *model.Doctor) error {
			created = doctor
			return nil
		},
	}
	svc := NewService(repo)

	doc, err := svc.RegisterDoctor(context.Background(), clinicID, validRegisterRequest())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, clinicID, doc.ClinicID)
	assert.Equal(t, "Dr. Greene", doc.Name)
	assert.Equal(t, 9*60, int(doc.AvailableFromHour))
	assert.Equal(t, 17*60, int(doc.AvailableToHour))
}

func TestRegisterDoctorInvalidWindow(t *testing.T) {
	svc := NewService(&mockDoctorRepo{})

	tests := []struct {
		name   string
		mutate func(req *model.RegisterDoctorRequest)
	}{
		{
			name:   "weekday out of range",
			mutate: func(req *model.RegisterDoctorRequest) { req.AvailableToWeekDay = 7 },
		},
		{
			name:   "negative weekday",
			mutate: func(req *model.RegisterDoctorRequest) { req.AvailableFromWeekDay = -1 },
		},
		{
			name:   "unparseable hour",
			mutate: func(req *model.RegisterDoctorRequest) { req.AvailableFromHour = "9am" },
		},
		{
			name: "from hour not before to hour",
			mutate: func(req *model.RegisterDoctorRequest) {
				req.AvailableFromHour = "17:00"
				req.AvailableToHour = "09:00"
			},
		},
		{
			name:   "negative price",
			mutate: func(req *model.RegisterDoctorRequest) { req.AppointmentPrice = -1 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(req)
			_, err := svc.RegisterDoctor(context.Background(), uuid.New(), req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
		})
	}
}

func TestRegisterDoctorWrappedWeekRange(t *testing.T) {
	repo := &mockDoctorRepo{}
	svc := NewService(repo)

	req := validRegisterRequest()
	req.AvailableFromWeekDay = 5 // Friday
	req.AvailableToWeekDay = 1   // through the weekend to Monday

	doc, err := svc.RegisterDoctor(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.AvailableFromWeekDay)
	assert.Equal(t, 1, doc.AvailableToWeekDay)
}

func TestGetDoctorScopedToClinic(t *testing.T) {
	doctorID := uuid.New()
	ownerClinic := uuid.New()
	repo := &mockDoctorRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
			return &model.Doctor{Base: model.Base{ID: doctorID}, ClinicID: ownerClinic}, nil
		},
	}
	svc := NewService(repo)

	doc, err := svc.GetDoctor(context.Background(), ownerClinic, doctorID)
	require.NoError(t, err)
	assert.Equal(t, doctorID, doc.ID)

	_, err = svc.GetDoctor(context.Background(), uuid.New(), doctorID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateAvailability(t *testing.T) {
	doctorID := uuid.New()
	clinicID := uuid.New()
	var updated *model.Doctor
	repo := &mockDoctorRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
			return &model.Doctor{
				Base:                 model.Base{ID: doctorID},
				ClinicID:             clinicID,
				AvailableFromWeekDay: 1,
				AvailableToWeekDay:   5,
			}, nil
		},
		UpdateAvailabilityFunc: func(ctx context.Context, doctor *model.Doctor) error {
			updated = doctor
			return nil
		},
	}
	svc := NewService(repo)

	doc, err := svc.UpdateAvailability(context.Background(), clinicID, doctorID, &model.UpdateAvailabilityRequest{
		AvailableFromWeekDay: 2,
		AvailableToWeekDay:   6,
		AvailableFromHour:    "08:00",
		AvailableToHour:      "12:00",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 2, doc.AvailableFromWeekDay)
	assert.Equal(t, 6, doc.AvailableToWeekDay)
	assert.Equal(t, 8*60, int(doc.AvailableFromHour))
}

func TestUpdateAvailabilityConflict(t *testing.T) {
	doctorID := uuid.New()
	clinicID := uuid.New()
	repo := &mockDoctorRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
			return &model.Doctor{Base: model.Base{ID: doctorID}, ClinicID: clinicID}, nil
		},
		UpdateAvailabilityFunc: func(ctx context.Context, doctor *model.Doctor) error {
			return apperrors.Conflict("future appointments fall outside the new availability window", nil)
		},
	}
	svc := NewService(repo)

	_, err := svc.UpdateAvailability(context.Background(), clinicID, doctorID, &model.UpdateAvailabilityRequest{
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromHour:    "09:00",
		AvailableToHour:      "10:00",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestDeleteDoctorUnknown(t *testing.T) {
	repo := &mockDoctorRepo{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
			return nil, apperrors.NotFound("doctor", nil)
		},
	}
	svc := NewService(repo)

	err := svc.DeleteDoctor(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
