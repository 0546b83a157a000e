package tenancy

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

var _ repository.UserRepository = (*mockUserRepo)(nil)

type mockUserRepo struct {
	CreateFunc               func(ctx context.Context, user *model.User) error
	GetFunc                  func(ctx context.Context, id uuid.UUID) (*model.User, error)
	GrantAccessFunc          func(ctx context.Context, userID, clinicID uuid.UUID) error
	RevokeAccessFunc         func(ctx context.Context, userID, clinicID uuid.UUID) error
	HasAccessFunc            func(ctx context.Context, userID, clinicID uuid.UUID) (bool, error)
	ListClinicsForUserFunc   func(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
	ListMembersForClinicFunc func(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errors.New("GetFunc not implemented in mock")
}

func (m *mockUserRepo) GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	if m.GrantAccessFunc != nil {
		return m.GrantAccessFunc(ctx, userID, clinicID)
	}
	return nil
}

func (m *mockUserRepo) RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	if m.RevokeAccessFunc != nil {
		return m.RevokeAccessFunc(ctx, userID, clinicID)
	}
	return nil
}

func (m *mockUserRepo) HasAccess(ctx context.Context, userID, clinicID uuid.UUID) (bool, error) {
	if m.HasAccessFunc != nil {
		return m.HasAccessFunc(ctx, userID, clinicID)
	}
	return false, nil
}

func (m *mockUserRepo) ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	if m.ListClinicsForUserFunc != nil {
		return m.ListClinicsForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserRepo) ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error) {
	if m.ListMembersForClinicFunc != nil {
		return m.ListMembersForClinicFunc(ctx, clinicID)
	}
	return nil, nil
}

func TestCreateUser(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := NewService(repo)

	user, err := svc.CreateUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestGrantAccess(t *testing.T) {
	userID := uuid.New()
	clinicID := uuid.New()
	granted := false
	repo := &mockUserRepo{
		GrantAccessFunc: func(ctx context.Context, u, c uuid.UUID) error {
			granted = true
			assert.Equal(t, userID, u)
			assert.Equal(t, clinicID, c)
			return nil
		},
	}
	svc := NewService(repo)

	require.NoError(t, svc.GrantAccess(context.Background(), userID, clinicID))
	assert.True(t, granted)
}

func TestGrantAccessNilIDs(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	err := svc.GrantAccess(context.Background(), uuid.Nil, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	err = svc.GrantAccess(context.Background(), uuid.New(), uuid.Nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}

func TestRevokeAccessUnknownMembership(t *testing.T) {
	repo := &mockUserRepo{
		RevokeAccessFunc: func(ctx context.Context, userID, clinicID uuid.UUID) error {
			return apperrors.NotFound("membership", nil)
		},
	}
	svc := NewService(repo)

	err := svc.RevokeAccess(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAuthorize(t *testing.T) {
	member := uuid.New()
	clinicID := uuid.New()
	repo := &mockUserRepo{
		HasAccessFunc: func(ctx context.Context, userID, c uuid.UUID) (bool, error) {
			return userID == member && c == clinicID, nil
		},
	}
	svc := NewService(repo)

	require.NoError(t, svc.Authorize(context.Background(), member, clinicID))

	err := svc.Authorize(context.Background(), uuid.New(), clinicID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestListClinicsForUser(t *testing.T) {
	userID := uuid.New()
	repo := &mockUserRepo{
		ListClinicsForUserFunc: func(ctx context.Context, id uuid.UUID) ([]*model.Clinic, error) {
			return []*model.Clinic{
				{Base: model.Base{ID: uuid.New()}, Name: "North"},
				{Base: model.Base{ID: uuid.New()}, Name: "South"},
			}, nil
		},
	}
	svc := NewService(repo)

	clinics, err := svc.ListClinicsForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, clinics, 2)
}
