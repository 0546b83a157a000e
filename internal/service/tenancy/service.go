package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type TenancyServicer interface {
	CreateUser(ctx context.Context) (*model.User, error)
	GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error
	RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error
	ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error)
	ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error)
	Authorize(ctx context.Context, callerID, clinicID uuid.UUID) error
}

// Service is the tenant-isolation boundary. Every clinic-scoped
// operation in the system authorizes through it; no other component
// re-derives membership.
type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// CreateUser persists a bare principal row. Credentials stay with the
// external auth collaborator.
func (s *Service) CreateUser(ctx context.Context) (*model.User, error) {
	user := &model.User{ID: uuid.New()}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.InvalidArgument("user ID is required", nil)
	}
	if clinicID == uuid.Nil {
		return apperrors.InvalidArgument("clinic ID is required", nil)
	}
	if err := s.repo.GrantAccess(ctx, userID, clinicID); err != nil {
		return fmt.Errorf("failed to grant access: %w", err)
	}
	return nil
}

func (s *Service) RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	if err := s.repo.RevokeAccess(ctx, userID, clinicID); err != nil {
		return fmt.Errorf("failed to revoke access: %w", err)
	}
	return nil
}

func (s *Service) ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	clinics, err := s.repo.ListClinicsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (s *Service) ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error) {
	members, err := s.repo.ListMembersForClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Authorize rejects callers without a membership for the clinic.
func (s *Service) Authorize(ctx context.Context, callerID, clinicID uuid.UUID) error {
	ok, err := s.repo.HasAccess(ctx, callerID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return apperrors.Forbidden("caller has no access to this clinic", nil)
	}
	return nil
}
