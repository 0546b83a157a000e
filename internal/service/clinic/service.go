package clinic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

type ClinicServicer interface {
	CreateClinic(ctx context.Context, creatorID uuid.UUID, name string) (*model.Clinic, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	RenameClinic(ctx context.Context, id uuid.UUID, name string) (*model.Clinic, error)
	DeleteClinic(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     repository.ClinicRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.ClinicRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
	}
}

// CreateClinic creates the tenant root and immediately grants the
// creator a membership, matching the sign-up flow where a fresh clinic
// is linked to its founding user.
func (s *Service) CreateClinic(ctx context.Context, creatorID uuid.UUID, name string) (*model.Clinic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("clinic name is required", nil)
	}

	clinic := &model.Clinic{Name: name}
	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	if creatorID != uuid.Nil {
		if err := s.userRepo.GrantAccess(ctx, creatorID, clinic.ID); err != nil {
			return nil, fmt.Errorf("failed to grant creator access: %w", err)
		}
	}

	return clinic, nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) RenameClinic(ctx context.Context, id uuid.UUID, name string) (*model.Clinic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.InvalidArgument("clinic name is required", nil)
	}

	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	clinic.Name = name
	if err := s.repo.Rename(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to rename clinic: %w", err)
	}
	return clinic, nil
}

// DeleteClinic removes the clinic and everything scoped to it. The
// cascade is a single statement in the repository, so it is
// all-or-nothing with respect to concurrent bookings.
func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	return nil
}
