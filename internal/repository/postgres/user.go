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

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id) VALUES ($1)`, user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err, "user"))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT id FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

// GrantAccess is idempotent: a duplicate grant leaves the existing
// membership untouched.
func (r *userRepository) GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return apperrors.NotFound("user", nil)
		}

		err = tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM clinics WHERE id = $1)`, clinicID)
		if err != nil {
			return fmt.Errorf("failed to check clinic: %w", err)
		}
		if !exists {
			return apperrors.NotFound("clinic", nil)
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO users_to_clinics (user_id, clinic_id, created_at, updated_at)
			SELECT $1, $2, $3, $4
			WHERE NOT EXISTS (
				SELECT 1 FROM users_to_clinics WHERE user_id = $1 AND clinic_id = $2
			)
		`, userID, clinicID, now, now)
		if err != nil {
			return fmt.Errorf("failed to grant access: %w", translateError(err, "membership"))
		}
		return nil
	})
}

func (r *userRepository) RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users_to_clinics WHERE user_id = $1 AND clinic_id = $2`,
		userID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to revoke access: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("membership", nil)
	}
	return nil
}

func (r *userRepository) HasAccess(ctx context.Context, userID, clinicID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM users_to_clinics WHERE user_id = $1 AND clinic_id = $2)`,
		userID, clinicID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	query := `
		SELECT c.id, c.name, c.created_at, c.updated_at
		FROM clinics c
		JOIN users_to_clinics utc ON utc.clinic_id = c.id
		WHERE utc.user_id = $1
		ORDER BY c.created_at DESC
	`
	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list clinics for user: %w", err)
	}
	return clinics, nil
}

func (r *userRepository) ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error) {
	query := `
		SELECT user_id, clinic_id, created_at, updated_at
		FROM users_to_clinics
		WHERE clinic_id = $1
		ORDER BY created_at ASC
	`
	var members []*model.UserClinicMembership
	if err := r.db.SelectContext(ctx, &members, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list clinic members: %w", err)
	}
	return members, nil
}
