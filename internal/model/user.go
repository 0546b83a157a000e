package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. Credentials live with the
// external auth collaborator; this core only knows the id.
type User struct {
	ID uuid.UUID `json:"id" db:"id"`
}

// UserClinicMembership grants a user access to a clinic. The pair is
// the natural key; granting twice is a no-op.
type UserClinicMembership struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ClinicID  uuid.UUID `json:"clinic_id" db:"clinic_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type GrantAccessRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
