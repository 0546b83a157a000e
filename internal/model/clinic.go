package model

// Clinic is the tenant root. Doctors, patients, appointments and
// memberships are all scoped to exactly one clinic and never outlive it.
type Clinic struct {
	Base
	Name string `db:"name" json:"name"`
}

type CreateClinicRequest struct {
	Name string `json:"name" binding:"required"`
}

type RenameClinicRequest struct {
	Name string `json:"name" binding:"required"`
}
