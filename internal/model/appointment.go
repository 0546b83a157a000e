package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a booked point-in-time slot. Two appointments for the
// same doctor conflict when their dates are equal; there is no duration
// on the record.
type Appointment struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Date      time.Time `db:"date" json:"date"`
}

type BookAppointmentRequest struct {
	DoctorID  string    `json:"doctor_id" binding:"required,uuid"`
	PatientID string    `json:"patient_id" binding:"required,uuid"`
	Date      time.Time `json:"date" binding:"required"`
}

type RescheduleAppointmentRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	From      time.Time
	To        time.Time
}
