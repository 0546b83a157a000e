//go:build integration

// These tests exercise the repository layer against a real Postgres
// with the migrations applied. Run them with
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
//
// They cover the invariants that live in SQL and cannot be seen by the
// mocked service tests: the locked slot-conflict check, the
// in-transaction availability re-check, and the future-appointment
// guard on availability rewrites.
package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`TRUNCATE appointments, patients, doctors, users_to_clinics, clinics, users, outbox_events CASCADE`)
	require.NoError(t, err)

	return db
}

type repoFixture struct {
	clinicID  uuid.UUID
	doctorID  uuid.UUID
	patientID uuid.UUID

	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
}

// newRepoFixture seeds a clinic, a patient and a doctor working Monday
// to Friday between the given hours.
func newRepoFixture(t *testing.T, db *sqlx.DB, fromHour, toHour string) *repoFixture {
	t.Helper()

	base := NewBaseRepository(db)
	ctx := context.Background()

	clinic := &model.Clinic{Name: "Integration Clinic"}
	require.NoError(t, NewClinicRepository(base).Create(ctx, clinic))

	from, err := model.ParseTimeOfDay(fromHour)
	require.NoError(t, err)
	to, err := model.ParseTimeOfDay(toHour)
	require.NoError(t, err)

	doctors := NewDoctorRepository(base)
	doctor := &model.Doctor{
		ClinicID:             clinic.ID,
		Name:                 "Dr. Quinn",
		Specialty:            "general",
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromHour:    from,
		AvailableToHour:      to,
		AppointmentPrice:     5000,
	}
	require.NoError(t, doctors.Create(ctx, doctor))

	patient := &model.Patient{
		ClinicID:    clinic.ID,
		Name:        "Pat Doe",
		Email:       fmt.Sprintf("pat_%d@example.com", time.Now().UnixNano()),
		PhoneNumber: "+15550100",
		Sex:         model.PatientSexFemale,
	}
	require.NoError(t, NewPatientRepository(base).Create(ctx, patient))

	return &repoFixture{
		clinicID:     clinic.ID,
		doctorID:     doctor.ID,
		patientID:    patient.ID,
		doctors:      doctors,
		appointments: NewAppointmentRepository(base),
	}
}

func (f *repoFixture) appointmentAt(date time.Time) *model.Appointment {
	return &model.Appointment{
		PatientID: f.patientID,
		DoctorID:  f.doctorID,
		ClinicID:  f.clinicID,
		Date:      date,
	}
}

// 2030-06-10 is a Monday, comfortably in the future.
var futureMonday = time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC)

func TestBookRejectsCommittedWindow(t *testing.T) {
	db := newTestDB(t)
	f := newRepoFixture(t, db, "09:00", "12:00")

	// A booking validated against a stale, wider window still reaches
	// Book; the re-check against the committed row must reject it.
	afternoon := futureMonday.Add(5 * time.Hour)
	err := f.appointments.Book(context.Background(), f.appointmentAt(afternoon))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrOutOfAvailability))

	var count int
	require.NoError(t, db.Get(&count, `SELECT count(*) FROM appointments`))
	assert.Zero(t, count)
}

func TestBookSlotConflict(t *testing.T) {
	db := newTestDB(t)
	f := newRepoFixture(t, db, "09:00", "17:00")
	ctx := context.Background()

	require.NoError(t, f.appointments.Book(ctx, f.appointmentAt(futureMonday)))

	err := f.appointments.Book(ctx, f.appointmentAt(futureMonday))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotTaken))
}

func TestConcurrentBookingsSameSlot(t *testing.T) {
	db := newTestDB(t)
	f := newRepoFixture(t, db, "09:00", "17:00")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.appointments.Book(context.Background(), f.appointmentAt(futureMonday))
		}(i)
	}
	wg.Wait()

	var booked, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			booked++
		case apperrors.Is(err, apperrors.ErrSlotTaken):
			taken++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	assert.Equal(t, 1, booked, "exactly one concurrent booking may win the slot")
	assert.Equal(t, attempts-1, taken)
}

func TestRescheduleSlotConflict(t *testing.T) {
	db := newTestDB(t)
	f := newRepoFixture(t, db, "09:00", "17:00")
	ctx := context.Background()

	first := f.appointmentAt(futureMonday)
	require.NoError(t, f.appointments.Book(ctx, first))
	second := f.appointmentAt(futureMonday.Add(time.Hour))
	require.NoError(t, f.appointments.Book(ctx, second))

	// Onto the occupied slot.
	second.Date = futureMonday
	err := f.appointments.Reschedule(ctx, second)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSlotTaken))

	// Onto its own slot: the row excludes itself from the check.
	second.Date = futureMonday.Add(time.Hour)
	require.NoError(t, f.appointments.Reschedule(ctx, second))
}

func TestUpdateAvailabilityRejectsStrandedAppointments(t *testing.T) {
	db := newTestDB(t)
	f := newRepoFixture(t, db, "09:00", "17:00")
	ctx := context.Background()

	afternoon := futureMonday.Add(5 * time.Hour)
	require.NoError(t, f.appointments.Book(ctx, f.appointmentAt(afternoon)))

	doctor, err := f.doctors.Get(ctx, f.doctorID)
	require.NoError(t, err)

	// Narrowing to the morning strands the 15:00 appointment.
	doctor.AvailableFromHour, err = model.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	doctor.AvailableToHour, err = model.ParseTimeOfDay("12:00")
	require.NoError(t, err)
	err = f.doctors.UpdateAvailability(ctx, doctor)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	// The window must be unchanged after the rejected rewrite.
	current, err := f.doctors.Get(ctx, f.doctorID)
	require.NoError(t, err)
	assert.True(t, current.IsWithinAvailability(afternoon))

	// A window that still covers the appointment goes through.
	doctor.AvailableToHour, err = model.ParseTimeOfDay("16:00")
	require.NoError(t, err)
	require.NoError(t, f.doctors.UpdateAvailability(ctx, doctor))
}

func TestRegisterDoctorUnknownClinic(t *testing.T) {
	db := newTestDB(t)
	newRepoFixture(t, db, "09:00", "17:00")

	from, err := model.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	to, err := model.ParseTimeOfDay("17:00")
	require.NoError(t, err)

	err = NewDoctorRepository(NewBaseRepository(db)).Create(context.Background(), &model.Doctor{
		ClinicID:             uuid.New(),
		Name:                 "Dr. Nowhere",
		Specialty:            "general",
		AvailableFromWeekDay: 1,
		AvailableToWeekDay:   5,
		AvailableFromHour:    from,
		AvailableToHour:      to,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
