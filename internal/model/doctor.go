package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a wall-clock time stored as minutes since midnight. It
// maps to a Postgres TIME column.
type TimeOfDay int

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// TimeOfDayAt extracts the wall-clock minute of t.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid time of day %s", data)
	}
	parsed, err := ParseTimeOfDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDayAt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Doctor exposes a recurring weekly availability window: each calendar
// day whose weekday falls in the inclusive cyclic range
// [AvailableFromWeekDay, AvailableToWeekDay] is bookable between
// AvailableFromHour (inclusive) and AvailableToHour (exclusive).
type Doctor struct {
	Base
	ClinicID             uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name                 string    `db:"name" json:"name"`
	AvatarImageURL       *string   `db:"avatar_image_url" json:"avatar_image_url,omitempty"`
	Specialty            string    `db:"specialty" json:"specialty"`
	AvailableFromWeekDay int       `db:"available_from_week_day" json:"available_from_week_day"`
	AvailableToWeekDay   int       `db:"available_to_week_day" json:"available_to_week_day"`
	AvailableFromHour    TimeOfDay `db:"available_from_hour" json:"available_from_hour"`
	AvailableToHour      TimeOfDay `db:"available_to_hour" json:"available_to_hour"`
	AppointmentPrice     int       `db:"appointment_price" json:"appointment_price"`
}

// IsWithinAvailability reports whether ts falls inside the doctor's
// recurring window. Pure; evaluated on the timestamp's own wall clock.
func (d *Doctor) IsWithinAvailability(ts time.Time) bool {
	if !weekdayInCyclicRange(int(ts.Weekday()), d.AvailableFromWeekDay, d.AvailableToWeekDay) {
		return false
	}
	tod := TimeOfDayAt(ts)
	return tod >= d.AvailableFromHour && tod < d.AvailableToHour
}

// weekdayInCyclicRange treats [from, to] as inclusive and allows the
// range to wrap past Saturday, e.g. Friday(5)..Monday(1).
func weekdayInCyclicRange(day, from, to int) bool {
	if from <= to {
		return day >= from && day <= to
	}
	return day >= from || day <= to
}

type RegisterDoctorRequest struct {
	Name                 string  `json:"name" binding:"required"`
	AvatarImageURL       *string `json:"avatar_image_url"`
	Specialty            string  `json:"specialty" binding:"required"`
	AvailableFromWeekDay int     `json:"available_from_week_day" binding:"min=0,max=6"`
	AvailableToWeekDay   int     `json:"available_to_week_day" binding:"min=0,max=6"`
	AvailableFromHour    string  `json:"available_from_hour" binding:"required,timeofday"`
	AvailableToHour      string  `json:"available_to_hour" binding:"required,timeofday"`
	AppointmentPrice     int     `json:"appointment_price" binding:"min=0"`
}

type UpdateAvailabilityRequest struct {
	AvailableFromWeekDay int    `json:"available_from_week_day" binding:"min=0,max=6"`
	AvailableToWeekDay   int    `json:"available_to_week_day" binding:"min=0,max=6"`
	AvailableFromHour    string `json:"available_from_hour" binding:"required,timeofday"`
	AvailableToHour      string `json:"available_to_hour" binding:"required,timeofday"`
}
