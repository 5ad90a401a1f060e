package acuity

import (
	"fmt"
	"time"
)

// FormValue is a single submitted answer on an intake form.
type FormValue struct {
	FieldID int64  `json:"fieldID"`
	Value   string `json:"value"`
}

// Form groups the answers of one intake form attached to an appointment.
type Form struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Values []FormValue `json:"values"`
}

// Appointment is one record as returned by the scheduling API.
//
// Datetime is kept as the raw wire string; it is only parsed at the one place
// that needs a time value (see StartTime). Time is the recurring time-of-day
// slot label (e.g. "4:30pm") that identifies which weekly lesson slot the
// appointment belongs to.
type Appointment struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	CalendarID        int64  `json:"calendarID"`
	Datetime          string `json:"datetime"`
	Time              string `json:"time"`
	Forms             []Form `json:"forms"`
}

// datetimeLayouts covers the service's ISO-8601 variants: offsets appear both
// with and without a colon.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// StartTime parses the appointment's scheduled datetime. The zone offset in
// the wire value is preserved as parsed.
func (a Appointment) StartTime() (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, a.Datetime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("appointment %d: unparseable datetime %q", a.ID, a.Datetime)
}
