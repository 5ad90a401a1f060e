package recur

import "recurbook/internal/acuity"

// Staff identifies one roster entry whose calendar gets projected.
type Staff struct {
	CalendarID int64
	Name       string
}

// Student is one projection candidate derived from a calendar's sample
// window. Candidates live for a single run and are never mutated after the
// deduplication pass builds them.
type Student struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	AppointmentTypeID int64
	CalendarID        int64

	// Time is the recurring time-of-day slot label this candidate books.
	Time string

	// Date is the scheduled datetime of the sampled appointment, as reported
	// by the service.
	Date string

	// Occurrences is how many sample-window appointments share this
	// candidate's email and slot; it drives the cadence estimate.
	Occurrences int
}

func newStudent(a acuity.Appointment, occurrences int) Student {
	return Student{
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.Email,
		Phone:             a.Phone,
		AppointmentTypeID: a.AppointmentTypeID,
		CalendarID:        a.CalendarID,
		Time:              a.Time,
		Date:              a.Datetime,
		Occurrences:       occurrences,
	}
}
