package recur

import (
	"fmt"

	"recurbook/internal/acuity"
)

// Online-booking marker on the intake form. A client whose first form
// carries this answer booked through the self-service flow and is never
// projected automatically.
const (
	onlineFormFieldID = 4964051
	onlineFormOptIn   = "yes"
)

// FormDataError reports an appointment record arriving without the intake
// form data the opt-out check needs. The record is unusable; callers must
// not guess a default.
type FormDataError struct {
	AppointmentID int64
	Email         string
}

func (e *FormDataError) Error() string {
	return fmt.Sprintf("appointment %d (%s): no intake form data", e.AppointmentID, redactEmail(e.Email))
}

// Dedup reduces one calendar's sample-window appointments to the distinct
// set of projection candidates.
//
// The scan is sequential in the source list's order, threading a single
// piece of state: the email of the immediately preceding appointment.
// Adjacency matters — two same-email appointments only count as a family
// (sibling) pair when they arrive back to back. That is a deliberate
// heuristic, not a general grouping, and must stay order-dependent.
func Dedup(appts []acuity.Appointment) ([]Student, error) {
	students := make([]Student, 0, len(appts))
	prevEmail := ""

	for _, a := range appts {
		optedOut, err := onlineFormOptOut(a)
		if err != nil {
			return nil, err
		}
		if !optedOut && admit(a, prevEmail, students) {
			students = append(students, newStudent(a, occurrences(appts, a)))
		}
		prevEmail = a.Email
	}

	return students, nil
}

// admit decides whether the current appointment introduces a new candidate,
// given the previous appointment's email and the candidates accumulated so
// far.
//
// Sibling branch: a same email as the immediately preceding appointment
// means the same family account; if no candidate already holds this
// (last name, slot), the appointment is a sibling booking a different slot
// and is admitted as its own candidate. Otherwise the appointment is a
// repeat appearance and is admitted only when its (first name, last name)
// is not yet represented.
func admit(curr acuity.Appointment, prevEmail string, acc []Student) bool {
	if curr.Email == prevEmail && !hasLastNameSlot(acc, curr.LastName, curr.Time) {
		return true
	}
	return !hasFullName(acc, curr.FirstName, curr.LastName)
}

// occurrences counts how many appointments in the whole sample share a's
// email and slot. Opted-out records still count: the signal is how often the
// slot appears, not who is admitted.
func occurrences(appts []acuity.Appointment, a acuity.Appointment) int {
	n := 0
	for _, other := range appts {
		if other.Email == a.Email && other.Time == a.Time {
			n++
		}
	}
	return n
}

// onlineFormOptOut reports whether the appointment's intake form carries the
// online-booking opt-in answer. It is a pure function of the form answers:
// the same record always yields the same decision.
func onlineFormOptOut(a acuity.Appointment) (bool, error) {
	if len(a.Forms) == 0 {
		return false, &FormDataError{AppointmentID: a.ID, Email: a.Email}
	}
	for _, v := range a.Forms[0].Values {
		if v.FieldID == onlineFormFieldID && v.Value == onlineFormOptIn {
			return true, nil
		}
	}
	return false, nil
}

func hasLastNameSlot(acc []Student, lastName, slot string) bool {
	for _, s := range acc {
		if s.LastName == lastName && s.Time == slot {
			return true
		}
	}
	return false
}

func hasFullName(acc []Student, firstName, lastName string) bool {
	for _, s := range acc {
		if s.FirstName == firstName && s.LastName == lastName {
			return true
		}
	}
	return false
}

// redactEmail hides most of an email's local part for logging purposes.
func redactEmail(email string) string {
	at := -1
	for i, r := range email {
		if r == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
