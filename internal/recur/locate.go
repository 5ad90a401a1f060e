package recur

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recurbook/internal/acuity"
)

// ErrNoAnchor marks a student whose recorded slot has no booked occurrence
// in the lookup window. The student cannot be projected; the caller skips
// them and moves on.
var ErrNoAnchor = errors.New("no booked appointment matches the student's slot")

// Source is the read side of the scheduling API the locator depends on.
type Source interface {
	List(ctx context.Context, p acuity.ListParams) ([]acuity.Appointment, error)
}

// LocateAnchor finds the student's last-booked datetime: the first
// appointment in the lookup window (filtered by the student's email, online
// forms excluded server-side) whose slot matches the student's recorded
// slot. The result is the projection anchor, rebased to UTC.
//
// Returns ErrNoAnchor when nothing in the window matches.
func LocateAnchor(ctx context.Context, src Source, s Student, win Windows, maxResults int) (time.Time, error) {
	appts, err := src.List(ctx, acuity.ListParams{
		MinDate:      win.LookupStart,
		MaxDate:      win.LookupEnd,
		CalendarID:   s.CalendarID,
		Max:          maxResults,
		Email:        s.Email,
		ExcludeForms: true,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("locate anchor for %s: %w", redactEmail(s.Email), err)
	}

	for _, a := range appts {
		if a.Time != s.Time {
			continue
		}
		t, err := a.StartTime()
		if err != nil {
			return time.Time{}, fmt.Errorf("locate anchor for %s: %w", redactEmail(s.Email), err)
		}
		return rebaseUTC(t), nil
	}

	return time.Time{}, ErrNoAnchor
}

// rebaseUTC reinterprets t's wall-clock reading as UTC without converting
// the instant. The service reports datetimes on its own local clock, and
// projection arithmetic treats that wall clock as the anchor, so the offset
// is discarded rather than applied.
func rebaseUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
