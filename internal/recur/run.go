package recur

import (
	"context"
	"errors"
	"time"

	"recurbook/internal/acuity"
	appLog "recurbook/internal/log"
)

// API is the scheduling-service surface a run depends on.
type API interface {
	Source
	Create(ctx context.Context, r acuity.CreateRequest) (acuity.Appointment, error)
}

// Options tune a run. Zero values fall back to defaults.
type Options struct {
	// Now is the run-start instant; time.Now().UTC() when zero. Every window
	// in the run derives from this single capture.
	Now time.Time

	// SampleMax / LookupMax cap the two fetch kinds.
	SampleMax int
	LookupMax int

	// DryRun runs the full pipeline but records the plan instead of issuing
	// create calls.
	DryRun bool
}

// PlannedLesson is one appointment a dry run would have created.
type PlannedLesson struct {
	Student Student
	Date    NaiveTime
}

// Report summarizes a run. Planned is only populated on dry runs.
type Report struct {
	CalendarsProcessed int
	StudentsConsidered int
	StudentsSkipped    int
	Created            int
	Failures           int
	Planned            []PlannedLesson
}

// Runner drives one projection run across the staff roster: sample each
// calendar, deduplicate candidates, then locate, project and book each
// student in turn. Everything is sequential and synchronous; the only state
// crossing iterations is the Report.
type Runner struct {
	api       API
	staff     []Staff
	win       Windows
	sampleMax int
	lookupMax int
	dryRun    bool
}

// NewRunner builds a Runner over the given API and roster.
func NewRunner(api API, staff []Staff, opts Options) *Runner {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	sampleMax := opts.SampleMax
	if sampleMax <= 0 {
		sampleMax = 200
	}
	lookupMax := opts.LookupMax
	if lookupMax <= 0 {
		lookupMax = 30
	}
	return &Runner{
		api:       api,
		staff:     staff,
		win:       NewWindows(now),
		sampleMax: sampleMax,
		lookupMax: lookupMax,
		dryRun:    opts.DryRun,
	}
}

// Run processes every roster calendar. Failures are isolated: a failing
// calendar or student is counted and logged, and the run moves on. Only
// context cancellation stops the loop early.
func (r *Runner) Run(ctx context.Context) Report {
	var rep Report
	for _, st := range r.staff {
		if ctx.Err() != nil {
			appLog.Error("run canceled", ctx.Err(), "calendar", st.CalendarID)
			rep.Failures++
			break
		}
		r.runCalendar(ctx, st, &rep)
	}
	return rep
}

func (r *Runner) runCalendar(ctx context.Context, st Staff, rep *Report) {
	appts, err := r.api.List(ctx, acuity.ListParams{
		MinDate:    r.win.SampleStart,
		MaxDate:    r.win.SampleEnd,
		CalendarID: st.CalendarID,
		Max:        r.sampleMax,
	})
	if err != nil {
		appLog.Error("calendar sample fetch failed", err, "calendar", st.CalendarID, "staff", st.Name)
		rep.Failures++
		return
	}

	students, err := Dedup(appts)
	if err != nil {
		appLog.Error("candidate deduplication failed", err, "calendar", st.CalendarID, "staff", st.Name)
		rep.Failures++
		return
	}

	rep.CalendarsProcessed++
	appLog.Info("calendar sampled",
		"calendar", st.CalendarID,
		"staff", st.Name,
		"appointments", len(appts),
		"candidates", len(students),
	)

	for _, s := range students {
		rep.StudentsConsidered++
		r.runStudent(ctx, s, rep)
	}
}

func (r *Runner) runStudent(ctx context.Context, s Student, rep *Report) {
	anchor, err := LocateAnchor(ctx, r.api, s, r.win, r.lookupMax)
	if errors.Is(err, ErrNoAnchor) {
		appLog.Info("student skipped: no anchor in lookup window",
			"email", redactEmail(s.Email),
			"slot", s.Time,
			"calendar", s.CalendarID,
		)
		rep.StudentsSkipped++
		return
	}
	if err != nil {
		appLog.Error("anchor lookup failed", err, "calendar", s.CalendarID)
		rep.Failures++
		return
	}

	dates, err := Project(anchor, Cadence(s.Occurrences), r.win.Cutoff)
	if err != nil {
		appLog.Error("projection failed", err, "email", redactEmail(s.Email), "calendar", s.CalendarID)
		rep.Failures++
		return
	}

	appLog.Debug("student projected",
		"email", redactEmail(s.Email),
		"slot", s.Time,
		"occurrences", s.Occurrences,
		"cadence_days", Cadence(s.Occurrences),
		"dates", len(dates),
	)

	if r.dryRun {
		for _, d := range dates {
			rep.Planned = append(rep.Planned, PlannedLesson{Student: s, Date: d})
		}
		return
	}

	for _, d := range dates {
		_, err := r.api.Create(ctx, acuity.CreateRequest{
			Datetime:          d.String(),
			AppointmentTypeID: s.AppointmentTypeID,
			CalendarID:        s.CalendarID,
			FirstName:         s.FirstName,
			LastName:          s.LastName,
			Email:             s.Email,
			Phone:             s.Phone,
		})
		if err != nil {
			// Remaining dates for this student are not attempted; partial
			// creation is possible and is not rolled back.
			appLog.Error("appointment create failed", err,
				"email", redactEmail(s.Email),
				"datetime", d.String(),
				"calendar", s.CalendarID,
			)
			rep.Failures++
			return
		}
		rep.Created++
	}
}
