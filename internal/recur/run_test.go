package recur

import (
	"context"
	"errors"
	"testing"
	"time"

	"recurbook/internal/acuity"
)

// mockAPI serves canned sample and lookup responses; lookups are routed by
// the email filter the runner sets.
type mockAPI struct {
	sample    map[int64][]acuity.Appointment
	sampleErr map[int64]error
	lookup    map[string][]acuity.Appointment
	lookupErr error

	created      []acuity.CreateRequest
	failCreateAt int // 1-based index of the create call that fails; 0 = never
	createCalls  int
}

func (m *mockAPI) List(_ context.Context, p acuity.ListParams) ([]acuity.Appointment, error) {
	if p.Email == "" {
		if err := m.sampleErr[p.CalendarID]; err != nil {
			return nil, err
		}
		return m.sample[p.CalendarID], nil
	}
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.lookup[p.Email], nil
}

func (m *mockAPI) Create(_ context.Context, r acuity.CreateRequest) (acuity.Appointment, error) {
	m.createCalls++
	if m.failCreateAt > 0 && m.createCalls == m.failCreateAt {
		return acuity.Appointment{}, errors.New("create rejected")
	}
	m.created = append(m.created, r)
	return acuity.Appointment{ID: int64(m.createCalls)}, nil
}

var runStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func weeklySample(n int, first, last, email, slot string) []acuity.Appointment {
	appts := make([]acuity.Appointment, 0, n)
	for i := 0; i < n; i++ {
		appts = append(appts, sampleAppt(first, last, email, slot))
	}
	return appts
}

func TestRunner_FullRunCreatesProjectedDates(t *testing.T) {
	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{
			7: weeklySample(5, "Ann", "Lee", "lee@example.com", "4pm"),
		},
		lookup: map[string][]acuity.Appointment{
			// Last booked 2024-12-01 at 10:00 wall clock; cutoff is
			// 2024-12-30, so four weekly dates fit.
			"lee@example.com": {{Time: "4pm", Datetime: "2024-12-01T10:00:00-0500"}},
		},
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7, Name: "Kim"}}, Options{Now: runStart})

	rep := runner.Run(context.Background())

	if rep.Failures != 0 {
		t.Fatalf("Failures = %d, want 0", rep.Failures)
	}
	if rep.CalendarsProcessed != 1 || rep.StudentsConsidered != 1 {
		t.Errorf("processed = %d calendars / %d students, want 1/1", rep.CalendarsProcessed, rep.StudentsConsidered)
	}

	want := []string{
		"2024-12-08T10:00:00",
		"2024-12-15T10:00:00",
		"2024-12-22T10:00:00",
		"2024-12-29T10:00:00",
	}
	if len(api.created) != len(want) {
		t.Fatalf("created %d appointments, want %d", len(api.created), len(want))
	}
	for i, w := range want {
		got := api.created[i]
		if got.Datetime != w {
			t.Errorf("created[%d].Datetime = %s, want %s", i, got.Datetime, w)
		}
		if got.Email != "lee@example.com" || got.FirstName != "Ann" || got.LastName != "Lee" {
			t.Errorf("created[%d] identity = %s %s <%s>", i, got.FirstName, got.LastName, got.Email)
		}
		if got.AppointmentTypeID != 101 || got.CalendarID != 7 {
			t.Errorf("created[%d] type/calendar = %d/%d, want 101/7", i, got.AppointmentTypeID, got.CalendarID)
		}
	}
	if rep.Created != len(want) {
		t.Errorf("Report.Created = %d, want %d", rep.Created, len(want))
	}
}

func TestRunner_NoAnchorSkipsStudentRunContinues(t *testing.T) {
	sample := weeklySample(5, "Ann", "Lee", "lee@example.com", "4pm")
	sample = append(sample, sampleAppt("Ben", "Cho", "cho@example.com", "3pm"))

	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{7: sample},
		lookup: map[string][]acuity.Appointment{
			// Ann's slot has no booked occurrence in the lookup window.
			"lee@example.com": {{Time: "6pm", Datetime: "2024-12-01T18:00:00-0500"}},
			"cho@example.com": {{Time: "3pm", Datetime: "2024-12-10T15:00:00-0500"}},
		},
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7}}, Options{Now: runStart})

	rep := runner.Run(context.Background())

	if rep.Failures != 0 {
		t.Fatalf("Failures = %d, want 0 (no-anchor is not a failure)", rep.Failures)
	}
	if rep.StudentsSkipped != 1 {
		t.Errorf("StudentsSkipped = %d, want 1", rep.StudentsSkipped)
	}
	// Ben has one occurrence, so biweekly: 2024-12-24 fits before the
	// cutoff, the next step does not.
	if len(api.created) != 1 {
		t.Fatalf("created %d appointments, want 1", len(api.created))
	}
	if api.created[0].Email != "cho@example.com" {
		t.Errorf("created[0].Email = %s, want cho@example.com", api.created[0].Email)
	}
	if api.created[0].Datetime != "2024-12-24T15:00:00" {
		t.Errorf("created[0].Datetime = %s, want 2024-12-24T15:00:00", api.created[0].Datetime)
	}
}

func TestRunner_CreateFailureIsIsolatedPerStudent(t *testing.T) {
	sample := weeklySample(5, "Ann", "Lee", "lee@example.com", "4pm")
	sample = append(sample, sampleAppt("Ben", "Cho", "cho@example.com", "3pm"))

	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{7: sample},
		lookup: map[string][]acuity.Appointment{
			"lee@example.com": {{Time: "4pm", Datetime: "2024-12-01T10:00:00-0500"}},
			"cho@example.com": {{Time: "3pm", Datetime: "2024-12-10T15:00:00-0500"}},
		},
		failCreateAt: 1,
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7}}, Options{Now: runStart})

	rep := runner.Run(context.Background())

	if rep.Failures != 1 {
		t.Errorf("Failures = %d, want 1", rep.Failures)
	}
	// Ann's remaining dates are abandoned after her first create fails; Ben
	// is still processed.
	if len(api.created) != 1 || api.created[0].Email != "cho@example.com" {
		t.Fatalf("created = %v, want exactly Ben's appointment", api.created)
	}
	if rep.Created != 1 {
		t.Errorf("Report.Created = %d, want 1", rep.Created)
	}
}

func TestRunner_SampleFetchFailureSkipsCalendar(t *testing.T) {
	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{
			8: weeklySample(5, "Ann", "Lee", "lee@example.com", "4pm"),
		},
		sampleErr: map[int64]error{7: errors.New("service unavailable")},
		lookup: map[string][]acuity.Appointment{
			"lee@example.com": {{Time: "4pm", Datetime: "2024-12-01T10:00:00-0500"}},
		},
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7}, {CalendarID: 8}}, Options{Now: runStart})

	rep := runner.Run(context.Background())

	if rep.Failures != 1 {
		t.Errorf("Failures = %d, want 1", rep.Failures)
	}
	if rep.CalendarsProcessed != 1 {
		t.Errorf("CalendarsProcessed = %d, want 1", rep.CalendarsProcessed)
	}
	if len(api.created) == 0 {
		t.Error("second calendar was not processed")
	}
}

func TestRunner_MalformedSampleSkipsCalendar(t *testing.T) {
	broken := sampleAppt("Ann", "Lee", "lee@example.com", "4pm")
	broken.Forms = nil

	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{7: {broken}},
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7}}, Options{Now: runStart})

	rep := runner.Run(context.Background())

	if rep.Failures != 1 {
		t.Errorf("Failures = %d, want 1", rep.Failures)
	}
	if rep.CalendarsProcessed != 0 {
		t.Errorf("CalendarsProcessed = %d, want 0", rep.CalendarsProcessed)
	}
	if len(api.created) != 0 {
		t.Errorf("created %d appointments, want 0", len(api.created))
	}
}

func TestRunner_DryRunRecordsPlanWithoutCreating(t *testing.T) {
	api := &mockAPI{
		sample: map[int64][]acuity.Appointment{
			7: weeklySample(5, "Ann", "Lee", "lee@example.com", "4pm"),
		},
		lookup: map[string][]acuity.Appointment{
			"lee@example.com": {{Time: "4pm", Datetime: "2024-12-01T10:00:00-0500"}},
		},
	}
	runner := NewRunner(api, []Staff{{CalendarID: 7}}, Options{Now: runStart, DryRun: true})

	rep := runner.Run(context.Background())

	if api.createCalls != 0 {
		t.Errorf("create calls = %d, want 0 in dry run", api.createCalls)
	}
	if len(rep.Planned) != 4 {
		t.Fatalf("Planned = %d lessons, want 4", len(rep.Planned))
	}
	if rep.Planned[0].Date.String() != "2024-12-08T10:00:00" {
		t.Errorf("Planned[0].Date = %s, want 2024-12-08T10:00:00", rep.Planned[0].Date)
	}
	if rep.Planned[0].Student.Email != "lee@example.com" {
		t.Errorf("Planned[0].Student.Email = %s", rep.Planned[0].Student.Email)
	}
}
