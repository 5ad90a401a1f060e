package recur

import "time"

// Lead times and spans of the run's three date windows, all anchored to the
// run start. The lookup window's upper bound is computed from the sample
// start, not the run start, so it lands 56 weeks out.
const (
	sampleLeadWeeks = 20
	sampleSpanWeeks = 4
	lookupLeadWeeks = 24
	lookupSpanWeeks = 36
	horizonWeeks    = 52
)

const week = 7 * 24 * time.Hour

// Windows holds the concrete date ranges of one run, derived once from the
// run-start instant and shared by every calendar and student in that run.
type Windows struct {
	// SampleStart/SampleEnd bound the per-calendar sample fetch used to
	// infer candidates and their cadence.
	SampleStart time.Time
	SampleEnd   time.Time

	// LookupStart/LookupEnd bound the per-student fetch used to locate the
	// last booked occurrence.
	LookupStart time.Time
	LookupEnd   time.Time

	// Cutoff is the exclusive upper bound of projected dates: one year from
	// run start.
	Cutoff time.Time
}

// NewWindows derives the run's windows from now, which callers are expected
// to capture once in UTC at run start.
func NewWindows(now time.Time) Windows {
	sampleStart := now.Add(sampleLeadWeeks * week)
	return Windows{
		SampleStart: sampleStart,
		SampleEnd:   sampleStart.Add(sampleSpanWeeks * week),
		LookupStart: now.Add(lookupLeadWeeks * week),
		LookupEnd:   sampleStart.Add(lookupSpanWeeks * week),
		Cutoff:      now.Add(horizonWeeks * week),
	}
}
