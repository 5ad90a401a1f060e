package recur

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// NaiveLayout is the wire form of a zone-free datetime.
const NaiveLayout = "2006-01-02T15:04:05"

// NaiveTime is a wall-clock datetime with the zone stripped. The scheduling
// service books appointments on its own local clock and rejects offsets, so
// every projected date crosses this boundary before leaving the projector.
type NaiveTime time.Time

// StripZone drops t's zone, keeping its wall-clock reading. This is the
// single conversion point between zone-aware projection arithmetic and the
// naive datetimes the service consumes.
func StripZone(t time.Time) NaiveTime {
	return NaiveTime(t)
}

// Time returns the wall-clock reading pinned to UTC, for arithmetic and
// comparison in tests and rendering.
func (n NaiveTime) Time() time.Time {
	t := time.Time(n)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (n NaiveTime) String() string {
	return time.Time(n).Format(NaiveLayout)
}

func (n NaiveTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// Project generates the student's future lesson datetimes: anchor plus one
// cadence, then each successive cadence step, ending strictly before cutoff.
// The anchor itself is never re-emitted, and the result is empty when the
// first step already reaches the cutoff.
//
// The sequence is a plain daily recurrence rule with the cadence as its
// interval; enumerating it with both bounds exclusive yields exactly the
// dates strictly inside (anchor, cutoff).
func Project(anchor time.Time, cadenceDays int, cutoff time.Time) ([]NaiveTime, error) {
	if cadenceDays <= 0 {
		return nil, fmt.Errorf("project: cadence must be positive, got %d", cadenceDays)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: cadenceDays,
		Dtstart:  anchor,
	})
	if err != nil {
		return nil, fmt.Errorf("project: build recurrence rule: %w", err)
	}

	steps := r.Between(anchor, cutoff, false)
	out := make([]NaiveTime, 0, len(steps))
	for _, t := range steps {
		out = append(out, StripZone(t))
	}
	return out, nil
}
