package preview

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"recurbook/internal/recur"
)

// previewBlock is the rendered length of each event. Slot length is not part
// of the sampled data, so the preview uses a fixed block.
const previewBlock = 45 * time.Minute

// WritePlan renders a dry run's planned appointments as an iCalendar so the
// projection can be inspected in any calendar app before a live run. Events
// carry the wall-clock datetimes the creator would submit, read as UTC.
func WritePlan(w io.Writer, planned []recur.PlannedLesson, generatedAt time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//recurbook//projection preview//EN")

	for i, p := range planned {
		ev := cal.AddEvent(fmt.Sprintf("plan-%04d@recurbook", i))
		ev.SetDtStampTime(generatedAt)
		ev.SetCreatedTime(generatedAt)
		ev.SetStartAt(p.Date.Time())
		ev.SetEndAt(p.Date.Time().Add(previewBlock))
		ev.SetSummary(fmt.Sprintf("%s %s: %s lesson", p.Student.FirstName, p.Student.LastName, p.Student.Time))
		ev.SetDescription(fmt.Sprintf("calendar %d, every %d days", p.Student.CalendarID, recur.Cadence(p.Student.Occurrences)))
	}

	return cal.SerializeTo(w)
}
