package recur

// weeklyThreshold is how many sample-window occurrences mark a slot as
// weekly. The sample spans four weeks, so a weekly lesson shows up four or
// five times; anything rarer is treated as biweekly.
const weeklyThreshold = 4

// Cadence maps an occurrence count to the number of days between lessons.
// Two buckets only: weekly (7) or biweekly (14).
func Cadence(occurrences int) int {
	if occurrences >= weeklyThreshold {
		return 7
	}
	return 14
}
