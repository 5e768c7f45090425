package delivery

import "time"

// AddBusinessDays advances a date by n non-weekend days, stepping one
// calendar day at a time and skipping Saturdays and Sundays. The result
// never lands on a weekend for n > 0.
func AddBusinessDays(date time.Time, n int) time.Time {
	result := date
	for added := 0; added < n; {
		result = result.AddDate(0, 0, 1)
		if !isWeekend(result) {
			added++
		}
	}
	return result
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
