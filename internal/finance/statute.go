package finance

import "time"

// statuteYears is the fixed limitations period applied to every case.
const statuteYears = 2

// StatuteDeadline returns date of loss + 2 calendar years, using the
// standard library's AddDate semantics for the Feb 29 shift. A missing
// date of loss yields nil — never a fabricated date, never a panic.
func StatuteDeadline(dateOfLoss *time.Time) *time.Time {
	if dateOfLoss == nil {
		return nil
	}
	d := dateOfLoss.AddDate(statuteYears, 0, 0)
	return &d
}
