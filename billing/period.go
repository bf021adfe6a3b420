package billing

import (
	"fmt"
	"time"
)

// Date builds a date-only UTC timestamp. All period and work-log dates are
// stored this way so inclusive range queries and equality checks behave.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last day of a calendar month.
func MonthBounds(year int, month time.Month) (from, to time.Time) {
	from = Date(year, month, 1)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// ResolvePeriod determines the billing period and issue date for a monthly
// run. monthOpt is "YYYY-MM" or empty, issuedOpt is "YYYY-MM-DD" or empty.
//
// Without an explicit month, a run on the 1st bills the previous month (the
// usual cron setup) and the issue date defaults to yesterday; on any other
// day the current month is billed and issued today.
func ResolvePeriod(monthOpt, issuedOpt string, today time.Time) (from, to, issued time.Time, err error) {
	today = Date(today.Year(), today.Month(), today.Day())

	if monthOpt != "" {
		parsed, perr := time.Parse("2006-01", monthOpt)
		if perr != nil {
			return from, to, issued, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", monthOpt, perr)
		}
		from, to = MonthBounds(parsed.Year(), parsed.Month())
	} else if today.Day() == 1 {
		prev := today.AddDate(0, 0, -1)
		from, to = MonthBounds(prev.Year(), prev.Month())
	} else {
		from, to = MonthBounds(today.Year(), today.Month())
	}

	if issuedOpt != "" {
		issued, err = time.Parse("2006-01-02", issuedOpt)
		if err != nil {
			return from, to, issued, fmt.Errorf("invalid issued date %q, expected YYYY-MM-DD: %w", issuedOpt, err)
		}
	} else if today.Day() == 1 {
		issued = today.AddDate(0, 0, -1)
	} else {
		issued = today
	}

	return from, to, issued, nil
}
