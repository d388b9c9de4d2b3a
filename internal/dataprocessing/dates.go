package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizpulse/pkg/contracts/domain"
)

// fallbackLayouts are tried, in order, for strings that match none of the
// structured formats. Mirrors the lenient date constructor the uploads were
// originally written against.
var fallbackLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2006/01/02",
	"02.01.2006",
	time.RFC1123,
	time.RFC822,
}

// ParseFlexible converts a textual date of unknown format into a calendar
// date. Formats are tried in precedence order: DD/MM/YYYY (the primary
// format of this domain's uploads), then YYYY-MM-DD, then ISO 8601
// date-time, then a list of lenient fallbacks. The second return value is
// false when every strategy fails or yields an impossible date.
//
// Two-digit years are not normalized: "01/01/25" parses as year 25.
func ParseFlexible(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) == 3 {
			day, errD := strconv.Atoi(strings.TrimSpace(parts[0]))
			month, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
			year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
			if errD != nil || errM != nil || errY != nil {
				return time.Time{}, false
			}
			if month < 1 || month > 12 || day < 1 || day > 31 {
				return time.Time{}, false
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// Reject dates time.Date had to normalize, e.g. 30/02.
			if t.Day() != day || int(t.Month()) != month {
				return time.Time{}, false
			}
			return t, true
		}
		// A slash string with other than 3 parts falls through to the
		// remaining rules, which will only succeed via the fallbacks.
	}

	if strings.Contains(s, "-") {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FilterByRange returns the records whose date field parses and falls within
// the range, inclusive on both ends at time resolution. Callers wanting
// day-level inclusivity must normalize the end bound to end of day; the
// month-option generator and the custom-range binding already do.
//
// When either bound is missing the input is returned unmodified. The input
// slice is never mutated and relative order is preserved. Records with
// unparsable dates are silently excluded.
func FilterByRange(records []domain.BalanceRecord, r domain.DateRange) []domain.BalanceRecord {
	if r.IsZero() || records == nil {
		return records
	}

	filtered := make([]domain.BalanceRecord, 0, len(records))
	for _, rec := range records {
		t, ok := ParseFlexible(rec.Date)
		if !ok {
			continue
		}
		if r.Contains(t) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// MonthOptions produces the date-range picker menu: the current calendar
// month plus the preceding monthsBack months, each resolved to its first and
// last day. The end bound is normalized to end of day so the range is
// inclusive at day granularity. Pure for a given now.
func MonthOptions(now time.Time, monthsBack int) []domain.MonthOption {
	options := make([]domain.MonthOption, 0, monthsBack+1)

	options = append(options, domain.MonthOption{
		Value: "current",
		Label: "Current Month",
		Start: startOfMonth(now, 0),
		End:   endOfMonth(now, 0),
	})

	for i := 1; i <= monthsBack; i++ {
		start := startOfMonth(now, -i)
		plural := ""
		if i > 1 {
			plural = "s"
		}
		options = append(options, domain.MonthOption{
			Value: fmt.Sprintf("%dmonth", i),
			Label: fmt.Sprintf("%s (%d month%s ago)", start.Format("January 2006"), i, plural),
			Start: start,
			End:   endOfMonth(now, -i),
		})
	}

	return options
}

// CustomRange resolves an arbitrary user-supplied range. Both bounds must be
// present and parseable; the end bound is normalized to end of day.
func CustomRange(start, end string) (domain.DateRange, bool) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return domain.DateRange{}, false
	}
	s, ok := ParseFlexible(start)
	if !ok {
		return domain.DateRange{}, false
	}
	e, ok := ParseFlexible(end)
	if !ok {
		return domain.DateRange{}, false
	}
	if e.Before(s) {
		return domain.DateRange{}, false
	}
	return domain.DateRange{Start: s, End: endOfDay(e)}, true
}

func startOfMonth(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
}

// endOfMonth resolves the last calendar day via day-zero-of-next-month
// arithmetic, which handles month length and leap years.
func endOfMonth(now time.Time, offset int) time.Time {
	firstOfNext := time.Date(now.Year(), now.Month()+time.Month(offset)+1, 1, 0, 0, 0, 0, now.Location())
	return firstOfNext.Add(-time.Nanosecond)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
}
