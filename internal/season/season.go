// Package season resolves free-text dates and matches them against
// product availability ranges.
package season

import (
	"regexp"
	"strconv"
	"strings"
)

// Date is a month/day pair within an unspecified year.
type Date struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

// daysInMonth allows Feb 29 so leap-day events are accepted.
var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Valid reports whether the month/day combination exists on a calendar.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= daysInMonth[d.Month-1]
}

// Season names anchor to a fixed mid-season date.
var seasonAnchors = map[string]Date{
	"spring": {3, 20},
	"summer": {6, 21},
	"fall":   {9, 22},
	"autumn": {9, 22},
	"winter": {12, 21},
}

// Month names anchor to the 15th.
var monthNumbers = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9, "sept": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

var (
	namedDateRe   = regexp.MustCompile(`([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?`)
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)
)

// Resolve turns free text like "spring", "May", "October 15" or "10/15"
// into a Date. The second return value is false when the input cannot be
// parsed, meaning no date constraint should be applied.
func Resolve(input string) (Date, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Date{}, false
	}

	if d, ok := seasonAnchors[s]; ok {
		return d, true
	}
	if m, ok := monthNumbers[s]; ok {
		return Date{Month: m, Day: 15}, true
	}

	if m := namedDateRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNumbers[m[1]]; ok {
			day, _ := strconv.Atoi(m[2])
			d := Date{Month: month, Day: day}
			if d.Valid() {
				return d, true
			}
		}
	}
	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d := Date{Month: month, Day: day}
		if d.Valid() {
			return d, true
		}
	}

	return Date{}, false
}

// Range is one availability window within a calendar year, boundaries
// inclusive. A zero Range means the slot is unset and never matches.
//
// Ranges are assumed not to cross the year boundary: upstream data
// preparation splits spans like Nov 15 to Feb 20 into two slots. Wraps
// flags rows that violate that assumption.
type Range struct {
	StartMonth int `json:"start_month,omitempty"`
	StartDay   int `json:"start_day,omitempty"`
	EndMonth   int `json:"end_month,omitempty"`
	EndDay     int `json:"end_day,omitempty"`
}

// IsZero reports whether the range slot is unset.
func (r Range) IsZero() bool {
	return r.StartMonth == 0 && r.StartDay == 0 && r.EndMonth == 0 && r.EndDay == 0
}

// Valid reports whether both endpoints are real calendar dates.
func (r Range) Valid() bool {
	return Date{r.StartMonth, r.StartDay}.Valid() && Date{r.EndMonth, r.EndDay}.Valid()
}

// Wraps reports whether the range appears to span a year boundary
// (start after end), which this matcher cannot represent.
func (r Range) Wraps() bool {
	if !r.Valid() {
		return false
	}
	return r.StartMonth > r.EndMonth ||
		(r.StartMonth == r.EndMonth && r.StartDay > r.EndDay)
}

// Contains reports whether the date falls inside the range, boundaries
// inclusive. Unset or malformed ranges never match.
func (r Range) Contains(d Date) bool {
	if !r.Valid() || !d.Valid() {
		return false
	}
	afterStart := r.StartMonth < d.Month ||
		(r.StartMonth == d.Month && r.StartDay <= d.Day)
	beforeEnd := r.EndMonth > d.Month ||
		(r.EndMonth == d.Month && r.EndDay >= d.Day)
	return afterStart && beforeEnd
}

// Available reports whether a product with the given year-round flag and
// availability ranges can be delivered on the date. Year-round
// short-circuits every range check.
func Available(yearRound bool, ranges []Range, d Date) bool {
	if yearRound {
		return true
	}
	for _, r := range ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}
