package gramps

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateModifier qualifies date value.
type DateModifier int

const (
	ModNone DateModifier = iota
	ModBefore
	ModAfter
	ModAbout
	ModRange
	ModSpan
	ModTextOnly
)

var modifierNames = [...]string{"none", "before", "after", "about", "range", "span", "textonly"}

func (m DateModifier) String() string {
	if m < 0 || int(m) >= len(modifierNames) {
		return fmt.Sprintf("DateModifier(%d)", m)
	}
	return modifierNames[m]
}

// ParseDateModifier accepts names produced by String and Gramps dateval type
// attribute values ("", "before", "after", "about").
func ParseDateModifier(name string) (DateModifier, error) {
	if name == "" {
		return ModNone, nil
	}
	for i, n := range modifierNames {
		if n == name {
			return DateModifier(i), nil
		}
	}
	return ModNone, fmt.Errorf("unknown date modifier %q", name)
}

// DateQuality as recorded by Gramps, informational only.
type DateQuality string

const (
	QualityRegular    DateQuality = ""
	QualityEstimated  DateQuality = "estimated"
	QualityCalculated DateQuality = "calculated"
)

// Date is Gramps date value. Unknown components are zero. For ranges and
// spans the first date is the start, Stop* fields keep the second one.
type Date struct {
	Modifier DateModifier
	Quality  DateQuality
	Day      int
	Month    int
	Year     int

	StopDay   int
	StopMonth int
	StopYear  int

	// free text for text-only dates
	Text string
}

// IsEmpty is true when date carries neither components nor text.
func (d Date) IsEmpty() bool {
	return d.Day == 0 && d.Month == 0 && d.Year == 0 && d.Text == ""
}

// Time returns moment usable for ordering. Dates without year cannot be
// ordered. Missing day or month is coerced to 1.
func (d Date) Time() (time.Time, bool) {
	if d.Year == 0 || d.Modifier == ModTextOnly {
		return time.Time{}, false
	}
	return makeTime(d.Day, d.Month, d.Year), true
}

// StopTime returns end of range or span, for other dates it is the same as
// Time.
func (d Date) StopTime() (time.Time, bool) {
	if (d.Modifier == ModRange || d.Modifier == ModSpan) && d.StopYear != 0 {
		return makeTime(d.StopDay, d.StopMonth, d.StopYear), true
	}
	return d.Time()
}

func makeTime(day, month, year int) time.Time {
	day, month = max(day, 1), max(month, 1)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Covers reports whether moment t falls into the period this date describes.
// Empty date covers everything.
func (d Date) Covers(t time.Time) bool {
	if d.IsEmpty() {
		return true
	}
	start, ok := d.Time()
	if !ok {
		return false
	}
	switch d.Modifier {
	case ModBefore:
		return !t.After(start)
	case ModAfter:
		return !t.Before(start)
	case ModRange, ModSpan:
		stop, _ := d.StopTime()
		return !t.Before(start) && !t.After(stop)
	default:
		return t.Year() == start.Year()
	}
}

// ParseDateValue parses Gramps "YYYY", "YYYY-MM" or "YYYY-MM-DD" value.
// Components written as zeros or question marks are treated as unknown.
func ParseDateValue(s string) (day, month, year int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return 0, 0, 0, fmt.Errorf("malformed date value %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		if strings.Trim(p, "?") == "" {
			continue
		}
		if vals[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, fmt.Errorf("malformed date value %q: %w", s, err)
		}
	}
	year, month, day = vals[0], vals[1], vals[2]
	if month < 0 || month > 12 || day < 0 || day > 31 {
		return 0, 0, 0, fmt.Errorf("date value %q out of range", s)
	}
	return day, month, year, nil
}

// FormatDateValue is reverse of ParseDateValue.
func FormatDateValue(day, month, year int) string {
	switch {
	case day != 0:
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	case month != 0:
		return fmt.Sprintf("%04d-%02d", year, month)
	default:
		return fmt.Sprintf("%04d", year)
	}
}
