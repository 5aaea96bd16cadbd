package chronicle

import (
	"strconv"

	"famchron/gramps"
)

// FormatDate renders short German style date: "12.5.1850", "5.1850" or
// "1850". Modifiers (about, before, ranges) are not shown, ranges render
// their start. Text-only dates render their text.
func FormatDate(d gramps.Date) string {
	if d.Modifier == gramps.ModTextOnly {
		return d.Text
	}
	if d.Year == 0 {
		return ""
	}
	year := strconv.Itoa(d.Year)
	switch {
	case d.Month == 0:
		return year
	case d.Day == 0:
		return strconv.Itoa(d.Month) + "." + year
	default:
		return strconv.Itoa(d.Day) + "." + strconv.Itoa(d.Month) + "." + year
	}
}
