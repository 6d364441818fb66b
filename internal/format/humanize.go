package format

import (
	"strings"
	"time"
)

// RecentWindow is how far back a visit still counts as new.
const RecentWindow = 7 * 24 * time.Hour

// Phone renders ten-digit numbers as (555) 123-4567. Anything else is returned trimmed.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var d strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			d.WriteRune(r)
		}
	}
	digits := d.String()
	if len(digits) != 10 {
		return s
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// LongDate is "January 2, 2006". A nil time renders empty.
func LongDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// ShortDateTime is "Jan 2 15:04", or "Jan 2" when the time is midnight.
func ShortDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2 15:04")
}

// IsRecent reports whether t falls within RecentWindow before now.
func IsRecent(t *time.Time, now time.Time) bool {
	if t == nil || t.IsZero() || t.After(now) {
		return false
	}
	return now.Sub(*t) <= RecentWindow
}
