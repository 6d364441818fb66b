package format

import (
	"testing"
	"time"
)

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"5551234567":     "(555) 123-4567",
		" 555-123-4567 ": "(555) 123-4567",
		"+52 55 1234":    "+52 55 1234",
		"":               "",
		"(555) 123-4567": "(555) 123-4567",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Fatalf("Phone(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestDates(t *testing.T) {
	at := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	if got := LongDate(&at); got != "January 2, 2025" {
		t.Fatalf("LongDate=%q", got)
	}
	if got := ShortDateTime(&at); got != "Jan 2" {
		t.Fatalf("ShortDateTime=%q", got)
	}
	withTime := at.Add(14*time.Hour + 30*time.Minute)
	if got := ShortDateTime(&withTime); got != "Jan 2 14:30" {
		t.Fatalf("ShortDateTime=%q", got)
	}
	if LongDate(nil) != "" || ShortDateTime(nil) != "" {
		t.Fatalf("nil time should render empty")
	}
}

func TestIsRecent(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-3 * 24 * time.Hour)
	old := now.Add(-8 * 24 * time.Hour)
	future := now.Add(time.Hour)
	if !IsRecent(&recent, now) {
		t.Fatalf("3 days ago should be recent")
	}
	if IsRecent(&old, now) || IsRecent(&future, now) || IsRecent(nil, now) {
		t.Fatalf("unexpected recent")
	}
}
