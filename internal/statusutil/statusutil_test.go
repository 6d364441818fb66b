package statusutil

import (
	"testing"

	"medapp-cli/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    model.Status
		wantErr bool
	}{
		{"scheduled", model.StatusScheduled, false},
		{"programada", model.StatusScheduled, false},
		{"EN_CURSO", model.StatusInProgress, false},
		{"in-progress", model.StatusInProgress, false},
		{" completada ", model.StatusCompleted, false},
		{"canceled", model.StatusCancelled, false},
		{"cancelada", model.StatusCancelled, false},
		{"no_asistio", "", true},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("NormalizeStatus(%q): expected error", tc.in)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("NormalizeStatus(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeStatus(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeFilter(t *testing.T) {
	for _, in := range []string{"", "all", "TODAS"} {
		got, err := NormalizeFilter(in)
		if err != nil || got != model.FilterAll {
			t.Fatalf("NormalizeFilter(%q): expected all, got %q (err=%v)", in, got, err)
		}
	}
	got, err := NormalizeFilter("programada")
	if err != nil || got != model.Filter(model.StatusScheduled) {
		t.Fatalf("NormalizeFilter(programada): got %q (err=%v)", got, err)
	}
	if _, err := NormalizeFilter("archived"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestWireNameRoundTrip(t *testing.T) {
	for _, s := range model.Statuses {
		got, err := NormalizeStatus(WireName(s))
		if err != nil {
			t.Fatalf("NormalizeStatus(WireName(%q)): %v", s, err)
		}
		if got != s {
			t.Fatalf("expected %q, got %q", s, got)
		}
	}
}

func TestCancellable(t *testing.T) {
	want := map[model.Status]bool{
		model.StatusScheduled:  true,
		model.StatusInProgress: true,
		model.StatusCompleted:  false,
		model.StatusCancelled:  false,
	}
	for s, w := range want {
		if got := Cancellable(s); got != w {
			t.Fatalf("Cancellable(%q): expected %v, got %v", s, w, got)
		}
	}
}
