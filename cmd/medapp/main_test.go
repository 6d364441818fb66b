package main

import (
	"reflect"
	"testing"
)

func TestRewritePatientShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"medapp"},
			want: []string{"medapp"},
		},
		{
			name: "patient id first token",
			in:   []string{"medapp", "42"},
			want: []string{"medapp", "history", "42"},
		},
		{
			name: "patient id after value flag",
			in:   []string{"medapp", "--base-url", "https://clinic.test/", "42"},
			want: []string{"medapp", "--base-url", "https://clinic.test/", "history", "42"},
		},
		{
			name: "patient id after equals flag",
			in:   []string{"medapp", "--toast-ttl=5s", "42"},
			want: []string{"medapp", "--toast-ttl=5s", "history", "42"},
		},
		{
			name: "patient id after bool flag",
			in:   []string{"medapp", "--pretty", "42"},
			want: []string{"medapp", "--pretty", "history", "42"},
		},
		{
			name: "numeric flag value is not an id",
			in:   []string{"medapp", "--rate-limit", "3"},
			want: []string{"medapp", "--rate-limit", "3"},
		},
		{
			name: "patient id after double dash",
			in:   []string{"medapp", "--", "42"},
			want: []string{"medapp", "history", "--", "42"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"medapp", "visits", "list", "42"},
			want: []string{"medapp", "visits", "list", "42"},
		},
		{
			name: "non-numeric token not rewritten",
			in:   []string{"medapp", "wat"},
			want: []string{"medapp", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewritePatientShortcutArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewritePatientShortcutArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
