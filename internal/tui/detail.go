package tui

import (
	"strings"

	"medapp-cli/internal/format"
	"medapp-cli/internal/model"
)

// visitMarkdown is the detail pane source for one visit.
func visitMarkdown(r model.VisitRecord) string {
	var b strings.Builder
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "Visit " + r.ID
	}
	b.WriteString("## " + title + "\n\n")

	b.WriteString("- **Status:** " + r.Presentation.BadgeLabel + "\n")
	if d := format.LongDate(r.At); d != "" {
		when := d
		if r.At.Hour() != 0 || r.At.Minute() != 0 {
			when += ", " + r.At.Format("15:04")
		}
		b.WriteString("- **Date:** " + when + "\n")
	}
	if r.Doctor != "" {
		b.WriteString("- **Doctor:** " + r.Doctor + "\n")
	}
	b.WriteString("- **Visit id:** `" + r.ID + "`\n")

	if a := r.Presentation.Alert; a != nil {
		b.WriteString("\n> **" + a.Title + "**")
		if a.Detail != "" {
			b.WriteString("  \n> " + a.Detail)
		}
		b.WriteString("\n")
	}

	if body := strings.TrimSpace(r.Body); body != "" {
		b.WriteString("\n" + body + "\n")
	}

	var actions []string
	for _, a := range r.Presentation.Actions {
		if k := actionKey(a.Kind); k != "" && !a.Disabled {
			actions = append(actions, "`"+k+"` "+strings.ToLower(a.Label))
		}
	}
	if len(actions) > 0 {
		b.WriteString("\n" + strings.Join(actions, " · ") + "\n")
	}
	return b.String()
}

func actionKey(k model.ActionKind) string {
	switch k {
	case model.ActionEdit:
		return "e"
	case model.ActionCancel:
		return "c"
	case model.ActionPrint:
		return "p"
	default:
		return ""
	}
}
