package tui

import (
	"strings"
	"testing"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/viewstate"
)

func TestMarkdownStyle_EnvOverride(t *testing.T) {
	t.Setenv("MEDAPP_TUI_MD_STYLE", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv("MEDAPP_TUI_MD_STYLE", "ascii")
	if got := markdownStyle(); got != "notty" {
		t.Fatalf("expected notty; got %q", got)
	}
}

func TestVisitMarkdown_CancelledShowsAlertAndNoActions(t *testing.T) {
	at := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
	r := model.VisitRecord{ID: "11", Status: model.StatusCancelled, Title: "Control", Doctor: "Dr. Ruiz", At: &at}
	r.Presentation = viewstate.PresentationFor(model.StatusScheduled)
	r.Presentation.BadgeLabel = "Cancelled"
	r.Presentation.Alert = &model.Alert{Title: "Visit cancelled", Detail: "Reason: no show"}
	r.Presentation.Actions = []model.Action{{Kind: model.ActionCancelled, Label: "Cancelled", Disabled: true}}

	md := visitMarkdown(r)
	for _, want := range []string{"## Control", "**Status:** Cancelled", "October 20, 2026, 09:30", "Dr. Ruiz", "> **Visit cancelled**", "Reason: no show"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "`c`") || strings.Contains(md, "`e`") {
		t.Fatalf("cancelled visit must not offer edit or cancel keys:\n%s", md)
	}
}

func TestVisitMarkdown_ScheduledListsActionKeys(t *testing.T) {
	r := model.VisitRecord{ID: "12", Status: model.StatusScheduled, Presentation: viewstate.PresentationFor(model.StatusScheduled)}
	md := visitMarkdown(r)
	if !strings.Contains(md, "## Visit 12") {
		t.Fatalf("expected fallback title:\n%s", md)
	}
	if !strings.Contains(md, "`e` edit") || !strings.Contains(md, "`c` cancel") {
		t.Fatalf("expected edit and cancel keys:\n%s", md)
	}
}

func TestRenderMarkdown_Plain(t *testing.T) {
	t.Setenv("MEDAPP_TUI_MD_STYLE", "notty")
	out := renderMarkdown("## Control\n\nTodo bien", 40)
	if !strings.Contains(out, "Control") || !strings.Contains(out, "Todo bien") {
		t.Fatalf("unexpected render:\n%s", out)
	}
	if renderMarkdown("   ", 40) != "" {
		t.Fatalf("blank input should render empty")
	}
}
