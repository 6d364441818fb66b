package tui

import (
	"strings"

	"medapp-cli/internal/viewstate"

	"github.com/charmbracelet/lipgloss"
)

func modalBodyWidth(width int) int {
	w := width - 12
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(width int, title, content string) string {
	bodyW := modalBodyWidth(width)
	header := lipgloss.NewStyle().
		Width(bodyW).
		Bold(true).
		Foreground(colorSurfaceFg).
		Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorModalBorder).
		Padding(0, 1).
		Width(bodyW + 2)
	return box.Render(header + "\n\n" + content)
}

func renderButtons(confirmLabel, cancelLabel string, focus confirmModalFocus, confirmDisabled bool) string {
	// No borders on buttons: nested borders inside a modal leave artifacts on some terminals.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	btnDisabled := btnBase.Foreground(colorMuted)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	switch {
	case confirmDisabled:
		confirm = btnDisabled.Render(confirmLabel)
	case focus == confirmFocusConfirm:
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel && !confirmDisabled {
		cancel = btnActive.Render(cancelLabel)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	help := styleMuted().Width(modalBodyWidth(width)).Render("tab: focus   enter: select   esc: back")
	content := strings.Join([]string{
		body,
		"",
		renderButtons(confirmLabel, cancelLabel, focus, false),
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

// renderCancelVisitModal projects the synchronizer's confirmation surface.
func renderCancelVisitModal(width int, c viewstate.Confirmation, reasonView, spinnerView string, focus confirmModalFocus) string {
	bodyW := modalBodyWidth(width)
	who := "this patient"
	if c.PatientName != "" {
		who = c.PatientName
	}
	body := lipgloss.NewStyle().Width(bodyW).Render(
		"Cancel visit " + c.VisitID + " for " + who + "? The server records the cancellation; it cannot be undone here.")

	label := c.ConfirmLabel
	if c.ConfirmDisabled && spinnerView != "" {
		label = spinnerView + " " + label
	}
	helpText := "tab: focus   ctrl+s: confirm   esc: keep visit"
	if c.ConfirmDisabled {
		helpText = "waiting for the server..."
	}
	content := strings.Join([]string{
		body,
		"",
		reasonView,
		"",
		renderButtons(label, "Keep visit", focus, c.ConfirmDisabled),
		"",
		styleMuted().Width(bodyW).Render(helpText),
	}, "\n")
	return renderModalBox(width, "Cancel visit", content)
}
