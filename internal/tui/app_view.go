package tui

import (
	"fmt"
	"strings"

	"medapp-cli/internal/model"
	"medapp-cli/internal/patients"
	"medapp-cli/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var body string
	if m.screen == screenPatients {
		body = m.viewPatients()
	} else {
		body = m.viewHistory()
	}
	body = normalizePane(body, m.width, m.height-1) + "\n" + m.viewToast()

	switch m.modal {
	case modalConfirmCancel:
		if m.sync == nil {
			break
		}
		if c, ok := m.sync.Confirmation(m.modalVisitID); ok {
			spin := ""
			if c.ConfirmDisabled {
				spin = m.spinner.View()
			}
			modal := renderCancelVisitModal(m.width, c, m.reason.View(), spin, m.modalFocus)
			return overlayCenter(body, modal, m.width, m.height)
		}
	case modalConfirmEditPatient:
		who := m.patient.Name
		if who == "" {
			who = "patient " + m.patient.ID
		}
		modal := renderConfirmModal(m.width, "Edit patient",
			"Edit the information of "+who+"? The editor opens in your browser.",
			"Open editor", "Back", m.modalFocus)
		return overlayCenter(body, modal, m.width, m.height)
	}
	return body
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleError  = lipgloss.NewStyle().Foreground(colorCancelled)
)

func (m appModel) viewPatients() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Patients") + "\n\n")
	b.WriteString(renderSearchLine(m.width-2, m.search.View()) + "\n\n")

	q := strings.TrimSpace(m.search.Value())
	switch {
	case m.searchLoading:
		b.WriteString(styleMuted().Render(m.spinner.View()+" Searching...") + "\n")
	case m.searchErr != "":
		b.WriteString(styleError.Render(m.searchErr) + "\n")
	case q == "":
		b.WriteString(styleMuted().Render(fmt.Sprintf("Type at least %d characters to search.", patients.MinQueryLen)) + "\n")
	case len(m.patientList.Items()) == 0 && m.searchQuery != "":
		b.WriteString(styleMuted().Render("No patients match "+fmt.Sprintf("%q", m.searchQuery)) + "\n")
	default:
		b.WriteString(m.patientList.View() + "\n")
	}
	b.WriteString("\n" + styleMuted().Render("enter: open history   esc: clear   ctrl+r: refresh   ctrl+c: quit"))
	return b.String()
}

func (m appModel) viewHistory() string {
	var b strings.Builder

	name := strings.TrimSpace(m.patient.Name)
	if name == "" {
		name = "Patient"
	}
	b.WriteString(styleHeader.Render("Visit history · "+name) + " " + styleMuted().Render("#"+m.patient.ID) + "\n")

	if m.view == nil {
		switch {
		case m.loading:
			b.WriteString("\n" + m.spinner.View() + " Loading visits...\n")
		case m.loadErr != "":
			b.WriteString("\n" + styleError.Render(m.loadErr) + "\n" + styleMuted().Render("r: retry   esc: back") + "\n")
		}
		return b.String()
	}

	b.WriteString(m.viewTabs() + "\n")
	b.WriteString(m.viewTiles() + "\n")

	listW, listH := m.visitList.Width(), m.visitList.Height()
	if ph := m.view.Placeholder(); ph != nil {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			styleHeader.Render(ph.Title),
			styleMuted().Render(ph.Hint),
		)
		b.WriteString(lipgloss.Place(m.width, listH, lipgloss.Center, lipgloss.Center, empty) + "\n")
	} else {
		left := normalizePane(m.visitList.View(), listW, listH)
		if detailW := m.width - listW - 1; detailW >= 30 {
			detail := ""
			if r, ok := m.selectedVisit(); ok {
				detail = renderMarkdown(visitMarkdown(r), detailW-2)
			}
			sep := styleMuted().Render(strings.Repeat("│\n", listH-1) + "│")
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, sep, normalizePane(detail, detailW, listH)) + "\n")
		} else {
			b.WriteString(left + "\n")
		}
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m appModel) viewTabs() string {
	tabs := m.view.Tabs()
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s %d", i+1, t.Label, t.Count)
		st := lipgloss.NewStyle().Padding(0, 1)
		if t.Selected {
			st = st.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
		} else {
			st = st.Foreground(colorChromeFg)
		}
		parts = append(parts, st.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// viewTiles renders the quick-stat tiles from the on-screen counter surface.
func (m appModel) viewTiles() string {
	tiles := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		n := m.board.snap.Count(model.Filter(s))
		tile := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorCardBorder).
			Padding(0, 1).
			Render(lipgloss.NewStyle().Bold(true).Foreground(statusColor(s)).Render(fmt.Sprintf("%d", n)) +
				" " + statusutil.Label(s))
		tiles = append(tiles, tile)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func (m appModel) viewFooter() string {
	more := "m: load more"
	if m.loadingMore {
		more = m.spinner.View() + " Loading..."
	}
	status := ""
	if m.loading {
		status = "  " + m.spinner.View() + " refreshing"
	}
	if m.skipped > 0 {
		status += fmt.Sprintf("  (%d entries not shown)", m.skipped)
	}
	help := "tab/1-5: filter   c: cancel   e: edit   p: print   E: edit patient   r: reload   q: quit"
	if m.cameFromList {
		help += "   esc: back"
	}
	return styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 1))) + "\n" +
		more + styleMuted().Render(status) + "\n" + styleMuted().Render(help)
}

func (m appModel) viewToast() string {
	if m.toast == nil {
		return ""
	}
	st := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color("255")).
		Background(toastColor(m.toast.Kind))
	return st.Render(m.toast.Message)
}
