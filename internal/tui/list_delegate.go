package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"medapp-cli/internal/format"
	"medapp-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type visitItem struct {
	rec model.VisitRecord
	now time.Time
}

func (i visitItem) FilterValue() string { return i.rec.Title }

type patientItem struct {
	p model.Patient
}

func (i patientItem) FilterValue() string { return i.p.Name }

// visitDelegate renders one timeline row: marker, date, badge, title and doctor.
type visitDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	dimmed   lipgloss.Style
}

func newVisitDelegate() visitDelegate {
	return visitDelegate{
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		dimmed:   styleMuted(),
	}
}

func (d visitDelegate) Height() int                             { return 1 }
func (d visitDelegate) Spacing() int                            { return 0 }
func (d visitDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d visitDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(visitItem)
	if !ok {
		return
	}
	r := it.rec
	p := r.Presentation

	badge := lipgloss.NewStyle().Foreground(statusColor(r.Status)).Bold(true).Render(fmt.Sprintf("%-11s", p.BadgeLabel))
	marker := lipgloss.NewStyle().Foreground(statusColor(r.Status)).Render(glyphMarker(p.MarkerIcon))

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "Visit " + r.ID
	}
	parts := []string{marker, fmt.Sprintf("%-11s", format.ShortDateTime(r.At)), badge, title}
	if r.Doctor != "" {
		parts = append(parts, styleMuted().Render(r.Doctor))
	}
	if format.IsRecent(r.At, it.now) && r.Status != model.StatusCancelled {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorAccent).Render(glyphNew()))
	}
	line := " " + strings.Join(parts, " ")

	style := d.normal
	switch {
	case index == m.Index():
		style = d.selected
	case p.Dimmed:
		style = d.dimmed
	}
	fmt.Fprint(w, style.Render(fitLine(line, m.Width())))
}

type patientDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newPatientDelegate() patientDelegate {
	return patientDelegate{
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
	}
}

func (d patientDelegate) Height() int                             { return 1 }
func (d patientDelegate) Spacing() int                            { return 0 }
func (d patientDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d patientDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(patientItem)
	if !ok {
		return
	}
	p := it.p
	parts := []string{fmt.Sprintf("%-6s", p.ID), p.Name}
	if p.Age != "" {
		parts = append(parts, styleMuted().Render(p.Age))
	}
	if p.Phone != "" {
		parts = append(parts, format.Phone(p.Phone))
	}
	if p.Email != "" {
		parts = append(parts, styleMuted().Render(p.Email))
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(fitLine(" "+strings.Join(parts, "  "), m.Width())))
}

// fitLine pads or cuts s (ANSI-aware) to exactly width columns.
func fitLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := xansi.StringWidth(s)
	switch {
	case w < width:
		return s + strings.Repeat(" ", width-w)
	case w > width:
		return xansi.Truncate(s, width, "…")
	}
	return s
}
