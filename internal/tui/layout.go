package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall, so split panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		// Bound the width computation on pathological lines.
		if width > 0 && len(ln) > 8192 {
			ln = xansi.Cut(ln, 0, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// overlayCenter places the modal over the middle of the screen, replacing the
// background lines it covers.
func overlayCenter(bg, fg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return bg + "\n" + fg
	}
	bgLines := strings.Split(normalizePane(bg, width, height), "\n")
	fgW := lipgloss.Width(fg)
	fgLines := strings.Split(normalizePane(fg, fgW, 0), "\n")
	left := (width - fgW) / 2
	if left < 0 {
		left = 0
	}
	top := (height - len(fgLines)) / 2
	if top < 0 {
		top = 0
	}
	for i, fl := range fgLines {
		y := top + i
		if y >= len(bgLines) {
			break
		}
		row := bgLines[y]
		right := xansi.Cut(row, left+fgW, width)
		bgLines[y] = xansi.Cut(row, 0, left) + fl + right
	}
	return strings.Join(bgLines, "\n")
}

// renderSearchLine draws a single-line input on a filled background of exactly width
// columns.
func renderSearchLine(width int, inputView string) string {
	width = max(width, 10)
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(width, lipgloss.Left, " "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		// Reset styling so a cut cursor does not bleed into the next line.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
