package format

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular payloads can be rendered with --format table.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

func WriteTable(w io.Writer, v any) error {
	var hints []string
	data := v
	switch env := v.(type) {
	case Envelope:
		data, hints = env.Data, env.Hints
	case *Envelope:
		data, hints = env.Data, env.Hints
	}

	tab, ok := data.(Tabular)
	if !ok {
		return WriteJSON(w, v, true)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tab.TableHeaders()...).
		Rows(tab.TableRows()...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	for _, h := range hints {
		if _, err := fmt.Fprintln(w, hintStyle.Render("  "+h)); err != nil {
			return err
		}
	}
	return nil
}
