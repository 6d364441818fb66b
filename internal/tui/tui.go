package tui

import (
	"context"
	"errors"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/remote"
	"medapp-cli/internal/viewstate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Backend is the server surface the TUI needs. *remote.Client satisfies it.
type Backend interface {
	FetchPatientPage(ctx context.Context, patientID string) (remote.PatientPage, error)
	CancelVisit(ctx context.Context, visitID, reason string) error
	EditVisitURL(visitID string) string
	PrintVisitURL(visitID string) string
	EditPatientURL(patientID string) string
}

// Searcher answers patient search queries. *patients.Directory satisfies it.
type Searcher interface {
	Search(ctx context.Context, q string) ([]model.Patient, bool, error)
	// Invalidate drops cached results so the next search refetches.
	Invalidate()
}

type Options struct {
	Backend  Backend
	Patients Searcher
	// PatientID opens the history screen directly; empty starts on patient search.
	PatientID string

	// Surfaces receive every counter snapshot in addition to the on-screen tabs and tiles.
	Surfaces []viewstate.CounterSurface
	OpenURL  func(string) error
	Log      zerolog.Logger

	// ReloadAfter delays the full reload after a cancellation; zero disables it.
	ReloadAfter    time.Duration
	ToastTTL       time.Duration
	SearchDebounce time.Duration
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
