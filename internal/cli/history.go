package cli

import (
	"strings"

	"medapp-cli/internal/tui"
	"medapp-cli/internal/viewstate"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <patient-id>",
		Short: "Open a patient's visit history in the TUI",
		Example: strings.TrimSpace(`
medapp history 42
medapp 42
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, strings.TrimSpace(args[0]))
		},
	}
}

// runTUI starts the interactive client, on the patient search screen when patientID
// is empty.
func runTUI(cmd *cobra.Command, app *App, patientID string) error {
	b, err := app.backend()
	if err != nil {
		return writeErr(cmd, err)
	}
	dir, err := app.directory()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.Log.Info().Str("patient", patientID).Msg("starting tui")
	err = tui.Run(app.context(), tui.Options{
		Backend:        b,
		Patients:       dir,
		PatientID:      patientID,
		Surfaces:       []viewstate.CounterSurface{app.Metrics},
		OpenURL:        app.OpenURL,
		Log:            app.Log,
		ReloadAfter:    app.Cfg.ReloadAfter,
		ToastTTL:       app.Cfg.ToastTTL,
		SearchDebounce: app.Cfg.SearchDebounce,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
