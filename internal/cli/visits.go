package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/remote"
	"medapp-cli/internal/statusutil"
	"medapp-cli/internal/viewstate"

	"github.com/spf13/cobra"
)

func newVisitsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Inspect and cancel a patient's visits",
	}
	cmd.AddCommand(newVisitsListCmd(app))
	cmd.AddCommand(newVisitsCountsCmd(app))
	cmd.AddCommand(newVisitsCancelCmd(app))
	cmd.AddCommand(newVisitsOpenCmd(app))
	return cmd
}

// loadHistory fetches a patient page and builds its view state. Counters are published
// to the metrics surface as part of construction.
func loadHistory(app *App, patientID string) (*viewstate.View, remote.PatientPage, error) {
	b, err := app.backend()
	if err != nil {
		return nil, remote.PatientPage{}, err
	}
	page, err := b.FetchPatientPage(app.context(), patientID)
	if err != nil {
		return nil, remote.PatientPage{}, err
	}
	v, err := viewstate.NewView(page.Visits,
		viewstate.WithLogger(app.Log),
		viewstate.WithSurface(app.Metrics),
	)
	if err != nil {
		return nil, remote.PatientPage{}, err
	}
	return v, page, nil
}

func newVisitsListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list <patient-id>",
		Short: "List a patient's visits, optionally filtered by status",
		Example: strings.TrimSpace(`
medapp visits list 42
medapp visits list 42 --status scheduled --format table
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := statusutil.NormalizeFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			patientID := strings.TrimSpace(args[0])
			v, page, err := loadHistory(app, patientID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := v.ApplyFilter(filter); err != nil {
				return writeErr(cmd, err)
			}

			out := visitListOutput{
				Patient:     page.Patient,
				Filter:      v.ActiveFilter(),
				Counts:      v.Snapshot().Counts,
				Visits:      v.Visible(),
				Placeholder: v.Placeholder(),
				Skipped:     page.Skipped,
			}
			if out.Visits == nil {
				out.Visits = []model.VisitRecord{}
			}
			hints := []string{
				"medapp visits counts " + patientID,
				"medapp visits cancel <visit-id> --patient " + patientID + " --reason \"...\"",
			}
			return writeOut(cmd, app, out, hints...)
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "Filter: all|scheduled|in_progress|completed|cancelled")
	return cmd
}

func newVisitsCountsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "counts <patient-id>",
		Short: "Show visit counts per status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, page, err := loadHistory(app, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			snap := v.RecomputeCounters()
			return writeOut(cmd, app, countsOutput{
				Patient: page.Patient,
				All:     snap.All(),
				Tabs:    v.Tabs(),
			})
		},
	}
}

func newVisitsCancelCmd(app *App) *cobra.Command {
	var (
		patientID string
		reason    string
		yes       bool
		verify    bool
	)
	cmd := &cobra.Command{
		Use:   "cancel <visit-id>",
		Short: "Cancel a scheduled or in-progress visit",
		Long: strings.TrimSpace(`
Cancels a visit on the server. The local record changes only after the server
acknowledges the cancellation. Cancelling a visit that is already cancelled is a
no-op and makes no request.

Without --yes the command asks for confirmation on stdin.
`),
		Example: strings.TrimSpace(`
medapp visits cancel 311 --patient 42 --reason "patient request"
medapp visits cancel 311 --patient 42 --yes --verify
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visitID := strings.TrimSpace(args[0])
			if strings.TrimSpace(patientID) == "" {
				return writeErr(cmd, errors.New("missing --patient"))
			}
			v, page, err := loadHistory(app, strings.TrimSpace(patientID))
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := app.backend()
			if err != nil {
				return writeErr(cmd, err)
			}
			sync := viewstate.NewSynchronizer(v,
				viewstate.WithSyncLogger(app.Log),
				viewstate.WithReloadAfter(app.Cfg.ReloadAfter),
			)
			var out viewstate.Outcome
			if yes {
				out, err = sync.CancelVisit(app.context(), b, visitID, reason)
			} else {
				out, err = confirmAndCancel(cmd, app, sync, b, visitID, page.Patient.Name, reason)
			}
			if err != nil {
				var unknown viewstate.UnknownVisitError
				if errors.As(err, &unknown) {
					err = errNotFound("visit", visitID)
				}
				return writeErr(cmd, err)
			}
			if !out.OK {
				return writeErr(cmd, notificationError{message: out.Notification.Message})
			}

			res := cancelOutput{VisitID: visitID, OK: true, NoOp: out.NoOp, Counts: v.Snapshot().Counts}
			if out.Notification.Message != "" {
				n := out.Notification
				res.Notification = &n
			}
			if r, ok := v.Record(visitID); ok {
				res.Record = &r
			}
			if verify && !out.NoOp {
				res.ServerStatus = reloadStatus(app, patientID, visitID, out.ReloadAfter)
			}
			return writeOut(cmd, app, res, "medapp visits list "+strings.TrimSpace(patientID)+" --status cancelled")
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "Patient whose history contains the visit (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason (optional)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&verify, "verify", false, "Reload the patient page afterwards and report the server's status")
	return cmd
}

// confirmAndCancel drives the synchronizer one step at a time with a stdin prompt as
// the confirmation surface.
func confirmAndCancel(cmd *cobra.Command, app *App, sync *viewstate.Synchronizer, c viewstate.Canceler, visitID, patientName, reason string) (viewstate.Outcome, error) {
	conf, ok, err := sync.RequestCancel(visitID, patientName)
	if err != nil {
		return viewstate.Outcome{VisitID: visitID}, err
	}
	if !ok {
		return viewstate.Outcome{VisitID: visitID, OK: true, NoOp: true}, nil
	}

	who := ""
	if conf.PatientName != "" {
		who = " for " + conf.PatientName
	}
	question := fmt.Sprintf("Cancel visit %s%s?", conf.VisitID, who)
	if strings.TrimSpace(reason) != "" {
		question += " Reason: " + strings.TrimSpace(reason) + "."
	}
	yes, err := confirmPrompt(cmd, question)
	if err != nil {
		return viewstate.Outcome{VisitID: visitID}, err
	}
	if !yes {
		_ = sync.Decline(visitID)
		return viewstate.Outcome{VisitID: visitID}, declinedError{what: "cancel visit " + visitID}
	}

	sub, err := sync.Confirm(visitID, reason)
	if err != nil {
		return viewstate.Outcome{VisitID: visitID}, err
	}
	return sync.Settle(sub, c.CancelVisit(app.context(), sub.VisitID, sub.Reason)), nil
}

// reloadStatus waits, reloads the patient page and returns the server's status for
// the visit. Errors leave the status empty.
func reloadStatus(app *App, patientID, visitID string, after time.Duration) model.Status {
	if after > 0 {
		select {
		case <-time.After(after):
		case <-app.context().Done():
			return ""
		}
	}
	b, err := app.backend()
	if err != nil {
		return ""
	}
	page, err := b.FetchPatientPage(app.context(), strings.TrimSpace(patientID))
	if err != nil {
		app.Log.Warn().Err(err).Msg("reload after cancel failed")
		return ""
	}
	for _, r := range page.Visits {
		if r.ID == visitID {
			return r.Status
		}
	}
	return ""
}

func newVisitsOpenCmd(app *App) *cobra.Command {
	var (
		action    string
		noBrowser bool
	)
	cmd := &cobra.Command{
		Use:   "open <visit-id>",
		Short: "Open a visit's page, editor or print view in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.remoteClient()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			var url string
			switch strings.ToLower(strings.TrimSpace(action)) {
			case "", "view":
				url = c.VisitURL(id)
			case "edit":
				url = c.EditVisitURL(id)
			case "print":
				url = c.PrintVisitURL(id)
			default:
				return writeErr(cmd, fmt.Errorf("unknown action %q (expected view|edit|print)", action))
			}
			opened := false
			if !noBrowser {
				if err := app.OpenURL(url); err != nil {
					return writeErr(cmd, fmt.Errorf("open %s: %w", url, err))
				}
				opened = true
			}
			return writeOut(cmd, app, map[string]any{"url": url, "opened": opened})
		},
	}
	cmd.Flags().StringVar(&action, "action", "view", "view|edit|print")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the URL without opening it")
	return cmd
}

func confirmPrompt(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
