package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"medapp-cli/internal/format"
	"medapp-cli/internal/metrics"
	"medapp-cli/internal/model"
	"medapp-cli/internal/remote"
	"medapp-cli/internal/viewstate"
)

type visitListOutput struct {
	Patient     model.Patient          `json:"patient"`
	Filter      model.Filter           `json:"filter"`
	Counts      map[model.Filter]int   `json:"counts"`
	Visits      []model.VisitRecord    `json:"visits"`
	Placeholder *viewstate.Placeholder `json:"placeholder,omitempty"`
	Skipped     int                    `json:"skipped,omitempty"`
}

func (o visitListOutput) TableHeaders() []string {
	return []string{"ID", "DATE", "STATUS", "TITLE", "DOCTOR", "ACTIONS"}
}

func (o visitListOutput) TableRows() [][]string {
	if len(o.Visits) == 0 && o.Placeholder != nil {
		return [][]string{{"", "", "", o.Placeholder.Title, o.Placeholder.Hint, ""}}
	}
	rows := make([][]string, 0, len(o.Visits))
	for _, v := range o.Visits {
		rows = append(rows, []string{
			v.ID,
			format.ShortDateTime(v.At),
			v.Presentation.BadgeLabel,
			v.Title,
			v.Doctor,
			actionLabels(v.Presentation),
		})
	}
	return rows
}

func actionLabels(p model.Presentation) string {
	var out []string
	for _, a := range p.Actions {
		if a.Disabled {
			continue
		}
		out = append(out, strings.ToLower(a.Label))
	}
	return strings.Join(out, ",")
}

type countsOutput struct {
	Patient model.Patient   `json:"patient"`
	All     int             `json:"all"`
	Tabs    []viewstate.Tab `json:"tabs"`
}

func (o countsOutput) TableHeaders() []string { return []string{"FILTER", "LABEL", "COUNT"} }

func (o countsOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Tabs))
	for _, t := range o.Tabs {
		rows = append(rows, []string{string(t.Filter), t.Label, strconv.Itoa(t.Count)})
	}
	return rows
}

type patientListOutput []model.Patient

func (o patientListOutput) TableHeaders() []string {
	return []string{"ID", "NAME", "AGE", "PHONE", "EMAIL"}
}

func (o patientListOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o))
	for _, p := range o {
		rows = append(rows, []string{p.ID, p.Name, p.Age, format.Phone(p.Phone), p.Email})
	}
	return rows
}

type cancelOutput struct {
	VisitID      string               `json:"visitId"`
	OK           bool                 `json:"ok"`
	NoOp         bool                 `json:"noop,omitempty"`
	Notification *model.Notification  `json:"notification,omitempty"`
	Record       *model.VisitRecord   `json:"record,omitempty"`
	Counts       map[model.Filter]int `json:"counts"`
	ServerStatus model.Status         `json:"serverStatus,omitempty"`
}

// observedBackend is the remote client with every page load and cancellation
// recorded in metrics.
type observedBackend struct {
	*remote.Client
	m *metrics.Metrics
}

func (b observedBackend) FetchPatientPage(ctx context.Context, patientID string) (remote.PatientPage, error) {
	page, err := b.Client.FetchPatientPage(ctx, patientID)
	b.m.ObservePageLoad("patient", err)
	return page, err
}

func (b observedBackend) CancelVisit(ctx context.Context, visitID, reason string) error {
	err := b.Client.CancelVisit(ctx, visitID, reason)
	b.m.ObserveCancellation(cancellationOutcome(err))
	return err
}

func cancellationOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var rej *remote.RejectedError
	if errors.As(err, &rej) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

// observedLister counts patient list loads.
type observedLister struct {
	c *remote.Client
	m *metrics.Metrics
}

func (o observedLister) FetchPatients(ctx context.Context) ([]model.Patient, error) {
	list, err := o.c.FetchPatients(ctx)
	o.m.ObservePageLoad("patients", err)
	return list, err
}
