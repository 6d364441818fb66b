package viewstate

import (
	"strings"

	"medapp-cli/internal/model"
	"medapp-cli/internal/statusutil"
)

// Marker icons used on the timeline.
const (
	IconScheduled  = "calendar"
	IconInProgress = "clock"
	IconCompleted  = "check-circle"
	IconCancelled  = "times-circle"
)

// PresentationFor builds the default presentation the server renders for a status.
func PresentationFor(s model.Status) model.Presentation {
	p := model.Presentation{
		BadgeLabel: statusutil.Label(s),
		BadgeClass: "status-" + statusutil.WireName(s),
		Actions:    []model.Action{{Kind: model.ActionView, Label: "View"}},
	}
	switch s {
	case model.StatusScheduled:
		p.MarkerIcon = IconScheduled
	case model.StatusInProgress:
		p.MarkerIcon = IconInProgress
	case model.StatusCompleted:
		p.MarkerIcon = IconCompleted
		p.Actions = append(p.Actions, model.Action{Kind: model.ActionPrint, Label: "Print"})
	case model.StatusCancelled:
		p.MarkerIcon = IconCancelled
		p.Actions = append(p.Actions, model.Action{Kind: model.ActionCancelled, Label: "Cancelled", Disabled: true})
		p.Dimmed = true
	}
	if statusutil.Cancellable(s) {
		p.Actions = append(p.Actions,
			model.Action{Kind: model.ActionEdit, Label: "Edit"},
			model.Action{Kind: model.ActionCancel, Label: "Cancel"},
		)
	}
	return p
}

// applyCancelled patches p into the cancelled presentation. Each step only touches its
// own element; applying it twice yields the same result.
func applyCancelled(p *model.Presentation, reason string) {
	p.BadgeLabel = statusutil.Label(model.StatusCancelled)
	p.BadgeClass = "status-" + statusutil.WireName(model.StatusCancelled)
	p.MarkerIcon = IconCancelled

	alert := &model.Alert{Title: "Visit cancelled"}
	if r := strings.TrimSpace(reason); r != "" {
		alert.Detail = "Reason: " + r
	}
	p.Alert = alert

	if p.Actions != nil {
		kept := p.Actions[:0]
		for _, a := range p.Actions {
			if a.Kind == model.ActionEdit || a.Kind == model.ActionCancel {
				continue
			}
			kept = append(kept, a)
		}
		p.Actions = kept
	}
	if !p.HasAction(model.ActionCancelled) {
		p.Actions = append(p.Actions, model.Action{Kind: model.ActionCancelled, Label: "Cancelled", Disabled: true})
	}
	p.Dimmed = true
}
