package statusutil

import (
	"fmt"
	"strings"

	"medapp-cli/internal/model"
)

// NormalizeStatus accepts our status ids as well as the server's wire names
// (programada, en_curso, completada, cancelada).
func NormalizeStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scheduled", "programada":
		return model.StatusScheduled, nil
	case "in_progress", "in-progress", "en_curso":
		return model.StatusInProgress, nil
	case "completed", "completada":
		return model.StatusCompleted, nil
	case "cancelled", "canceled", "cancelada":
		return model.StatusCancelled, nil
	case "":
		return "", fmt.Errorf("invalid status: empty")
	default:
		return "", fmt.Errorf("invalid status: %s", strings.TrimSpace(s))
	}
}

// NormalizeFilter is NormalizeStatus plus the "all" tab ("todas" on the server page).
func NormalizeFilter(s string) (model.Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todas":
		return model.FilterAll, nil
	}
	st, err := NormalizeStatus(s)
	if err != nil {
		return "", fmt.Errorf("invalid filter: %s", strings.TrimSpace(s))
	}
	return model.Filter(st), nil
}

// WireName is the status name the server renders in data-estado.
func WireName(s model.Status) string {
	switch s {
	case model.StatusScheduled:
		return "programada"
	case model.StatusInProgress:
		return "en_curso"
	case model.StatusCompleted:
		return "completada"
	case model.StatusCancelled:
		return "cancelada"
	default:
		return string(s)
	}
}

func Label(s model.Status) string {
	switch s {
	case model.StatusScheduled:
		return "Scheduled"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusCompleted:
		return "Completed"
	case model.StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

func FilterLabel(f model.Filter) string {
	if f == model.FilterAll {
		return "All"
	}
	return Label(model.Status(f))
}

// Cancellable mirrors the server rule: only scheduled or in-progress visits can be cancelled.
func Cancellable(s model.Status) bool {
	return s == model.StatusScheduled || s == model.StatusInProgress
}
