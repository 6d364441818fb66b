package model

import "time"

// Status is the lifecycle state of a visit as rendered on the patient page.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order (matches the quick-stat tiles).
var Statuses = []Status{StatusCompleted, StatusScheduled, StatusInProgress, StatusCancelled}

// Filter selects which visits are visible. It is either FilterAll or one of the statuses.
type Filter string

const FilterAll Filter = "all"

// Filters lists every filter tab in display order.
var Filters = []Filter{
	FilterAll,
	Filter(StatusCompleted),
	Filter(StatusScheduled),
	Filter(StatusInProgress),
	Filter(StatusCancelled),
}

// Matches reports whether a record with status s is visible under f.
func (f Filter) Matches(s Status) bool {
	return f == FilterAll || Status(f) == s
}

type VisitRecord struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	// Visible is derived from the active filter; never set it directly.
	Visible bool `json:"visible"`

	PatientID string     `json:"patientId,omitempty"`
	Title     string     `json:"title,omitempty"`
	Doctor    string     `json:"doctor,omitempty"`
	At        *time.Time `json:"at,omitempty"`
	Body      string     `json:"body,omitempty"`

	// Presentation is what the timeline renders for this record. The synchronizer
	// patches it in place on confirmed cancellation.
	Presentation Presentation `json:"presentation"`
}

// Presentation is the rendered projection of a visit: badge, marker and actions.
type Presentation struct {
	BadgeLabel string   `json:"badgeLabel"`
	BadgeClass string   `json:"badgeClass"`
	MarkerIcon string   `json:"markerIcon"`
	Actions    []Action `json:"actions"`
	Alert      *Alert   `json:"alert,omitempty"`
	Dimmed     bool     `json:"dimmed,omitempty"`
}

type ActionKind string

const (
	ActionView      ActionKind = "view"
	ActionEdit      ActionKind = "edit"
	ActionCancel    ActionKind = "cancel"
	ActionPrint     ActionKind = "print"
	ActionCancelled ActionKind = "cancelled"
)

type Action struct {
	Kind     ActionKind `json:"kind"`
	Label    string     `json:"label"`
	Disabled bool       `json:"disabled,omitempty"`
}

type Alert struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// HasAction reports whether the presentation currently offers an action of kind k.
func (p Presentation) HasAction(k ActionKind) bool {
	for _, a := range p.Actions {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// CounterSnapshot is derived from the full record set. It is only ever produced by a
// recompute; nothing increments it in place.
type CounterSnapshot struct {
	Counts map[Filter]int `json:"counts"`
}

func (c CounterSnapshot) Count(f Filter) int {
	if c.Counts == nil {
		return 0
	}
	return c.Counts[f]
}

// All is the total record count (the "all" tab).
func (c CounterSnapshot) All() int { return c.Count(FilterAll) }

type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Age   string `json:"age,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	State string `json:"state,omitempty"`
}

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
	NotifyWarning NotificationKind = "warning"
)

// Notification is a transient, non-blocking toast.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}
