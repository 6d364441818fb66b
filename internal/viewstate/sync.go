package viewstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/statusutil"

	"github.com/rs/zerolog"
)

// Phase is where a single visit sits in the cancellation flow.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseConfirmPending
	PhaseInFlight
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseConfirmPending:
		return "confirm-pending"
	case PhaseInFlight:
		return "in-flight"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	confirmLabel    = "Yes, cancel visit"
	confirmingLabel = "Cancelling..."

	defaultReloadAfter = 2 * time.Second
)

// Canceler performs the remote state change. Implementations report an
// application-level rejection with an error that has a UserMessage() string method.
type Canceler interface {
	CancelVisit(ctx context.Context, visitID, reason string) error
}

type Notifier interface {
	Notify(model.Notification)
}

type NotifierFunc func(model.Notification)

func (f NotifierFunc) Notify(n model.Notification) { f(n) }

// Confirmation is the confirmation surface bound to one visit.
type Confirmation struct {
	VisitID         string
	PatientName     string
	Reason          string
	ConfirmLabel    string
	ConfirmDisabled bool
}

// Submission is the single remote request issued for a confirmed cancellation.
type Submission struct {
	VisitID string
	Reason  string
}

// Outcome describes how a settled (or skipped) cancellation changed the view.
type Outcome struct {
	VisitID      string
	OK           bool
	NoOp         bool
	Notification model.Notification
	// ReloadAfter is the delay before a full reload that reconciles fields the local
	// patch does not cover. Zero means no reload.
	ReloadAfter time.Duration
}

type StateError struct {
	VisitID string
	Op      string
	Phase   Phase
}

func (e StateError) Error() string {
	return fmt.Sprintf("%s: visit %s is %s", e.Op, e.VisitID, e.Phase)
}

type UnknownVisitError struct{ VisitID string }

func (e UnknownVisitError) Error() string { return "visit not found: " + e.VisitID }

type NotCancellableError struct {
	VisitID string
	Status  model.Status
}

func (e NotCancellableError) Error() string {
	return fmt.Sprintf("visit %s cannot be cancelled while %s", e.VisitID, statusutil.Label(e.Status))
}

// ErrInFlight is returned when a visit already has an outstanding cancellation request.
var ErrInFlight = errors.New("cancellation already in flight")

// Synchronizer drives the confirm-then-commit cancellation flow for the visits of one
// View. Local record state changes only after the remote side acknowledges.
type Synchronizer struct {
	view        *View
	notify      Notifier
	log         zerolog.Logger
	reloadAfter time.Duration

	phases        map[string]Phase
	confirmations map[string]*Confirmation
}

type SyncOption func(*Synchronizer)

func WithNotifier(n Notifier) SyncOption {
	return func(s *Synchronizer) { s.notify = n }
}

func WithSyncLogger(l zerolog.Logger) SyncOption {
	return func(s *Synchronizer) { s.log = l }
}

// WithReloadAfter sets the reload fallback delay; zero disables it.
func WithReloadAfter(d time.Duration) SyncOption {
	return func(s *Synchronizer) { s.reloadAfter = d }
}

func NewSynchronizer(v *View, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		view:          v,
		notify:        NotifierFunc(func(model.Notification) {}),
		log:           zerolog.Nop(),
		reloadAfter:   defaultReloadAfter,
		phases:        map[string]Phase{},
		confirmations: map[string]*Confirmation{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Synchronizer) Phase(visitID string) Phase {
	visitID = strings.TrimSpace(visitID)
	if p, ok := s.phases[visitID]; ok {
		return p
	}
	if r, ok := s.view.store.get(visitID); ok && r.Status == model.StatusCancelled {
		return PhaseCancelled
	}
	return PhaseActive
}

// Confirmation returns the open confirmation surface for a visit, if any.
func (s *Synchronizer) Confirmation(visitID string) (Confirmation, bool) {
	c, ok := s.confirmations[strings.TrimSpace(visitID)]
	if !ok {
		return Confirmation{}, false
	}
	return *c, true
}

// RequestCancel opens the confirmation surface for a visit. It does no network work.
// For an already-cancelled visit it does nothing and returns ok=false.
func (s *Synchronizer) RequestCancel(visitID, patientName string) (Confirmation, bool, error) {
	visitID = strings.TrimSpace(visitID)
	r, found := s.view.store.get(visitID)
	if !found {
		return Confirmation{}, false, UnknownVisitError{VisitID: visitID}
	}
	switch s.Phase(visitID) {
	case PhaseCancelled:
		return Confirmation{}, false, nil
	case PhaseInFlight:
		return Confirmation{}, false, ErrInFlight
	}
	if !statusutil.Cancellable(r.Status) {
		return Confirmation{}, false, NotCancellableError{VisitID: visitID, Status: r.Status}
	}

	// A new request replaces any confirmation surface left open for this visit.
	c := &Confirmation{
		VisitID:      visitID,
		PatientName:  strings.TrimSpace(patientName),
		ConfirmLabel: confirmLabel,
	}
	s.confirmations[visitID] = c
	s.phases[visitID] = PhaseConfirmPending
	return *c, true, nil
}

// Decline closes the confirmation surface without touching the record.
func (s *Synchronizer) Decline(visitID string) error {
	visitID = strings.TrimSpace(visitID)
	if s.Phase(visitID) == PhaseInFlight {
		return StateError{VisitID: visitID, Op: "decline", Phase: PhaseInFlight}
	}
	if _, ok := s.confirmations[visitID]; !ok {
		return nil
	}
	delete(s.confirmations, visitID)
	if s.Phase(visitID) != PhaseCancelled {
		s.phases[visitID] = PhaseActive
	}
	return nil
}

// Confirm disables the confirm control and returns the one request to send.
// It succeeds only while a confirmation surface is open and nothing is in flight.
func (s *Synchronizer) Confirm(visitID, reason string) (Submission, error) {
	visitID = strings.TrimSpace(visitID)
	phase := s.Phase(visitID)
	if phase == PhaseInFlight {
		return Submission{}, ErrInFlight
	}
	c, open := s.confirmations[visitID]
	if !open || phase == PhaseCancelled {
		return Submission{}, StateError{VisitID: visitID, Op: "confirm", Phase: phase}
	}

	reason = strings.TrimSpace(reason)
	c.Reason = reason
	c.ConfirmDisabled = true
	c.ConfirmLabel = confirmingLabel
	s.phases[visitID] = PhaseInFlight

	s.log.Info().Str("visit", visitID).Bool("reason", reason != "").Msg("cancellation submitted")
	return Submission{VisitID: visitID, Reason: reason}, nil
}

// Settle applies the remote result of a submission. On success the record is committed
// as cancelled and the filter is re-applied; on failure only the confirm control is
// restored and the confirmation stays pending.
func (s *Synchronizer) Settle(sub Submission, remoteErr error) Outcome {
	visitID := sub.VisitID
	out := Outcome{VisitID: visitID}

	if remoteErr != nil {
		s.phases[visitID] = PhaseActive
		if c, ok := s.confirmations[visitID]; ok {
			c.ConfirmDisabled = false
			c.ConfirmLabel = confirmLabel
			s.phases[visitID] = PhaseConfirmPending
		}
		out.Notification = model.Notification{Kind: model.NotifyError, Message: failureMessage(remoteErr)}
		s.notify.Notify(out.Notification)
		s.log.Warn().Err(remoteErr).Str("visit", visitID).Msg("cancellation failed")
		return out
	}

	delete(s.confirmations, visitID)
	s.phases[visitID] = PhaseCancelled
	s.commitCancelled(visitID, sub.Reason)

	out.OK = true
	out.ReloadAfter = s.reloadAfter
	out.Notification = model.Notification{Kind: model.NotifySuccess, Message: "Visit cancelled"}
	s.notify.Notify(out.Notification)
	s.log.Info().Str("visit", visitID).Msg("cancellation committed")
	return out
}

// commitCancelled patches the record and re-applies the active filter, which also
// republishes counters. Safe to call repeatedly for the same visit.
func (s *Synchronizer) commitCancelled(visitID, reason string) {
	r, ok := s.view.store.get(visitID)
	if !ok {
		// Nothing rendered for this id; counters still follow the store.
		s.view.RecomputeCounters()
		return
	}
	r.Status = model.StatusCancelled
	applyCancelled(&r.Presentation, reason)
	_ = s.view.ApplyFilter(s.view.ActiveFilter())
}

// CancelVisit runs the whole flow (request, confirm, remote call, settle) without an
// interactive confirmation step. Calling it for a visit that is already cancelled is a
// no-op and makes no remote call.
func (s *Synchronizer) CancelVisit(ctx context.Context, c Canceler, visitID, reason string) (Outcome, error) {
	visitID = strings.TrimSpace(visitID)
	if _, ok, err := s.RequestCancel(visitID, ""); err != nil {
		return Outcome{VisitID: visitID}, err
	} else if !ok {
		return Outcome{VisitID: visitID, OK: true, NoOp: true}, nil
	}
	sub, err := s.Confirm(visitID, reason)
	if err != nil {
		return Outcome{VisitID: visitID}, err
	}
	return s.Settle(sub, c.CancelVisit(ctx, sub.VisitID, sub.Reason)), nil
}

type userMessager interface {
	UserMessage() string
}

const genericFailure = "Could not cancel the visit"

func failureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
		return genericFailure
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return genericFailure + ": the server did not answer in time"
	}
	return genericFailure + ": " + err.Error()
}
