package viewstate

import (
	"context"
	"errors"
	"testing"

	"medapp-cli/internal/model"

	"github.com/stretchr/testify/require"
)

type fakeCanceler struct {
	calls []Submission
	err   error
}

func (f *fakeCanceler) CancelVisit(_ context.Context, visitID, reason string) error {
	f.calls = append(f.calls, Submission{VisitID: visitID, Reason: reason})
	return f.err
}

type rejection struct{ msg string }

func (r rejection) Error() string       { return "rejected: " + r.msg }
func (r rejection) UserMessage() string { return r.msg }

func newSync(t *testing.T, opts ...SyncOption) (*View, *Synchronizer, *[]model.Notification) {
	t.Helper()
	v, err := NewView(sampleRecords())
	require.NoError(t, err)
	var notes []model.Notification
	opts = append([]SyncOption{WithNotifier(NotifierFunc(func(n model.Notification) { notes = append(notes, n) }))}, opts...)
	return v, NewSynchronizer(v, opts...), &notes
}

func statuses(v *View) map[string]model.Status {
	out := map[string]model.Status{}
	for _, r := range v.Records() {
		out[r.ID] = r.Status
	}
	return out
}

func TestCancelVisit_LeavesInputRecordsUntouched(t *testing.T) {
	in := []model.VisitRecord{
		{ID: "1", Status: model.StatusScheduled, Presentation: PresentationFor(model.StatusScheduled)},
		{ID: "2", Status: model.StatusCompleted, Presentation: PresentationFor(model.StatusCompleted)},
	}
	want := append([]model.Action(nil), in[0].Presentation.Actions...)

	v, err := NewView(in)
	require.NoError(t, err)
	out, err := NewSynchronizer(v).CancelVisit(context.Background(), &fakeCanceler{}, "1", "")
	require.NoError(t, err)
	require.True(t, out.OK)

	require.Equal(t, model.StatusScheduled, in[0].Status)
	require.Equal(t, want, in[0].Presentation.Actions)
	r, _ := v.Record("1")
	require.Equal(t, model.StatusCancelled, r.Status)
}

func TestCancelVisit_Success(t *testing.T) {
	v, s, notes := newSync(t)
	fc := &fakeCanceler{}

	out, err := s.CancelVisit(context.Background(), fc, "1", "patient request")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.False(t, out.NoOp)
	require.Equal(t, defaultReloadAfter, out.ReloadAfter)

	require.Equal(t, []Submission{{VisitID: "1", Reason: "patient request"}}, fc.calls)
	require.Equal(t, map[string]model.Status{
		"1": model.StatusCancelled,
		"2": model.StatusCompleted,
		"3": model.StatusCancelled,
	}, statuses(v))
	require.Equal(t, counts(3, 0, 0, 1, 2), v.Snapshot().Counts)

	require.Len(t, *notes, 1)
	require.Equal(t, model.NotifySuccess, (*notes)[0].Kind)
	require.Equal(t, PhaseCancelled, s.Phase("1"))
	_, open := s.Confirmation("1")
	require.False(t, open)
}

func TestCancelVisit_SuccessAppliesCancelledPresentation(t *testing.T) {
	v, s, _ := newSync(t)

	_, err := s.CancelVisit(context.Background(), &fakeCanceler{}, "1", "patient request")
	require.NoError(t, err)

	r, ok := v.Record("1")
	require.True(t, ok)
	p := r.Presentation
	require.Equal(t, "Cancelled", p.BadgeLabel)
	require.Equal(t, "status-cancelada", p.BadgeClass)
	require.Equal(t, IconCancelled, p.MarkerIcon)
	require.False(t, p.HasAction(model.ActionEdit))
	require.False(t, p.HasAction(model.ActionCancel))
	require.True(t, p.HasAction(model.ActionCancelled))
	require.True(t, p.HasAction(model.ActionView))
	require.NotNil(t, p.Alert)
	require.Equal(t, "Reason: patient request", p.Alert.Detail)
	require.True(t, p.Dimmed)
}

func TestCancelVisit_SuccessRefiltersActiveTab(t *testing.T) {
	v, s, _ := newSync(t)
	require.NoError(t, v.ApplyFilter(model.Filter(model.StatusScheduled)))

	_, err := s.CancelVisit(context.Background(), &fakeCanceler{}, "1", "")
	require.NoError(t, err)

	require.Equal(t, model.Filter(model.StatusScheduled), v.ActiveFilter())
	require.Empty(t, visibleIDs(v))
	require.NotNil(t, v.Placeholder())
}

func TestCancelVisit_Failure(t *testing.T) {
	v, s, notes := newSync(t)
	before := v.Snapshot()

	require.NoError(t, v.ApplyFilter(model.FilterAll))
	_, ok, err := s.RequestCancel("1", "Ana")
	require.NoError(t, err)
	require.True(t, ok)
	sub, err := s.Confirm("1", "")
	require.NoError(t, err)

	c, _ := s.Confirmation("1")
	require.True(t, c.ConfirmDisabled)
	require.Equal(t, confirmingLabel, c.ConfirmLabel)

	out := s.Settle(sub, rejection{msg: "slot locked"})
	require.False(t, out.OK)
	require.Zero(t, out.ReloadAfter)

	require.Equal(t, model.StatusScheduled, statuses(v)["1"])
	require.Equal(t, before, v.Snapshot())
	require.Len(t, *notes, 1)
	require.Equal(t, model.NotifyError, (*notes)[0].Kind)
	require.Equal(t, "slot locked", (*notes)[0].Message)

	c, open := s.Confirmation("1")
	require.True(t, open)
	require.False(t, c.ConfirmDisabled)
	require.Equal(t, confirmLabel, c.ConfirmLabel)
	require.Equal(t, PhaseConfirmPending, s.Phase("1"))

	r, _ := v.Record("1")
	require.True(t, r.Presentation.HasAction(model.ActionCancel))
}

func TestCancelVisit_FailureRetryThenSuccess(t *testing.T) {
	v, s, _ := newSync(t)
	_, _, err := s.RequestCancel("1", "")
	require.NoError(t, err)

	sub, err := s.Confirm("1", "first")
	require.NoError(t, err)
	s.Settle(sub, errors.New("connection refused"))

	sub, err = s.Confirm("1", "second")
	require.NoError(t, err)
	out := s.Settle(sub, nil)
	require.True(t, out.OK)
	require.Equal(t, model.StatusCancelled, statuses(v)["1"])
}

func TestFailureMessages(t *testing.T) {
	require.Equal(t, "slot locked", failureMessage(rejection{msg: "slot locked"}))
	require.Equal(t, genericFailure, failureMessage(rejection{msg: "  "}))
	require.Equal(t, genericFailure+": boom", failureMessage(errors.New("boom")))
	require.Contains(t, failureMessage(context.DeadlineExceeded), "did not answer")
}

func TestCancelVisit_AlreadyCancelledIsNoOp(t *testing.T) {
	v, s, notes := newSync(t)
	fc := &fakeCanceler{}

	out, err := s.CancelVisit(context.Background(), fc, "3", "again")
	require.NoError(t, err)
	require.True(t, out.NoOp)
	require.Empty(t, fc.calls)
	require.Empty(t, *notes)

	_, err = s.CancelVisit(context.Background(), fc, "1", "")
	require.NoError(t, err)
	r1, _ := v.Record("1")

	out, err = s.CancelVisit(context.Background(), fc, "1", "")
	require.NoError(t, err)
	require.True(t, out.NoOp)
	require.Len(t, fc.calls, 1)

	r2, _ := v.Record("1")
	require.Equal(t, r1, r2)
}

func TestConfirm_AtMostOneInFlight(t *testing.T) {
	_, s, _ := newSync(t)
	_, _, err := s.RequestCancel("1", "")
	require.NoError(t, err)

	_, err = s.Confirm("1", "")
	require.NoError(t, err)
	_, err = s.Confirm("1", "")
	require.ErrorIs(t, err, ErrInFlight)

	_, _, err = s.RequestCancel("1", "")
	require.ErrorIs(t, err, ErrInFlight)

	var se StateError
	require.ErrorAs(t, s.Decline("1"), &se)
}

func TestConfirm_WithoutRequestFails(t *testing.T) {
	_, s, _ := newSync(t)
	_, err := s.Confirm("1", "")
	var se StateError
	require.ErrorAs(t, err, &se)
	require.Equal(t, PhaseActive, se.Phase)
}

func TestDecline_ReturnsToActive(t *testing.T) {
	v, s, notes := newSync(t)
	_, ok, err := s.RequestCancel("1", "Ana")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, PhaseConfirmPending, s.Phase("1"))

	require.NoError(t, s.Decline("1"))
	require.Equal(t, PhaseActive, s.Phase("1"))
	_, open := s.Confirmation("1")
	require.False(t, open)
	require.Equal(t, model.StatusScheduled, statuses(v)["1"])
	require.Empty(t, *notes)
}

func TestRequestCancel_Errors(t *testing.T) {
	_, s, _ := newSync(t)

	_, _, err := s.RequestCancel("404", "")
	var uv UnknownVisitError
	require.ErrorAs(t, err, &uv)

	_, _, err = s.RequestCancel("2", "")
	var nc NotCancellableError
	require.ErrorAs(t, err, &nc)
	require.Equal(t, model.StatusCompleted, nc.Status)
}

func TestInterleavedCancellations(t *testing.T) {
	v, err := NewView([]model.VisitRecord{
		{ID: "a", Status: model.StatusScheduled},
		{ID: "b", Status: model.StatusInProgress},
		{ID: "c", Status: model.StatusScheduled},
	})
	require.NoError(t, err)
	s := NewSynchronizer(v, WithReloadAfter(0))

	for _, id := range []string{"a", "b", "c"} {
		_, _, err := s.RequestCancel(id, "")
		require.NoError(t, err)
	}
	subA, err := s.Confirm("a", "")
	require.NoError(t, err)
	subB, err := s.Confirm("b", "")
	require.NoError(t, err)
	subC, err := s.Confirm("c", "")
	require.NoError(t, err)

	s.Settle(subB, nil)
	s.Settle(subA, errors.New("timeout"))
	out := s.Settle(subC, nil)
	require.Zero(t, out.ReloadAfter)

	require.Equal(t, counts(3, 1, 0, 0, 2), v.Snapshot().Counts)
}

func TestApplyCancelled_Idempotent(t *testing.T) {
	p := PresentationFor(model.StatusScheduled)
	applyCancelled(&p, "x")
	once := p
	once.Actions = append([]model.Action(nil), p.Actions...)
	applyCancelled(&p, "x")
	require.Equal(t, once, p)

	// A presentation without actions still gains the disabled indicator.
	bare := model.Presentation{}
	applyCancelled(&bare, "")
	require.True(t, bare.HasAction(model.ActionCancelled))
	require.Empty(t, bare.Alert.Detail)
}
