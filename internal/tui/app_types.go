package tui

import (
	"medapp-cli/internal/model"
	"medapp-cli/internal/remote"
	"medapp-cli/internal/viewstate"
)

type screen int

const (
	screenPatients screen = iota
	screenHistory
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmCancel
	modalConfirmEditPatient
)

type confirmModalFocus int

const (
	confirmFocusReason confirmModalFocus = iota
	confirmFocusConfirm
	confirmFocusCancel
)

// Every timer message carries the sequence number it was scheduled with. A newer
// schedule bumps the sequence, so stale ticks are ignored when they arrive.

type searchTickMsg struct{ seq int }

type searchResultMsg struct {
	seq      int
	query    string
	patients []model.Patient
	ok       bool
	err      error
}

type pageLoadedMsg struct {
	seq       int
	patientID string
	page      remote.PatientPage
	err       error
}

type reloadMsg struct {
	seq       int
	patientID string
}

type toastDoneMsg struct{ seq int }

type loadMoreDoneMsg struct{ seq int }

type cancelSettledMsg struct {
	sub viewstate.Submission
	err error
}

type browserOpenedMsg struct {
	url string
	err error
}
