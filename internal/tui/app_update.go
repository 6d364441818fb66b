package tui

import (
	"errors"
	"strings"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/viewstate"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case toastDoneMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case searchTickMsg:
		// Debounce: only the latest keystroke's tick runs a search.
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.searchLoading = true
		return m, m.searchCmd(m.search.Value(), msg.seq)

	case searchResultMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.searchLoading = false
		if msg.err != nil {
			m.searchErr = msg.err.Error()
			return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: "Search failed: " + msg.err.Error()})
		}
		m.searchErr = ""
		if !msg.ok {
			return m, nil
		}
		m.searchQuery = strings.TrimSpace(msg.query)
		m.setPatientResults(msg.patients)
		return m, nil

	case pageLoadedMsg:
		if msg.seq != m.loadSeq || m.screen != screenHistory {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			m.log.Warn().Err(msg.err).Str("patient", msg.patientID).Msg("patient page load failed")
			return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: "Could not load the patient: " + msg.err.Error()})
		}
		if err := m.installPage(msg); err != nil {
			m.loadErr = err.Error()
			return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: err.Error()})
		}
		m.loadErr = ""
		return m, nil

	case reloadMsg:
		if msg.seq != m.reloadSeq || m.screen != screenHistory || msg.patientID != m.patient.ID {
			return m, nil
		}
		// Never swap the view state under an open confirmation.
		if m.modal != modalNone {
			return m, m.scheduleReload(m.opts.ReloadAfter)
		}
		m.loadSeq++
		return m, m.loadPageCmd(m.patient.ID, m.loadSeq)

	case loadMoreDoneMsg:
		if msg.seq != m.moreSeq {
			return m, nil
		}
		m.loadingMore = false
		return m, m.showToast(model.Notification{Kind: model.NotifyInfo, Message: "Pagination coming soon"})

	case cancelSettledMsg:
		return m.settleCancel(msg)

	case browserOpenedMsg:
		if msg.err != nil {
			return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: "Could not open the browser: " + msg.err.Error()})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.spinnerActive() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.modal {
		case modalConfirmCancel:
			return m.updateCancelModal(msg)
		case modalConfirmEditPatient:
			return m.updateEditPatientModal(msg)
		}
		if m.screen == screenPatients {
			return m.updatePatients(msg)
		}
		return m.updateHistory(msg)
	}

	// Cursor blink and other input plumbing.
	var cmd tea.Cmd
	switch {
	case m.modal == modalConfirmCancel:
		m.reason, cmd = m.reason.Update(msg)
	case m.screen == screenPatients:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m appModel) spinnerActive() bool {
	if m.loading || m.loadingMore {
		return true
	}
	return m.modal == modalConfirmCancel && m.sync != nil && m.sync.Phase(m.modalVisitID) == viewstate.PhaseInFlight
}

func (m appModel) updatePatients(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Esc clears the box and the results.
		m.search.Reset()
		m.searchSeq++
		m.searchQuery = ""
		m.searchLoading = false
		m.searchErr = ""
		m.setPatientResults(nil)
		return m, nil
	case "enter":
		if it, ok := m.patientList.SelectedItem().(patientItem); ok {
			m.cameFromList = true
			return m, m.openHistory(it.p)
		}
		return m, nil
	case "ctrl+r":
		if m.opts.Patients == nil {
			return m, nil
		}
		m.opts.Patients.Invalidate()
		if strings.TrimSpace(m.search.Value()) == "" {
			return m, nil
		}
		m.searchSeq++
		m.searchLoading = true
		return m, m.searchCmd(m.search.Value(), m.searchSeq)
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.patientList, cmd = m.patientList.Update(msg)
		return m, cmd
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.onSearchChanged())
}

// onSearchChanged schedules a debounced search. An empty box clears results at once.
func (m *appModel) onSearchChanged() tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	if strings.TrimSpace(m.search.Value()) == "" {
		m.searchQuery = ""
		m.searchLoading = false
		m.setPatientResults(nil)
		return nil
	}
	if m.opts.SearchDebounce == 0 {
		return func() tea.Msg { return searchTickMsg{seq: seq} }
	}
	return tea.Tick(m.opts.SearchDebounce, func(time.Time) tea.Msg { return searchTickMsg{seq: seq} })
}

func (m appModel) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		if m.cameFromList {
			return m, m.backToPatients()
		}
		return m, nil
	case "r":
		if m.patient.ID == "" {
			return m, nil
		}
		m.loading = true
		m.loadSeq++
		return m, tea.Batch(m.loadPageCmd(m.patient.ID, m.loadSeq), m.spinner.Tick)
	case "tab", "right", "l":
		return m, m.cycleFilter(1)
	case "shift+tab", "left", "h":
		return m, m.cycleFilter(-1)
	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		return m, m.setFilter(model.Filters[idx])
	case "c":
		return m.requestCancel()
	case "e":
		return m.openVisitAction(model.ActionEdit)
	case "p":
		return m.openVisitAction(model.ActionPrint)
	case "E":
		if m.patient.ID == "" {
			return m, nil
		}
		m.modal = modalConfirmEditPatient
		m.modalFocus = confirmFocusConfirm
		return m, nil
	case "m":
		if m.loadingMore || m.view == nil {
			return m, nil
		}
		m.loadingMore = true
		m.moreSeq++
		seq := m.moreSeq
		return m, tea.Batch(
			tea.Tick(loadMoreDelay, func(time.Time) tea.Msg { return loadMoreDoneMsg{seq: seq} }),
			m.spinner.Tick,
		)
	}

	var cmd tea.Cmd
	m.visitList, cmd = m.visitList.Update(msg)
	return m, cmd
}

func (m *appModel) cycleFilter(delta int) tea.Cmd {
	if m.view == nil {
		return nil
	}
	idx := 0
	for i, f := range model.Filters {
		if f == m.view.ActiveFilter() {
			idx = i
			break
		}
	}
	n := len(model.Filters)
	return m.setFilter(model.Filters[((idx+delta)%n+n)%n])
}

func (m *appModel) setFilter(f model.Filter) tea.Cmd {
	if m.view == nil {
		return nil
	}
	if err := m.view.ApplyFilter(f); err != nil {
		return m.showToast(model.Notification{Kind: model.NotifyError, Message: err.Error()})
	}
	m.refreshVisits()
	return nil
}

func (m appModel) requestCancel() (tea.Model, tea.Cmd) {
	r, ok := m.selectedVisit()
	if !ok || m.sync == nil {
		return m, nil
	}
	conf, ok, err := m.sync.RequestCancel(r.ID, m.patient.Name)
	var notCancellable viewstate.NotCancellableError
	switch {
	case errors.As(err, &notCancellable):
		return m, m.showToast(model.Notification{Kind: model.NotifyWarning, Message: "Only scheduled or in-progress visits can be cancelled"})
	case errors.Is(err, viewstate.ErrInFlight):
		return m, m.showToast(model.Notification{Kind: model.NotifyInfo, Message: "Cancellation already in progress"})
	case err != nil:
		return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: err.Error()})
	case !ok:
		return m, m.showToast(model.Notification{Kind: model.NotifyInfo, Message: "Visit already cancelled"})
	}
	m.modal = modalConfirmCancel
	m.modalVisitID = conf.VisitID
	m.modalFocus = confirmFocusReason
	m.reason.Reset()
	return m, m.reason.Focus()
}

func (m appModel) updateCancelModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sync == nil {
		m.closeModal()
		return m, nil
	}
	conf, open := m.sync.Confirmation(m.modalVisitID)
	if !open {
		m.closeModal()
		return m, nil
	}
	if conf.ConfirmDisabled {
		// In flight: only esc works. It hides the dialog and the request keeps going.
		if msg.String() == "esc" {
			m.closeModal()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		_ = m.sync.Decline(m.modalVisitID)
		m.closeModal()
		return m, nil
	case "ctrl+s":
		return m.confirmCancel()
	case "tab":
		return m, m.setModalFocus((m.modalFocus + 1) % 3)
	case "shift+tab":
		return m, m.setModalFocus((m.modalFocus + 2) % 3)
	case "enter":
		switch m.modalFocus {
		case confirmFocusConfirm:
			return m.confirmCancel()
		case confirmFocusCancel:
			_ = m.sync.Decline(m.modalVisitID)
			m.closeModal()
			return m, nil
		}
	}

	if m.modalFocus != confirmFocusReason {
		return m, nil
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m *appModel) setModalFocus(f confirmModalFocus) tea.Cmd {
	m.modalFocus = f
	if f == confirmFocusReason {
		return m.reason.Focus()
	}
	m.reason.Blur()
	return nil
}

func (m appModel) confirmCancel() (tea.Model, tea.Cmd) {
	sub, err := m.sync.Confirm(m.modalVisitID, m.reason.Value())
	if err != nil {
		return m, m.showToast(model.Notification{Kind: model.NotifyError, Message: err.Error()})
	}
	m.reason.Blur()
	return m, tea.Batch(m.cancelCmd(sub), m.spinner.Tick)
}

func (m appModel) settleCancel(msg cancelSettledMsg) (tea.Model, tea.Cmd) {
	if m.sync == nil {
		return m, nil
	}
	out := m.sync.Settle(msg.sub, msg.err)
	cmds := []tea.Cmd{m.showToast(out.Notification)}
	if out.OK {
		if m.modalVisitID == msg.sub.VisitID {
			m.closeModal()
		}
		m.refreshVisits()
		cmds = append(cmds, m.scheduleReload(out.ReloadAfter))
	} else if m.modalVisitID == msg.sub.VisitID {
		// The confirmation stays open with its control re-enabled for a retry.
		m.modalFocus = confirmFocusConfirm
	} else {
		// The dialog was dismissed while the request was pending.
		_ = m.sync.Decline(msg.sub.VisitID)
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalVisitID = ""
	m.modalFocus = confirmFocusReason
	m.reason.Blur()
	m.reason.Reset()
}

func (m appModel) updateEditPatientModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab", "shift+tab", "left", "right":
		if m.modalFocus == confirmFocusConfirm {
			m.modalFocus = confirmFocusCancel
		} else {
			m.modalFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		confirmed := m.modalFocus == confirmFocusConfirm
		m.closeModal()
		if !confirmed {
			return m, nil
		}
		return m, m.openURLCmd(m.opts.Backend.EditPatientURL(m.patient.ID))
	}
	return m, nil
}

func (m appModel) openVisitAction(kind model.ActionKind) (tea.Model, tea.Cmd) {
	r, ok := m.selectedVisit()
	if !ok {
		return m, nil
	}
	if !r.Presentation.HasAction(kind) {
		msg := "This visit can no longer be edited"
		if kind == model.ActionPrint {
			msg = "Only completed visits can be printed"
		}
		return m, m.showToast(model.Notification{Kind: model.NotifyWarning, Message: msg})
	}
	url := m.opts.Backend.EditVisitURL(r.ID)
	if kind == model.ActionPrint {
		url = m.opts.Backend.PrintVisitURL(r.ID)
	}
	return m, m.openURLCmd(url)
}
