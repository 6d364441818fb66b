package tui

import (
	"context"
	"strings"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/viewstate"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const (
	defaultReloadAfter    = 2 * time.Second
	defaultToastTTL       = 3 * time.Second
	defaultSearchDebounce = 300 * time.Millisecond
	loadMoreDelay         = 1500 * time.Millisecond
)

// counterBoard is the on-screen counter surface. The model is copied on every update,
// so the board lives behind a pointer that the view publishes into.
type counterBoard struct {
	snap model.CounterSnapshot
}

func (b *counterBoard) PublishCounters(s model.CounterSnapshot) { b.snap = s }

type appModel struct {
	ctx  context.Context
	opts Options
	log  zerolog.Logger

	width  int
	height int

	screen screen
	modal  modalKind

	// Patient search.
	search        textinput.Model
	searchSeq     int
	searchQuery   string
	searchLoading bool
	searchErr     string
	patientList   list.Model
	cameFromList  bool

	// Visit history.
	patient     model.Patient
	loading     bool
	loadSeq     int
	loadErr     string
	view        *viewstate.View
	sync        *viewstate.Synchronizer
	board       *counterBoard
	visitList   list.Model
	skipped     int
	reloadSeq   int
	loadingMore bool
	moreSeq     int

	// Confirmation modals.
	modalVisitID string
	modalFocus   confirmModalFocus
	reason       textarea.Model
	spinner      spinner.Model

	toast    *model.Notification
	toastSeq int

	now func() time.Time
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if opts.ReloadAfter < 0 {
		opts.ReloadAfter = defaultReloadAfter
	}
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = defaultToastTTL
	}
	if opts.SearchDebounce < 0 {
		opts.SearchDebounce = defaultSearchDebounce
	}
	if opts.OpenURL == nil {
		opts.OpenURL = func(string) error { return nil }
	}

	search := textinput.New()
	search.Placeholder = "Search patients by name, id, phone or email"
	search.Prompt = "/ "
	search.CharLimit = 120
	search.Focus()

	reason := textarea.New()
	reason.Placeholder = "Reason (optional)"
	reason.ShowLineNumbers = false
	reason.CharLimit = 500
	reason.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		ctx:         ctx,
		opts:        opts,
		log:         opts.Log,
		screen:      screenPatients,
		search:      search,
		patientList: newList(newPatientDelegate()),
		visitList:   newList(newVisitDelegate()),
		board:       &counterBoard{},
		reason:      reason,
		spinner:     sp,
		now:         time.Now,
	}
	if id := strings.TrimSpace(opts.PatientID); id != "" {
		m.screen = screenHistory
		m.patient = model.Patient{ID: id}
		m.loading = true
	}
	return m
}

func newList(d list.ItemDelegate) list.Model {
	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	return l
}

func (m appModel) Init() tea.Cmd {
	if m.screen == screenHistory {
		return tea.Batch(m.loadPageCmd(m.patient.ID, m.loadSeq), m.spinner.Tick)
	}
	return textinput.Blink
}

func (m appModel) loadPageCmd(patientID string, seq int) tea.Cmd {
	ctx, b := m.ctx, m.opts.Backend
	return func() tea.Msg {
		page, err := b.FetchPatientPage(ctx, patientID)
		return pageLoadedMsg{seq: seq, patientID: patientID, page: page, err: err}
	}
}

func (m appModel) searchCmd(query string, seq int) tea.Cmd {
	ctx, s := m.ctx, m.opts.Patients
	return func() tea.Msg {
		if s == nil {
			return searchResultMsg{seq: seq, query: query, ok: true}
		}
		found, ok, err := s.Search(ctx, query)
		return searchResultMsg{seq: seq, query: query, patients: found, ok: ok, err: err}
	}
}

func (m appModel) cancelCmd(sub viewstate.Submission) tea.Cmd {
	ctx, b := m.ctx, m.opts.Backend
	return func() tea.Msg {
		return cancelSettledMsg{sub: sub, err: b.CancelVisit(ctx, sub.VisitID, sub.Reason)}
	}
}

func (m appModel) openURLCmd(url string) tea.Cmd {
	open := m.opts.OpenURL
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: open(url)}
	}
}

// showToast replaces the current notification and schedules its dismissal.
func (m *appModel) showToast(n model.Notification) tea.Cmd {
	if strings.TrimSpace(n.Message) == "" {
		return nil
	}
	m.toast = &n
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.opts.ToastTTL, func(time.Time) tea.Msg { return toastDoneMsg{seq: seq} })
}

func (m *appModel) scheduleReload(after time.Duration) tea.Cmd {
	if after <= 0 {
		return nil
	}
	m.reloadSeq++
	seq, id := m.reloadSeq, m.patient.ID
	return tea.Tick(after, func(time.Time) tea.Msg { return reloadMsg{seq: seq, patientID: id} })
}

// installPage replaces the view state with a freshly loaded page. The active filter
// survives reloads of the same patient.
func (m *appModel) installPage(msg pageLoadedMsg) error {
	filter := model.FilterAll
	if m.view != nil && m.patient.ID == msg.patientID {
		filter = m.view.ActiveFilter()
	}
	surfaces := append([]viewstate.CounterSurface{m.board}, m.opts.Surfaces...)
	opts := []viewstate.Option{viewstate.WithLogger(m.log)}
	for _, s := range surfaces {
		opts = append(opts, viewstate.WithSurface(s))
	}
	v, err := viewstate.NewView(msg.page.Visits, opts...)
	if err != nil {
		return err
	}
	if filter != model.FilterAll {
		_ = v.ApplyFilter(filter)
	}

	m.view = v
	m.sync = viewstate.NewSynchronizer(v,
		viewstate.WithSyncLogger(m.log),
		viewstate.WithReloadAfter(m.opts.ReloadAfter),
	)
	p := msg.page.Patient
	if p.ID == "" {
		p.ID = msg.patientID
	}
	if p.Name == "" {
		p.Name = m.patient.Name
	}
	m.patient = p
	m.skipped = msg.page.Skipped
	m.refreshVisits()
	return nil
}

// refreshVisits rebuilds the timeline list from the view, keeping the selection on the
// same visit when it is still visible.
func (m *appModel) refreshVisits() {
	if m.view == nil {
		m.visitList.SetItems(nil)
		return
	}
	selected := m.selectedVisitID()
	visible := m.view.Visible()
	items := make([]list.Item, 0, len(visible))
	idx := 0
	now := m.now()
	for i, r := range visible {
		items = append(items, visitItem{rec: r, now: now})
		if r.ID == selected {
			idx = i
		}
	}
	m.visitList.SetItems(items)
	if len(items) > 0 {
		m.visitList.Select(idx)
	}
}

func (m appModel) selectedVisitID() string {
	if it, ok := m.visitList.SelectedItem().(visitItem); ok {
		return it.rec.ID
	}
	return ""
}

func (m appModel) selectedVisit() (model.VisitRecord, bool) {
	id := m.selectedVisitID()
	if id == "" || m.view == nil {
		return model.VisitRecord{}, false
	}
	return m.view.Record(id)
}

func (m *appModel) setPatientResults(found []model.Patient) {
	items := make([]list.Item, 0, len(found))
	for _, p := range found {
		items = append(items, patientItem{p: p})
	}
	m.patientList.SetItems(items)
	if len(items) > 0 {
		m.patientList.Select(0)
	}
}

func (m *appModel) openHistory(p model.Patient) tea.Cmd {
	m.screen = screenHistory
	m.search.Blur()
	m.patient = p
	m.view = nil
	m.sync = nil
	m.board.snap = model.CounterSnapshot{}
	m.loadErr = ""
	m.loading = true
	m.loadingMore = false
	m.reloadSeq++
	m.loadSeq++
	m.refreshVisits()
	return tea.Batch(m.loadPageCmd(p.ID, m.loadSeq), m.spinner.Tick)
}

func (m *appModel) backToPatients() tea.Cmd {
	m.screen = screenPatients
	m.view = nil
	m.sync = nil
	m.loading = false
	m.reloadSeq++
	m.loadSeq++
	return m.search.Focus()
}

func (m *appModel) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	listW := m.width
	if m.width >= 100 {
		listW = m.width * 11 / 20
	}
	// Header, tabs, tiles, footer and toast line.
	listH := m.height - 12
	if listH < 3 {
		listH = 3
	}
	m.visitList.SetSize(listW, listH)
	m.patientList.SetSize(m.width, m.height-6)
	m.search.Width = m.width - 6
	m.reason.SetWidth(modalBodyWidth(m.width) - 2)
}
