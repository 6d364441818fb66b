package viewstate

import (
	"fmt"

	"medapp-cli/internal/model"
	"medapp-cli/internal/statusutil"

	"github.com/rs/zerolog"
)

// CounterSurface receives every freshly recomputed snapshot (filter tab badges,
// quick-stat tiles, metrics).
type CounterSurface interface {
	PublishCounters(model.CounterSnapshot)
}

type CounterSurfaceFunc func(model.CounterSnapshot)

func (f CounterSurfaceFunc) PublishCounters(s model.CounterSnapshot) { f(s) }

// Tab is one filter control. Exactly one tab is selected at a time.
type Tab struct {
	Filter   model.Filter `json:"filter"`
	Label    string       `json:"label"`
	Count    int          `json:"count"`
	Selected bool         `json:"selected"`
}

// Placeholder is shown instead of the timeline when no record is visible.
type Placeholder struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

// View is the single owner of a page's visit state: the record store, the active
// filter, the no-results placeholder and the counter snapshot. It is not safe for
// concurrent use; drive it from one goroutine.
type View struct {
	store       *Store
	filter      model.Filter
	placeholder *Placeholder
	snapshot    model.CounterSnapshot
	surfaces    []CounterSurface
	log         zerolog.Logger
}

type Option func(*View)

func WithLogger(l zerolog.Logger) Option {
	return func(v *View) { v.log = l }
}

func WithSurface(s CounterSurface) Option {
	return func(v *View) { v.surfaces = append(v.surfaces, s) }
}

// NewView builds the view for one page load with every record visible.
func NewView(records []model.VisitRecord, opts ...Option) (*View, error) {
	st, err := NewStore(records)
	if err != nil {
		return nil, err
	}
	v := &View{store: st, filter: model.FilterAll, log: zerolog.Nop()}
	for _, o := range opts {
		o(v)
	}
	if err := v.ApplyFilter(model.FilterAll); err != nil {
		return nil, err
	}
	return v, nil
}

// Subscribe adds a counter surface and immediately publishes the current snapshot to it.
func (v *View) Subscribe(s CounterSurface) {
	if s == nil {
		return
	}
	v.surfaces = append(v.surfaces, s)
	s.PublishCounters(cloneSnapshot(v.snapshot))
}

// ApplyFilter makes f the active filter, updates every record's visibility, replaces
// the placeholder and republishes counters. When it returns, all derived state is
// consistent with f.
func (v *View) ApplyFilter(f model.Filter) error {
	if !validFilter(f) {
		return fmt.Errorf("invalid filter: %s", f)
	}
	v.filter = f

	visible := 0
	for _, r := range v.store.records {
		r.Visible = f.Matches(r.Status)
		if r.Visible {
			visible++
		}
	}

	v.placeholder = nil
	if visible == 0 {
		v.placeholder = &Placeholder{
			Title: "No visits match this filter",
			Hint:  "Try selecting another status",
		}
	}

	v.RecomputeCounters()
	v.log.Debug().Str("filter", string(f)).Int("visible", visible).Msg("filter applied")
	return nil
}

// RecomputeCounters rebuilds the snapshot from every record (visible or not) and
// publishes it to all surfaces.
func (v *View) RecomputeCounters() model.CounterSnapshot {
	v.snapshot = countRecords(v.store.records)
	for _, s := range v.surfaces {
		s.PublishCounters(cloneSnapshot(v.snapshot))
	}
	return cloneSnapshot(v.snapshot)
}

func countRecords(records []*model.VisitRecord) model.CounterSnapshot {
	counts := make(map[model.Filter]int, len(model.Filters))
	for _, f := range model.Filters {
		counts[f] = 0
	}
	for _, r := range records {
		counts[model.FilterAll]++
		counts[model.Filter(r.Status)]++
	}
	return model.CounterSnapshot{Counts: counts}
}

func cloneSnapshot(s model.CounterSnapshot) model.CounterSnapshot {
	out := make(map[model.Filter]int, len(s.Counts))
	for k, n := range s.Counts {
		out[k] = n
	}
	return model.CounterSnapshot{Counts: out}
}

func validFilter(f model.Filter) bool {
	for _, x := range model.Filters {
		if x == f {
			return true
		}
	}
	return false
}

func (v *View) ActiveFilter() model.Filter { return v.filter }

func (v *View) Snapshot() model.CounterSnapshot { return cloneSnapshot(v.snapshot) }

// Placeholder returns the no-results placeholder, or nil when something is visible.
func (v *View) Placeholder() *Placeholder {
	if v.placeholder == nil {
		return nil
	}
	p := *v.placeholder
	return &p
}

func (v *View) Tabs() []Tab {
	tabs := make([]Tab, 0, len(model.Filters))
	for _, f := range model.Filters {
		tabs = append(tabs, Tab{
			Filter:   f,
			Label:    statusutil.FilterLabel(f),
			Count:    v.snapshot.Count(f),
			Selected: f == v.filter,
		})
	}
	return tabs
}

func (v *View) Records() []model.VisitRecord { return v.store.All() }

// Visible returns the records shown under the active filter, in render order.
func (v *View) Visible() []model.VisitRecord {
	out := make([]model.VisitRecord, 0, len(v.store.records))
	for _, r := range v.store.records {
		if r.Visible {
			out = append(out, cloneRecord(*r))
		}
	}
	return out
}

func (v *View) Record(id string) (model.VisitRecord, bool) { return v.store.Get(id) }

func (v *View) Len() int { return v.store.Len() }
