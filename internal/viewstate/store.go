package viewstate

import (
	"fmt"
	"strings"

	"medapp-cli/internal/model"
)

// Store holds the visit records of one page load, in render order.
//
// Records are created once and never removed; only their status (and the
// presentation derived from it) changes.
type Store struct {
	records []*model.VisitRecord
	byID    map[string]*model.VisitRecord
}

func NewStore(records []model.VisitRecord) (*Store, error) {
	s := &Store{
		records: make([]*model.VisitRecord, 0, len(records)),
		byID:    make(map[string]*model.VisitRecord, len(records)),
	}
	for i := range records {
		r := cloneRecord(records[i])
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			return nil, fmt.Errorf("visit record %d: missing id", i)
		}
		if !knownStatus(r.Status) {
			return nil, fmt.Errorf("visit record %s: unknown status %q", r.ID, r.Status)
		}
		if _, dup := s.byID[r.ID]; dup {
			return nil, fmt.Errorf("visit record %d: duplicate id %s", i, r.ID)
		}
		if len(r.Presentation.Actions) == 0 && r.Presentation.BadgeLabel == "" {
			r.Presentation = PresentationFor(r.Status)
		}
		s.records = append(s.records, &r)
		s.byID[r.ID] = &r
	}
	return s, nil
}

func knownStatus(st model.Status) bool {
	for _, x := range model.Statuses {
		if x == st {
			return true
		}
	}
	return false
}

func (s *Store) Len() int { return len(s.records) }

func (s *Store) get(id string) (*model.VisitRecord, bool) {
	r, ok := s.byID[strings.TrimSpace(id)]
	return r, ok
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (model.VisitRecord, bool) {
	r, ok := s.get(id)
	if !ok {
		return model.VisitRecord{}, false
	}
	return cloneRecord(*r), true
}

// All returns copies of every record in render order.
func (s *Store) All() []model.VisitRecord {
	out := make([]model.VisitRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, cloneRecord(*r))
	}
	return out
}

func cloneRecord(r model.VisitRecord) model.VisitRecord {
	if r.Presentation.Actions != nil {
		r.Presentation.Actions = append([]model.Action(nil), r.Presentation.Actions...)
	}
	if r.Presentation.Alert != nil {
		a := *r.Presentation.Alert
		r.Presentation.Alert = &a
	}
	return r
}
