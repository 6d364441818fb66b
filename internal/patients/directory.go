package patients

import (
	"context"
	"sort"
	"strings"
	"time"

	"medapp-cli/internal/model"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// MinQueryLen is the shortest query that triggers a search. Shorter non-empty input
// leaves the current results alone.
const MinQueryLen = 3

const listKey = "patients"

// Lister loads the full patient list from the server.
type Lister interface {
	FetchPatients(ctx context.Context) ([]model.Patient, error)
}

type Option func(*Directory)

func WithTTL(ttl time.Duration) Option {
	return func(d *Directory) { d.ttl = ttl }
}

func WithLogger(l zerolog.Logger) Option {
	return func(d *Directory) { d.log = l }
}

// Directory caches the patient list and answers search queries against it.
type Directory struct {
	src   Lister
	ttl   time.Duration
	cache *cache.Cache
	log   zerolog.Logger
}

func NewDirectory(src Lister, opts ...Option) *Directory {
	d := &Directory{src: src, ttl: 5 * time.Minute, log: zerolog.Nop()}
	for _, o := range opts {
		o(d)
	}
	d.cache = cache.New(d.ttl, 2*d.ttl)
	return d
}

// All returns the cached patient list, loading it on first use or after expiry.
func (d *Directory) All(ctx context.Context) ([]model.Patient, error) {
	if v, ok := d.cache.Get(listKey); ok {
		return v.([]model.Patient), nil
	}
	list, err := d.src.FetchPatients(ctx)
	if err != nil {
		return nil, err
	}
	d.cache.SetDefault(listKey, list)
	d.log.Debug().Int("patients", len(list)).Msg("patient directory loaded")
	return list, nil
}

// Invalidate drops the cached list so the next lookup hits the server.
func (d *Directory) Invalidate() { d.cache.Delete(listKey) }

// Search returns the patients matching q. The bool reports whether the query was
// actionable: an empty query clears results (nil, true), a query shorter than
// MinQueryLen is ignored (nil, false).
func (d *Directory) Search(ctx context.Context, q string) ([]model.Patient, bool, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, true, nil
	}
	if len([]rune(q)) < MinQueryLen {
		return nil, false, nil
	}
	list, err := d.All(ctx)
	if err != nil {
		return nil, true, err
	}
	return Match(list, q), true, nil
}

// Match filters list by a case-insensitive substring over name, id, phone and email.
// Name matches sort first.
func Match(list []model.Patient, q string) []model.Patient {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return nil
	}
	digits := onlyDigits(needle)

	type hit struct {
		p    model.Patient
		rank int
	}
	var hits []hit
	for _, p := range list {
		switch {
		case strings.Contains(strings.ToLower(p.Name), needle):
			hits = append(hits, hit{p, 0})
		case strings.EqualFold(p.ID, needle):
			hits = append(hits, hit{p, 1})
		case strings.Contains(strings.ToLower(p.Email), needle):
			hits = append(hits, hit{p, 2})
		case digits != "" && strings.Contains(onlyDigits(p.Phone), digits):
			hits = append(hits, hit{p, 3})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	out := make([]model.Patient, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
	}
	return out
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
