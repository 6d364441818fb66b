package remote

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"medapp-cli/internal/model"
	"medapp-cli/internal/statusutil"

	"golang.org/x/net/html"
)

// PatientPage is what one load of a patient's page yields: the patient and the visit
// records rendered on its timeline.
type PatientPage struct {
	Patient model.Patient
	Visits  []model.VisitRecord
	// Skipped counts timeline entries that could not be turned into records
	// (missing id or a status this client does not track).
	Skipped int
}

// FetchPatientPage loads /pacientes/{id}/ and parses its visit timeline.
func (c *Client) FetchPatientPage(ctx context.Context, patientID string) (PatientPage, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return PatientPage{}, fmt.Errorf("load patient: missing patient id")
	}
	raw, err := c.get(ctx, "pacientes/"+patientID+"/", "load patient")
	if err != nil {
		return PatientPage{}, err
	}
	page, err := ParsePatientPage(raw)
	if err != nil {
		return PatientPage{}, err
	}
	page.Patient.ID = patientID
	for i := range page.Visits {
		page.Visits[i].PatientID = patientID
	}
	c.log.Info().Str("patient", patientID).Int("visits", len(page.Visits)).Int("skipped", page.Skipped).Msg("patient page loaded")
	return page, nil
}

// FetchPatients loads /pacientes/ and parses the patient cards.
func (c *Client) FetchPatients(ctx context.Context) ([]model.Patient, error) {
	raw, err := c.get(ctx, "pacientes/", "load patients")
	if err != nil {
		return nil, err
	}
	return ParsePatientList(raw)
}

var visitHrefRe = regexp.MustCompile(`/consultas/(\d+)/`)

func ParsePatientPage(raw []byte) (PatientPage, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return PatientPage{}, fmt.Errorf("parse patient page: %w", err)
	}

	var page PatientPage
	if n := findFirst(doc, func(n *html.Node) bool { return hasAttr(n, "data-patient-name") }); n != nil {
		page.Patient.Name = strings.TrimSpace(attr(n, "data-patient-name"))
	} else if n := findFirst(doc, isElement("h1")); n != nil {
		page.Patient.Name = textContent(n)
	}

	for _, item := range findAll(doc, hasClassPred("consulta-timeline-item")) {
		rec, ok := parseVisitItem(item)
		if !ok {
			page.Skipped++
			continue
		}
		page.Visits = append(page.Visits, rec)
	}
	return page, nil
}

func parseVisitItem(n *html.Node) (model.VisitRecord, bool) {
	st, err := statusutil.NormalizeStatus(attr(n, "data-estado"))
	if err != nil {
		return model.VisitRecord{}, false
	}
	id := strings.TrimSpace(attr(n, "data-consulta-id"))
	if id == "" {
		for _, a := range findAll(n, isElement("a")) {
			if m := visitHrefRe.FindStringSubmatch(attr(a, "href")); m != nil {
				id = m[1]
				break
			}
		}
	}
	if id == "" {
		return model.VisitRecord{}, false
	}

	rec := model.VisitRecord{ID: id, Status: st}
	if t := findFirst(n, hasClassPred("consulta-timeline-title")); t != nil {
		rec.Title = textContent(t)
	}
	if d := findFirst(n, hasClassPred("consulta-timeline-doctor")); d != nil {
		rec.Doctor = textContent(d)
	}
	if b := findFirst(n, hasClassPred("consulta-timeline-body")); b != nil {
		rec.Body = textContent(b)
	}
	when := attr(n, "data-fecha")
	if when == "" {
		if d := findFirst(n, hasClassPred("consulta-timeline-date")); d != nil {
			if when = attr(d, "datetime"); when == "" {
				when = textContent(d)
			}
		}
	}
	if at, ok := parseVisitTime(when); ok {
		rec.At = &at
	}
	return rec, true
}

var visitTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	"2006-01-02",
	"02/01/2006",
}

func parseVisitTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range visitTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func ParsePatientList(raw []byte) ([]model.Patient, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse patient list: %w", err)
	}
	var out []model.Patient
	for _, card := range findAll(doc, hasClassPred("patient-card")) {
		id := strings.TrimSpace(attr(card, "data-patient-id"))
		if id == "" {
			continue
		}
		p := model.Patient{ID: id, State: strings.TrimSpace(attr(card, "data-estado"))}
		if n := findFirst(card, hasClassPred("patient-name")); n != nil {
			p.Name = textContent(n)
		} else if n := findFirst(card, isElement("h5")); n != nil {
			p.Name = textContent(n)
		}
		if n := findFirst(card, hasClassPred("patient-age")); n != nil {
			p.Age = textContent(n)
		}
		if n := findFirst(card, hasClassPred("patient-phone")); n != nil {
			p.Phone = textContent(n)
		}
		if n := findFirst(card, hasClassPred("patient-email")); n != nil {
			p.Email = textContent(n)
		}
		out = append(out, p)
	}
	return out, nil
}

// HTML helpers.

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }
}

func hasClassPred(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if n := findFirst(c, pred); n != nil {
			return n
		}
	}
	return nil
}

// findAll returns matching descendants in document order, without descending into matches.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// textContent returns the node's text with whitespace runs collapsed.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
