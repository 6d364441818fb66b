package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medapp-cli/internal/model"

	"github.com/stretchr/testify/require"
)

const patientPageHTML = `<!doctype html>
<html><body>
<h1>  Ana   Pérez </h1>
<div class="consulta-timeline">
  <div class="consulta-timeline-item" data-estado="programada" data-consulta-id="11" data-fecha="2026-10-20T09:30">
    <h6 class="consulta-timeline-title">Control anual</h6>
    <span class="consulta-timeline-doctor">Dr. Ruiz</span>
  </div>
  <div class="consulta-timeline-item" data-estado="completada">
    <a href="/consultas/12/">Ver</a>
    <time class="consulta-timeline-date" datetime="2026-09-01">1 sep</time>
    <p class="consulta-timeline-body">Todo   bien <script>ignored()</script></p>
  </div>
  <div class="consulta-timeline-item" data-estado="no_asistio" data-consulta-id="13"></div>
  <div class="consulta-timeline-item" data-estado="cancelada"></div>
</div>
</body></html>`

func TestParsePatientPage(t *testing.T) {
	page, err := ParsePatientPage([]byte(patientPageHTML))
	require.NoError(t, err)
	require.Equal(t, "Ana Pérez", page.Patient.Name)
	require.Len(t, page.Visits, 2)
	require.Equal(t, 2, page.Skipped)

	first := page.Visits[0]
	require.Equal(t, "11", first.ID)
	require.Equal(t, model.StatusScheduled, first.Status)
	require.Equal(t, "Control anual", first.Title)
	require.Equal(t, "Dr. Ruiz", first.Doctor)
	require.NotNil(t, first.At)
	require.Equal(t, 9, first.At.Hour())

	second := page.Visits[1]
	require.Equal(t, "12", second.ID)
	require.Equal(t, model.StatusCompleted, second.Status)
	require.Equal(t, "Todo bien", second.Body)
	require.NotNil(t, second.At)
}

func TestParsePatientPage_PrefersDataName(t *testing.T) {
	page, err := ParsePatientPage([]byte(`<div data-patient-name="Luis Gómez"></div><h1>Ficha</h1>`))
	require.NoError(t, err)
	require.Equal(t, "Luis Gómez", page.Patient.Name)
	require.Empty(t, page.Visits)
}

func TestParsePatientList(t *testing.T) {
	raw := `<div class="row">
  <div class="card patient-card" data-patient-id="1" data-estado="activo">
    <h5 class="patient-name">Ana Pérez</h5>
    <span class="patient-age">34 años</span>
    <span class="patient-phone">5551234567</span>
  </div>
  <div class="card patient-card" data-patient-id="2"><h5>Luis Gómez</h5></div>
  <div class="card patient-card"><h5>No id</h5></div>
</div>`
	got, err := ParsePatientList([]byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, model.Patient{ID: "1", Name: "Ana Pérez", Age: "34 años", Phone: "5551234567", State: "activo"}, got[0])
	require.Equal(t, "Luis Gómez", got[1].Name)
}

func TestFetchPatientPage_SetsPatientID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pacientes/5/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(patientPageHTML))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	page, err := c.FetchPatientPage(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, "5", page.Patient.ID)
	for _, v := range page.Visits {
		require.Equal(t, "5", v.PatientID)
	}

	_, err = c.FetchPatientPage(context.Background(), "6")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusNotFound, te.StatusCode)
}
