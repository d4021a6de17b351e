package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ImportsTotal.WithLabelValues(OutcomeRejected))
	ImportsTotal.WithLabelValues(OutcomeRejected).Inc()

	if got := testutil.ToFloat64(ImportsTotal.WithLabelValues(OutcomeRejected)); got != before+1 {
		t.Errorf("rejected imports = %v, want %v", got, before+1)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ExportsTotal.Inc()
	LicenseNotices.WithLabelValues("warning").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"orcamentos_exports_total", "orcamentos_license_notices_total", "orcamentos_import_duration_seconds"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
