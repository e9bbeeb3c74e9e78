package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hbnb_web/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/places/{id}", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("hbnb", "GET", 200, 30*time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "hbnb_http_requests_total") {
		t.Fatalf("expected hbnb_http_requests_total in output")
	}
	if !strings.Contains(out, "hbnb_external_requests_total") {
		t.Fatalf("expected hbnb_external_requests_total in output")
	}
}
