package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInstrumentPassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := Instrument(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/register", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestInstrumentUnwrapsToOriginalWriter(t *testing.T) {
	rec := httptest.NewRecorder()

	// WebSocket upgrades need to reach the raw connection through the
	// wrapper, so the recorder must unwrap to the original writer.
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			t.Fatal("wrapped writer does not support Unwrap")
		}
		if u.Unwrap() != rec {
			t.Error("Unwrap did not return the original writer")
		}
	})

	Instrument(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
}
