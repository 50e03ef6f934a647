package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clinicware/booking-platform/internal/appointments"
	"github.com/clinicware/booking-platform/internal/directory"
	"github.com/clinicware/booking-platform/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.Default()
	svc := appointments.NewService(directory.NewFakeDirectory(), appointments.NewInMemoryStore(), nil, logger)
	return New(&Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(svc, logger),
	})
}

func TestRoutesAreWired(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/availability", "", http.StatusOK},
		{http.MethodGet, "/doctors", "", http.StatusOK},
		{http.MethodGet, "/appointments?patientId=pat-1", "", http.StatusOK},
		{http.MethodPost, "/appointments", `{"patientId":"p","doctorId":"ghost","date":"2099-01-01","time":"09:00"}`, http.StatusNotFound},
		{http.MethodPost, "/appointments/1/cancel", `{"patientId":"p"}`, http.StatusNotFound},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
		} else {
			req = httptest.NewRequest(tc.method, tc.target, nil)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s %s: expected %d, got %d (%s)", tc.method, tc.target, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestMetricsEndpointMountedWhenConfigured(t *testing.T) {
	logger := logging.Default()
	svc := appointments.NewService(directory.NewFakeDirectory(), appointments.NewInMemoryStore(), nil, logger)
	r := New(&Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(svc, logger),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics handler, got %d", w.Code)
	}
}
