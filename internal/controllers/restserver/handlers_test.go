package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/chrissnell/solarvoyage/internal/log"
	"github.com/chrissnell/solarvoyage/pkg/config"
)

func init() {
	log.Init(true)
}

func testController(t *testing.T) *Controller {
	t.Helper()
	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, config.HTTPData{ListenAddr: ":0"},
		estimator.New(nil, nil), nil, log.GetSugaredLogger())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(testController(t).router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, expected 200", resp.StatusCode)
	}
}

func TestCreateEstimate(t *testing.T) {
	srv := httptest.NewServer(testController(t).router())
	defer srv.Close()

	body := `{
		"waypoints": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}],
		"start_time": "2024-03-20T12:00:00Z",
		"speed_kph": 10,
		"panel_area_m2": 10,
		"efficiency_kw_per_m2": 0.2,
		"cloud_attenuation": false
	}`

	resp, err := http.Post(srv.URL+"/api/v1/estimate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/v1/estimate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}

	var journey estimator.Journey
	if err := json.NewDecoder(resp.Body).Decode(&journey); err != nil {
		t.Fatalf("decoding journey: %v", err)
	}

	if journey.ID == "" {
		t.Error("journey is missing a run ID")
	}
	if len(journey.Samples) < 2 {
		t.Fatalf("expected a populated time series, got %d samples", len(journey.Samples))
	}
	if journey.TotalKWH <= 0 {
		t.Errorf("total = %f kWh, expected positive for a midday equatorial run", journey.TotalKWH)
	}
	for i := 1; i < len(journey.Samples); i++ {
		if journey.Samples[i].CumulativeKWH < journey.Samples[i-1].CumulativeKWH {
			t.Fatalf("cumulative energy decreased at sample %d", i)
		}
	}
}

func TestCreateEstimateRejectsBadInput(t *testing.T) {
	srv := httptest.NewServer(testController(t).router())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "single waypoint",
			body: `{"waypoints": [{"lat": 0, "lon": 0}], "speed_kph": 10, "panel_area_m2": 10, "efficiency_kw_per_m2": 0.2}`,
		},
		{
			name: "zero speed",
			body: `{"waypoints": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}], "speed_kph": 0, "panel_area_m2": 10, "efficiency_kw_per_m2": 0.2}`,
		},
		{
			name: "unknown field",
			body: `{"waypoints": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}], "speed_kph": 10, "panel_area_m2": 10, "efficiency_kw_per_m2": 0.2, "warp_factor": 9}`,
		},
		{
			name: "not JSON",
			body: `this is not a route`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/estimate", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", resp.StatusCode)
			}
		})
	}
}

func TestRunHistoryUnavailableWithoutStorage(t *testing.T) {
	srv := httptest.NewServer(testController(t).router())
	defer srv.Close()

	for _, path := range []string{
		"/api/v1/runs",
		"/api/v1/runs/some-id",
		"/api/v1/runs/some-id/sample?at=2024-03-20T12:00:00Z",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, expected 503", path, resp.StatusCode)
		}
	}
}
