package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chrissnell/solarvoyage/internal/estimator"
	"github.com/chrissnell/solarvoyage/internal/log"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateEstimate computes a journey estimate from the posted route and
// parameters, persisting the run when storage is configured.
func (h *Handlers) CreateEstimate(w http.ResponseWriter, req *http.Request) {
	var estimateReq estimator.EstimateRequest
	decoder := json.NewDecoder(req.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&estimateReq); err != nil {
		writeError(w, http.StatusBadRequest, "malformed estimate request: "+err.Error())
		return
	}

	// An omitted start time means "leaving now"
	if estimateReq.StartTime.IsZero() {
		estimateReq.StartTime = time.Now().UTC()
	}

	journey, err := h.controller.Estimator.Estimate(req.Context(), estimateReq)
	if err != nil {
		switch {
		case errors.Is(err, estimator.ErrInvalidRoute), errors.Is(err, estimator.ErrInvalidParameter):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Errorf("estimate failed: %v", err)
			writeError(w, http.StatusInternalServerError, "estimate failed")
		}
		return
	}

	if h.controller.DBEnabled {
		if err := h.controller.DB.SaveJourney(journey); err != nil {
			// The caller still gets their estimate; history is best-effort
			log.Errorf("error persisting run %s: %v", journey.ID, err)
		}
	}

	log.Infof("estimated run %s: %.1f km, %.2f kWh over %v",
		journey.ID, journey.DistanceKm, journey.TotalKWH, journey.Duration())

	writeJSON(w, http.StatusOK, journey)
}

// ListRuns returns recent persisted run summaries
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	if !h.controller.DBEnabled {
		writeError(w, http.StatusServiceUnavailable, "run history storage is not configured")
		return
	}

	runs, err := h.controller.DB.ListRuns(0)
	if err != nil {
		log.Errorf("error listing runs: %v", err)
		writeError(w, http.StatusInternalServerError, "error listing runs")
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns a full persisted journey
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	journey, done := h.loadRun(w, req)
	if done {
		return
	}
	writeJSON(w, http.StatusOK, journey)
}

// GetRunSample resolves a timestamp within a persisted run to the nearest
// sample, giving the frontend a position for a selected point on the
// production graph.
func (h *Handlers) GetRunSample(w http.ResponseWriter, req *http.Request) {
	journey, done := h.loadRun(w, req)
	if done {
		return
	}

	at, err := time.Parse(time.RFC3339, req.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "at parameter must be an RFC3339 timestamp")
		return
	}

	sample, ok := journey.SampleAt(at)
	if !ok {
		writeError(w, http.StatusNotFound, "run has no samples")
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

// loadRun fetches the journey named in the route. The boolean result is true
// when a response has already been written.
func (h *Handlers) loadRun(w http.ResponseWriter, req *http.Request) (*estimator.Journey, bool) {
	if !h.controller.DBEnabled {
		writeError(w, http.StatusServiceUnavailable, "run history storage is not configured")
		return nil, true
	}

	runID := mux.Vars(req)["id"]
	journey, err := h.controller.DB.GetJourney(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return nil, true
		}
		log.Errorf("error loading run %s: %v", runID, err)
		writeError(w, http.StatusInternalServerError, "error loading run")
		return nil, true
	}

	return journey, false
}
