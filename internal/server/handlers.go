package server

import (
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/healthecon/preventsim/internal/engine"
	"github.com/healthecon/preventsim/internal/modules/runs"
)

// Handlers exposes the engine's four operations over HTTP. A RW mutex
// serializes model replacement and calibration (which mutate) against runs
// (which only read); Monte Carlo parallelism lives inside the engine.
type Handlers struct {
	mu    sync.RWMutex
	model *engine.Model

	repo         *runs.Repository
	log          zerolog.Logger
	mcIterations int
	mcSeed       uint64
	mcWorkers    int
	historyLimit int
}

// HandlersConfig wires the handler dependencies
type HandlersConfig struct {
	Model        *engine.Model
	Repo         *runs.Repository
	Log          zerolog.Logger
	MCIterations int
	MCSeed       uint64
	MCWorkers    int
	HistoryKeep  int
}

// NewHandlers creates the handler set
func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		model:        cfg.Model,
		repo:         cfg.Repo,
		log:          cfg.Log.With().Str("handler", "engine").Logger(),
		mcIterations: cfg.MCIterations,
		mcSeed:       cfg.MCSeed,
		mcWorkers:    cfg.MCWorkers,
		historyLimit: cfg.HistoryKeep,
	}
}

// Snapshot runs one deterministic evaluation of the current model; used by
// the snapshot scheduler job
func (h *Handlers) Snapshot() (interface{}, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := h.model.RunDeterministic()
	return map[string]interface{}{
		"result": result,
		"roi":    result.ROI(),
	}, nil
}

// HandleHealth reports liveness
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetParameters returns the model's canonical full-precision
// parameters. Rounding for display is the caller's concern.
func (h *Handlers) HandleGetParameters(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	params := h.model.Parameters()
	h.mu.RUnlock()

	h.writeJSON(w, http.StatusOK, params)
}

// HandleLoadModel validates a parameters payload and replaces the loaded
// model
func (h *Handlers) HandleLoadModel(w http.ResponseWriter, r *http.Request) {
	var params engine.Parameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid parameters payload: "+err.Error())
		return
	}

	model, err := engine.Load(params, h.log)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.mu.Lock()
	h.model = model
	h.mu.Unlock()

	h.log.Info().Int("interventions", len(params.Interventions)).Msg("Model replaced")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// HandleRunDeterministic evaluates the portfolio once at the channel means
func (h *Handlers) HandleRunDeterministic(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	result := h.model.RunDeterministic()
	h.mu.RUnlock()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": result,
		"roi":    result.ROI(),
	})
}

// HandleRunMonteCarlo runs a probabilistic sensitivity analysis and
// persists its summary
func (h *Handlers) HandleRunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	cfg := engine.MonteCarloConfig{
		Iterations: h.mcIterations,
		Seed:       h.mcSeed,
		Workers:    h.mcWorkers,
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid monte carlo config: "+err.Error())
			return
		}
		if cfg.Workers <= 0 {
			cfg.Workers = h.mcWorkers
		}
	}

	h.mu.RLock()
	summary, err := h.model.RunMonteCarlo(r.Context(), cfg)
	h.mu.RUnlock()
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	if payload, err := json.Marshal(summary); err != nil {
		h.log.Error().Err(err).Msg("Failed to serialize monte carlo summary")
	} else if _, err := h.repo.Insert(runs.KindMonteCarlo, summary.Iterations, summary.Seed, string(payload)); err != nil {
		h.log.Warn().Err(err).Msg("Failed to persist monte carlo run")
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// calibrateRequest carries per-intervention targets plus an optional
// portfolio-level benefit retarget
type calibrateRequest struct {
	Targets   map[string]engine.CalibrationTarget `json:"targets"`
	Portfolio *engine.PortfolioTarget             `json:"portfolio,omitempty"`
}

// HandleCalibrate mutates the loaded model so deterministic runs reproduce
// the supplied targets, returning the change record
func (h *Handlers) HandleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid calibration payload: "+err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	record, err := h.model.Calibrate(req.Targets)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if req.Portfolio != nil {
		portfolioRecord, err := h.model.CalibratePortfolio(*req.Portfolio)
		if err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		for key, changes := range portfolioRecord.Changes {
			record.Changes[key] = append(record.Changes[key], changes...)
		}
	}

	h.writeJSON(w, http.StatusOK, record)
}

// HandleListRuns returns recent persisted run summaries
func (h *Handlers) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(h.historyLimit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []runs.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
