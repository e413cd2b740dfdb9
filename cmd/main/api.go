package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/CTAG07/Glossa/pkg/dictionary"
	"github.com/CTAG07/Glossa/pkg/markov"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type apiMetrics struct {
	generations *prometheus.CounterVec
	words       prometheus.Histogram
	duration    prometheus.Histogram
}

func newAPIMetrics(reg prometheus.Registerer) *apiMetrics {
	m := &apiMetrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glossa_generations_total",
				Help: "Total number of generation requests by source and outcome",
			},
			[]string{"source", "status"},
		),
		words: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "glossa_generated_words",
			Help:    "Number of words in generated texts",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "glossa_generation_duration_seconds",
			Help: "Time spent building the chain and generating text",
		}),
	}
	reg.MustRegister(m.generations, m.words, m.duration)
	return m
}

// API holds the dependencies for the HTTP handlers. The dictionary is shared
// read-only; every request builds its own chain.
type API struct {
	dict          *dictionary.Dictionary
	store         *dictionary.Store
	gen           GenerationConfig
	maxIterations int
	maxOrder      int
	logger        *slog.Logger
	metrics       *apiMetrics
	gatherer      prometheus.Gatherer

	statsOnce sync.Once
	stats     DictionaryStats
	statsErr  error
}

// NewAPI creates a new instance of the API. store may be nil, in which case
// runs cannot be saved.
func NewAPI(d *dictionary.Dictionary, store *dictionary.Store, cfg *Config, logger *slog.Logger, reg *prometheus.Registry) *API {
	return &API{
		dict:          d,
		store:         store,
		gen:           cfg.Generation,
		maxIterations: cfg.Server.MaxIterations,
		maxOrder:      cfg.Server.MaxOrder,
		logger:        logger,
		metrics:       newAPIMetrics(reg),
		gatherer:      reg,
	}
}

// Routes returns the router serving every endpoint.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/generate", a.handleGenerate)
	r.Get("/api/words/{name}", a.handleWord)
	r.Get("/api/stats", a.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	return r
}

// generationParams applies the query parameters of r over the defaults.
func (a *API) generationParams(r *http.Request) (GenerationConfig, markov.State, bool, error) {
	gc := a.gen
	q := r.URL.Query()

	var err error
	if gc.Order, err = queryInt(q.Get("order"), gc.Order); err != nil {
		return gc, "", false, fmt.Errorf("invalid order: %w", err)
	}
	if gc.Order < 1 {
		return gc, "", false, markov.ErrInvalidOrder
	}
	if gc.Order > a.maxOrder {
		return gc, "", false, fmt.Errorf("order must be between 1 and %d", a.maxOrder)
	}
	if gc.Iterations, err = queryInt(q.Get("iterations"), gc.Iterations); err != nil {
		return gc, "", false, fmt.Errorf("invalid iterations: %w", err)
	}
	if gc.Iterations < 1 || gc.Iterations > a.maxIterations {
		return gc, "", false, fmt.Errorf("iterations must be between 1 and %d", a.maxIterations)
	}
	if s := q.Get("seed"); s != "" {
		if gc.Seed, err = strconv.ParseUint(s, 10, 64); err != nil {
			return gc, "", false, fmt.Errorf("invalid seed: %w", err)
		}
	}
	if s := q.Get("source"); s != "" {
		if s != SourceAll && s != SourceWord {
			return gc, "", false, fmt.Errorf("unknown source %q", s)
		}
		gc.Source = s
	}

	save := false
	if s := q.Get("save"); s != "" {
		if save, err = strconv.ParseBool(s); err != nil {
			return gc, "", false, fmt.Errorf("invalid save flag: %w", err)
		}
	}
	return gc, markov.State(q.Get("start")), save, nil
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	gc, start, save, err := a.generationParams(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if save && a.store == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Run storage is not available")
		return
	}

	began := time.Now()
	g, err := runGeneration(r.Context(), a.dict, gc, start, a.logger)
	a.metrics.duration.Observe(time.Since(began).Seconds())
	if err != nil {
		a.metrics.generations.WithLabelValues(gc.Source, "error").Inc()
		switch {
		case errors.Is(err, markov.ErrSeedLength):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, markov.ErrEmptyModel), errors.Is(err, markov.ErrNoUsableEntry):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			a.logger.Error("Generation failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Generation failed")
		}
		return
	}

	if save {
		if err = recordGeneration(r.Context(), a.store, g, gc.Order); err != nil {
			a.logger.Error("Failed to record run", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to save run")
			return
		}
	}

	a.metrics.generations.WithLabelValues(gc.Source, "ok").Inc()
	a.metrics.words.Observe(float64(g.Words))
	respondWithJSON(w, http.StatusOK, g)
}

func (a *API) handleWord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	e, ok := a.dict.Get(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Word '%s' not found", name))
		return
	}
	respondWithJSON(w, http.StatusOK, e)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	a.statsOnce.Do(func() {
		a.stats, a.statsErr = collectStats(a.dict, a.gen.Order)
	})
	if a.statsErr != nil {
		a.logger.Error("Failed to collect stats", "error", a.statsErr)
		respondWithError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	respondWithJSON(w, http.StatusOK, a.stats)
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
