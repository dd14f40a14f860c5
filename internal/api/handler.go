// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/atomic"

	"github.com/vkcom/historian-metrics/internal/build"
	"github.com/vkcom/historian-metrics/internal/config"
	"github.com/vkcom/historian-metrics/internal/metrics"
)

const (
	ParamName = "name"
	ParamCSV  = "csv"

	CSVSeries       = "series"
	CSVLevelSummary = "level-summary"
)

type Handler struct {
	registry  *metrics.Registry
	config    atomic.Pointer[Config]
	startTime time.Time
	requests  atomic.Int64
	catalog   *MetricsListResponse
}

func NewHandler(registry *metrics.Registry, cfg *Config) *Handler {
	h := &Handler{
		registry:  registry,
		startTime: time.Now(),
	}
	h.config.Store(cfg.Copy().(*Config))
	h.catalog = newCatalog(registry)
	return h
}

func newCatalog(registry *metrics.Registry) *MetricsListResponse {
	resp := &MetricsListResponse{
		Metrics:         make([]MetricInfo, 0, len(metrics.Keys())),
		Order:           metrics.Order(),
		KernelUptime:    metrics.KernelUptime,
		ErrorType:       metrics.ErrorType,
		UnavailableType: metrics.UnavailableType,
	}
	for _, k := range metrics.Keys() {
		info, ok := registry.Info(metrics.Name(k))
		if !ok {
			continue
		}
		resp.Metrics = append(resp.Metrics, newMetricInfo(info))
	}
	return resp
}

// SetConfig is called by config listener, cfg is already validated.
func (h *Handler) SetConfig(cfg config.Config) {
	c := cfg.(*Config)
	h.config.Store(c)
	log.Printf("runtime config updated: cache-max-age=%v cache-stale-age=%v cors-origins=%q verbose=%v", c.CacheMaxAge, c.CacheStaleAge, c.CORSOrigins, c.Verbose)
}

func (h *Handler) Config() *Config {
	return h.config.Load()
}

// OriginAllowed is used as CORS origin validator, so allowed origins follow runtime config.
func (h *Handler) OriginAllowed(origin string) bool {
	return h.Config().originAllowed(origin)
}

func (h *Handler) RequestsServed() int64 {
	return h.requests.Load()
}

func (h *Handler) cacheAges() (time.Duration, time.Duration) {
	c := h.Config()
	return c.CacheMaxAge, c.CacheStaleAge
}

func formValueName(r *http.Request) (string, error) {
	name := r.FormValue(ParamName)
	if name == "" {
		return "", httpErr(http.StatusBadRequest, fmt.Errorf("%q parameter is required", ParamName))
	}
	return name, nil
}

func HandleGetMetricsList(w *HTTPRequestHandler, r *http.Request) {
	cache, cacheStale := w.cacheAges()
	respondJSON(w, w.catalog, cache, cacheStale, nil)
}

func HandleGetMetric(w *HTTPRequestHandler, r *http.Request) {
	resp, err := w.handleGetMetric(r)
	if err != nil {
		respondJSON(w, nil, 0, 0, err)
		return
	}
	cache, cacheStale := w.cacheAges()
	respondJSON(w, resp, cache, cacheStale, nil)
}

func (h *Handler) handleGetMetric(r *http.Request) (*MetricInfo, error) {
	name, err := formValueName(r)
	if err != nil {
		return nil, err
	}
	info, ok := h.registry.Info(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errMetricNotFound, name)
	}
	resp := newMetricInfo(info)
	return &resp, nil
}

func HandleGetMetricKey(w *HTTPRequestHandler, r *http.Request) {
	resp, err := handleGetMetricKey(r)
	if err != nil {
		respondJSON(w, nil, 0, 0, err)
		return
	}
	cache, cacheStale := w.cacheAges()
	respondJSON(w, resp, cache, cacheStale, nil)
}

func handleGetMetricKey(r *http.Request) (*MetricKeyResponse, error) {
	name, err := formValueName(r)
	if err != nil {
		return nil, err
	}
	var (
		key metrics.Key
		ok  bool
		csv = r.FormValue(ParamCSV)
	)
	switch csv {
	case "", CSVSeries:
		csv = CSVSeries
		key, ok = metrics.LookupKey(name)
	case CSVLevelSummary:
		key, ok = metrics.LookupLevelSummaryKey(name)
	default:
		return nil, httpErr(http.StatusBadRequest, fmt.Errorf("%q parameter must be %q or %q", ParamCSV, CSVSeries, CSVLevelSummary))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s CSV", errMetricNotFound, name, csv)
	}
	return &MetricKeyResponse{
		Key:  key.String(),
		Name: metrics.Name(key),
		CSV:  csv,
	}, nil
}

func HandleGetRenderOrder(w *HTTPRequestHandler, r *http.Request) {
	cache, cacheStale := w.cacheAges()
	respondJSON(w, &RenderOrderResponse{Order: w.catalog.Order}, cache, cacheStale, nil)
}

func HandleGetErrorMetric(w *HTTPRequestHandler, r *http.Request) {
	name, err := formValueName(r)
	if err != nil {
		respondJSON(w, nil, 0, 0, err)
		return
	}
	errName := metrics.ErrorMetric(name)
	cache, cacheStale := w.cacheAges()
	respondJSON(w, &MetricNameResponse{Name: errName, IsErrorMetric: true}, cache, cacheStale, nil)
}

func HandleGetBaseMetric(w *HTTPRequestHandler, r *http.Request) {
	name, err := formValueName(r)
	if err != nil {
		respondJSON(w, nil, 0, 0, err)
		return
	}
	cache, cacheStale := w.cacheAges()
	respondJSON(w, &MetricNameResponse{Name: metrics.BaseMetric(name), IsErrorMetric: metrics.IsErrorMetric(name)}, cache, cacheStale, nil)
}

func HandleGetHealthcheck(w *HTTPRequestHandler, r *http.Request) {
	respondJSON(w, &HealthcheckResponse{
		Version:   build.Version(),
		Commit:    build.Commit(),
		Info:      build.Info(),
		UptimeSec: int64(time.Since(w.startTime).Seconds()),
		Requests:  w.RequestsServed(),
	}, 0, 0, nil) // never cached
}
