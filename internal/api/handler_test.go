// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vkcom/historian-metrics/internal/metrics"
)

func newTestRouter(t *testing.T) (Router, *Handler) {
	t.Helper()
	h := NewHandler(metrics.Initialize(), DefaultConfig())
	return NewHTTPRouter(h), h
}

func get(t *testing.T, h http.Handler, endpoint string, query url.Values, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	u := RoutePrefix + endpoint
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, u, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, string) {
	t.Helper()
	var resp struct {
		Data  T      `json:"data"`
		Error string `json:"error"`
	}
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data, resp.Error
}

func TestHandleGetMetricsList(t *testing.T) {
	m, _ := newTestRouter(t)
	rec := get(t, m, EndpointMetricsList, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "public, max-age=3600, stale-while-revalidate=86400", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("ETag"))

	resp, errText := decode[MetricsListResponse](t, rec)
	require.Empty(t, errText)
	require.Len(t, resp.Metrics, len(metrics.Keys()))
	require.Equal(t, metrics.Order(), resp.Order)
	require.Equal(t, metrics.KernelUptime, resp.KernelUptime)
	require.Equal(t, metrics.ErrorType, resp.ErrorType)
	require.Equal(t, metrics.UnavailableType, resp.UnavailableType)
	require.Equal(t, MetricInfo{Key: "TEMPERATURE", Name: "Temperature", Kind: "int", OrderIndex: -1}, resp.Metrics[0])

	var crashes MetricInfo
	for _, mi := range resp.Metrics {
		if mi.Name == "Crashes" {
			crashes = mi
		}
	}
	require.Equal(t, MetricInfo{
		Key:            "CRASHES",
		Name:           "Crashes",
		Kind:           "logcat",
		OrderIndex:     10,
		AppSpecific:    true,
		RenderAsCircle: true,
		Logcat:         true,
	}, crashes)
}

func TestETag(t *testing.T) {
	m, _ := newTestRouter(t)
	rec := get(t, m, EndpointMetricsList, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")

	again := get(t, m, EndpointMetricsList, nil, nil)
	require.Equal(t, tag, again.Header().Get("ETag"))
	require.Equal(t, rec.Body.Bytes(), again.Body.Bytes())

	rec = get(t, m, EndpointMetricsList, nil, http.Header{"If-None-Match": {`"0000000000000000", ` + tag}})
	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Empty(t, rec.Body.Bytes())
	require.Equal(t, tag, rec.Header().Get("ETag"))

	rec = get(t, m, EndpointMetricsList, nil, http.Header{"If-None-Match": {`"0000000000000000"`}})
	require.Equal(t, http.StatusOK, rec.Code)

	other := get(t, m, EndpointRenderOrder, nil, nil)
	require.NotEqual(t, tag, other.Header().Get("ETag"))
}

func TestHandleGetMetric(t *testing.T) {
	m, _ := newTestRouter(t)

	t.Run("known", func(t *testing.T) {
		rec := get(t, m, EndpointMetric, url.Values{ParamName: {"Partial wakelock"}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp, _ := decode[MetricInfo](t, rec)
		require.Equal(t, "WAKE_LOCK_HELD", resp.Key)
		require.Equal(t, "service", resp.Kind)
		require.Equal(t, 4, resp.OrderIndex)
		d, _ := metrics.Default().Descriptor("Partial wakelock")
		require.Equal(t, d, resp.Descriptor)
	})
	t.Run("group", func(t *testing.T) {
		rec := get(t, m, EndpointMetric, url.Values{ParamName: {"AM Low Memory / ANR"}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp, _ := decode[MetricInfo](t, rec)
		require.Equal(t, []string{"AM Low Memory", "ANR"}, resp.Members)
	})
	t.Run("unknown", func(t *testing.T) {
		rec := get(t, m, EndpointMetric, url.Values{ParamName: {"nonexistent-name"}}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Empty(t, rec.Header().Get("ETag"))
		_, errText := decode[*MetricInfo](t, rec)
		require.Contains(t, errText, "metric not found")
	})
	t.Run("missing name", func(t *testing.T) {
		rec := get(t, m, EndpointMetric, nil, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetMetricKey(t *testing.T) {
	m, _ := newTestRouter(t)
	tests := []struct {
		name string
		csv  string
		code int
		want MetricKeyResponse
	}{
		{"Screen", "", http.StatusOK, MetricKeyResponse{Key: "SCREEN_ON", Name: "Screen", CSV: CSVSeries}},
		{"Screen", CSVSeries, http.StatusOK, MetricKeyResponse{Key: "SCREEN_ON", Name: "Screen", CSV: CSVSeries}},
		{"ScreenOn", CSVLevelSummary, http.StatusOK, MetricKeyResponse{Key: "SCREEN_ON", Name: "Screen", CSV: CSVLevelSummary}},
		{"ScreenOn", CSVSeries, http.StatusNotFound, MetricKeyResponse{}},
		{"Screen", CSVLevelSummary, http.StatusNotFound, MetricKeyResponse{}},
		{"Screen", "bogus", http.StatusBadRequest, MetricKeyResponse{}},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.csv, func(t *testing.T) {
			q := url.Values{ParamName: {tt.name}}
			if tt.csv != "" {
				q.Set(ParamCSV, tt.csv)
			}
			rec := get(t, m, EndpointMetricKey, q, nil)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}
			resp, _ := decode[MetricKeyResponse](t, rec)
			require.Equal(t, tt.want, resp)
		})
	}
}

func TestHandleGetErrorAndBaseMetric(t *testing.T) {
	m, _ := newTestRouter(t)

	rec := get(t, m, EndpointErrorMetric, url.Values{ParamName: {"Mobile signal strength"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp, _ := decode[MetricNameResponse](t, rec)
	require.Equal(t, MetricNameResponse{Name: "Mobile signal strength [Error]", IsErrorMetric: true}, resp)

	rec = get(t, m, EndpointBaseMetric, url.Values{ParamName: {"Mobile signal strength [Error]"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp, _ = decode[MetricNameResponse](t, rec)
	require.Equal(t, MetricNameResponse{Name: "Mobile signal strength", IsErrorMetric: true}, resp)

	rec = get(t, m, EndpointBaseMetric, url.Values{ParamName: {"Mobile signal strength"}}, nil)
	resp, _ = decode[MetricNameResponse](t, rec)
	require.Equal(t, MetricNameResponse{Name: "Mobile signal"}, resp)

	rec = get(t, m, EndpointErrorMetric, nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetHealthcheck(t *testing.T) {
	m, h := newTestRouter(t)
	get(t, m, EndpointRenderOrder, nil, nil)
	rec := get(t, m, EndpointHealthcheck, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	resp, _ := decode[HealthcheckResponse](t, rec)
	require.Equal(t, int64(2), resp.Requests)
	require.Equal(t, int64(2), h.RequestsServed())
	require.NotEmpty(t, resp.Info)
}

func TestMethodNotAllowed(t *testing.T) {
	m, _ := newTestRouter(t)
	for _, endpoint := range []string{EndpointMetricsList, EndpointMetric, EndpointHealthcheck} {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			req := httptest.NewRequest(method, RoutePrefix+endpoint, nil)
			rec := httptest.NewRecorder()
			m.ServeHTTP(rec, req)
			require.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", method, endpoint)
		}
	}

	req := httptest.NewRequest(http.MethodHead, RoutePrefix+EndpointMetricsList, nil)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, m, "no-such-endpoint", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetConfig(t *testing.T) {
	m, h := newTestRouter(t)
	cfg := h.Config().Copy().(*Config)
	cfg.CacheMaxAge = 0
	cfg.CORSOrigins = []string{"https://historian.example"}
	h.SetConfig(cfg)

	rec := get(t, m, EndpointRenderOrder, nil, nil)
	require.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	require.True(t, h.OriginAllowed("https://historian.example"))
	require.False(t, h.OriginAllowed("https://evil.example"))

	cfg = h.Config().Copy().(*Config)
	cfg.CacheMaxAge = 90 * time.Second
	cfg.CacheStaleAge = 0
	h.SetConfig(cfg)
	rec = get(t, m, EndpointRenderOrder, nil, nil)
	require.Equal(t, "public, max-age=90", rec.Header().Get("Cache-Control"))
}
