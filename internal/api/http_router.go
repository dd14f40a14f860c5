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
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/vkcom/historian-metrics/internal/metrics"
)

type Router struct {
	*Handler
	*mux.Router
}

type Route struct {
	*Handler
	*mux.Route
	endpoint    string
	handlerFunc func(*HTTPRequestHandler, *http.Request)
}

type HTTPRequestHandler struct {
	*Handler
	responseWriter http.ResponseWriter
	endpointStat   endpointStat
	ifNoneMatch    string
	statusCode     int
	statusCodeSent bool
}

// NewHTTPRouter returns router serving every registry endpoint under RoutePrefix.
func NewHTTPRouter(h *Handler) Router {
	m := Router{Handler: h, Router: mux.NewRouter()}
	// flat routes, subrouter answers 404 instead of 405 on method mismatch
	for _, r := range []struct {
		endpoint string
		f        func(*HTTPRequestHandler, *http.Request)
	}{
		{EndpointMetricsList, HandleGetMetricsList},
		{EndpointMetric, HandleGetMetric},
		{EndpointMetricKey, HandleGetMetricKey},
		{EndpointRenderOrder, HandleGetRenderOrder},
		{EndpointErrorMetric, HandleGetErrorMetric},
		{EndpointBaseMetric, HandleGetBaseMetric},
		{EndpointHealthcheck, HandleGetHealthcheck},
	} {
		m.Path(RoutePrefix + r.endpoint).Methods("GET", "HEAD").HandlerFunc(r.f)
	}
	return m
}

func (r Router) Path(tpl string) *Route {
	return &Route{
		Handler:  r.Handler,
		Route:    r.Router.Path(tpl),
		endpoint: tpl[strings.LastIndex(tpl, "/")+1:],
	}
}

func (r *Route) Methods(methods ...string) *Route {
	r.Route = r.Route.Methods(methods...)
	return r
}

func (r *Route) HandlerFunc(f func(*HTTPRequestHandler, *http.Request)) *Route {
	r.handlerFunc = f
	r.Route.HandlerFunc(r.handle)
	return r
}

func (r *Route) handle(http http.ResponseWriter, req *http.Request) {
	r.requests.Inc()
	var metric string
	if v := req.FormValue(ParamName); v != "" {
		if k, ok := metrics.LookupKey(v); ok {
			metric = k.String() // known names only, keeps tag cardinality bounded
		}
	}
	w := &HTTPRequestHandler{
		Handler:        r.Handler,
		responseWriter: http,
		ifNoneMatch:    req.Header.Get("If-None-Match"),
		endpointStat: endpointStat{
			timestamp: time.Now(),
			endpoint:  r.endpoint,
			method:    req.Method,
			metric:    metric,
		},
	}
	defer r.reportStatistics(w)
	r.handlerFunc(w, req)
}

func (r *Route) reportStatistics(w *HTTPRequestHandler) {
	if err := recover(); err != nil {
		log.Printf("[error] panic serving %q: %v", w.endpointStat.endpoint, err)
		if !w.statusCodeSent {
			http.Error(w, fmt.Sprint(err), http.StatusInternalServerError)
		}
	}
	w.endpointStat.report(w.statusCode, MetricAPIResponseTime)
}

func (h *HTTPRequestHandler) Header() http.Header {
	return h.responseWriter.Header()
}

func (h *HTTPRequestHandler) Write(s []byte) (int, error) {
	return h.responseWriter.Write(s)
}

func (h *HTTPRequestHandler) WriteHeader(statusCode int) {
	h.statusCode = statusCode
	h.responseWriter.WriteHeader(statusCode)
	h.statusCodeSent = true
}
