// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"strconv"
	"time"

	"github.com/VKCOM/statshouse-go"
)

const (
	RoutePrefix         = "/api/"
	EndpointMetricsList = "metrics-list"
	EndpointMetric      = "metric"
	EndpointMetricKey   = "metric-key"
	EndpointRenderOrder = "render-order"
	EndpointErrorMetric = "error-metric"
	EndpointBaseMetric  = "base-metric"
	EndpointHealthcheck = "healthcheck"

	MetricAPIResponseTime = "historian_metrics_api_response_time"
	MetricAPIServiceTime  = "historian_metrics_api_service_time"
	MetricAPIErrors       = "historian_metrics_api_errors"
	MetricHeartbeat       = "historian_metrics_heartbeat"
)

type endpointStat struct {
	timestamp time.Time
	endpoint  string
	method    string
	metric    string
}

func (es *endpointStat) tags(code int) statshouse.Tags {
	return statshouse.Tags{
		1: es.endpoint,
		2: es.method,
		3: strconv.Itoa(code),
		4: es.metric,
	}
}

// reportServiceTime is called once response is ready, before it is written.
func (es *endpointStat) reportServiceTime(code int, err error) {
	statshouse.Value(MetricAPIServiceTime, es.tags(code), time.Since(es.timestamp).Seconds())
	if err != nil {
		statshouse.Count(MetricAPIErrors, es.tags(code), 1)
	}
}

func (es *endpointStat) report(code int, statName string) {
	if code == 0 {
		code = 200 // handler wrote body without explicit header
	}
	statshouse.Value(statName, es.tags(code), time.Since(es.timestamp).Seconds())
}
