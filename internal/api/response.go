// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"io"

	"github.com/mailru/easyjson/jwriter"

	"github.com/vkcom/historian-metrics/internal/metrics"
)

// Response types marshal themselves, field order is fixed so ETag is stable.

type MetricInfo struct {
	Key              string   `json:"key"`
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	LevelSummaryName string   `json:"level_summary_name,omitempty"`
	OrderIndex       int      `json:"order_index"`
	Group            string   `json:"group,omitempty"`
	Members          []string `json:"members,omitempty"`
	Descriptor       string   `json:"descriptor,omitempty"`
	HiddenBar        bool     `json:"hidden_bar"`
	Aggregated       bool     `json:"aggregated"`
	AppSpecific      bool     `json:"app_specific"`
	Unreliable       bool     `json:"unreliable"`
	RenderAsCircle   bool     `json:"render_as_circle"`
	Logcat           bool     `json:"logcat"`
}

type MetricsListResponse struct {
	Metrics         []MetricInfo `json:"metrics"`
	Order           []string     `json:"order"`
	KernelUptime    string       `json:"kernel_uptime"`
	ErrorType       string       `json:"error_type"`
	UnavailableType string       `json:"unavailable_type"`
}

type MetricKeyResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	CSV  string `json:"csv"`
}

type RenderOrderResponse struct {
	Order []string `json:"order"`
}

type MetricNameResponse struct {
	Name          string `json:"name"`
	IsErrorMetric bool   `json:"is_error_metric"`
}

type HealthcheckResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Info      string `json:"info"`
	UptimeSec int64  `json:"uptime_sec"`
	Requests  int64  `json:"requests"`
}

func newMetricInfo(info metrics.Info) MetricInfo {
	return MetricInfo{
		Key:              info.Key.String(),
		Name:             info.Name,
		Kind:             info.Kind.String(),
		LevelSummaryName: info.LevelSummaryName,
		OrderIndex:       info.OrderIndex,
		Group:            info.Group,
		Members:          info.Members,
		Descriptor:       info.Descriptor,
		HiddenBar:        info.HiddenBar,
		Aggregated:       info.Aggregated,
		AppSpecific:      info.AppSpecific,
		Unreliable:       info.Unreliable,
		RenderAsCircle:   info.RenderAsCircle,
		Logcat:           info.Logcat,
	}
}

func writeStrings(w *jwriter.Writer, s []string) {
	if s == nil {
		w.RawString("[]")
		return
	}
	w.RawByte('[')
	for i, v := range s {
		if i != 0 {
			w.RawByte(',')
		}
		w.String(v)
	}
	w.RawByte(']')
}

func (m MetricInfo) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"key":`)
	w.String(m.Key)
	w.RawString(`,"name":`)
	w.String(m.Name)
	w.RawString(`,"kind":`)
	w.String(m.Kind)
	if m.LevelSummaryName != "" {
		w.RawString(`,"level_summary_name":`)
		w.String(m.LevelSummaryName)
	}
	w.RawString(`,"order_index":`)
	w.Int(m.OrderIndex)
	if m.Group != "" {
		w.RawString(`,"group":`)
		w.String(m.Group)
	}
	if len(m.Members) != 0 {
		w.RawString(`,"members":`)
		writeStrings(w, m.Members)
	}
	if m.Descriptor != "" {
		w.RawString(`,"descriptor":`)
		w.String(m.Descriptor)
	}
	w.RawString(`,"hidden_bar":`)
	w.Bool(m.HiddenBar)
	w.RawString(`,"aggregated":`)
	w.Bool(m.Aggregated)
	w.RawString(`,"app_specific":`)
	w.Bool(m.AppSpecific)
	w.RawString(`,"unreliable":`)
	w.Bool(m.Unreliable)
	w.RawString(`,"render_as_circle":`)
	w.Bool(m.RenderAsCircle)
	w.RawString(`,"logcat":`)
	w.Bool(m.Logcat)
	w.RawByte('}')
}

func (r *MetricsListResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"metrics":[`)
	for i := range r.Metrics {
		if i != 0 {
			w.RawByte(',')
		}
		r.Metrics[i].MarshalEasyJSON(w)
	}
	w.RawString(`],"order":`)
	writeStrings(w, r.Order)
	w.RawString(`,"kernel_uptime":`)
	w.String(r.KernelUptime)
	w.RawString(`,"error_type":`)
	w.String(r.ErrorType)
	w.RawString(`,"unavailable_type":`)
	w.String(r.UnavailableType)
	w.RawByte('}')
}

func (r *MetricKeyResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"key":`)
	w.String(r.Key)
	w.RawString(`,"name":`)
	w.String(r.Name)
	w.RawString(`,"csv":`)
	w.String(r.CSV)
	w.RawByte('}')
}

func (r *RenderOrderResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"order":`)
	writeStrings(w, r.Order)
	w.RawByte('}')
}

func (r *MetricNameResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"name":`)
	w.String(r.Name)
	w.RawString(`,"is_error_metric":`)
	w.Bool(r.IsErrorMetric)
	w.RawByte('}')
}

func (r *HealthcheckResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"version":`)
	w.String(r.Version)
	w.RawString(`,"commit":`)
	w.String(r.Commit)
	w.RawString(`,"info":`)
	w.String(r.Info)
	w.RawString(`,"uptime_sec":`)
	w.Int64(r.UptimeSec)
	w.RawString(`,"requests":`)
	w.Int64(r.Requests)
	w.RawByte('}')
}

// WriteCatalogJSON writes the same document metrics-list endpoint serves, without envelope.
func WriteCatalogJSON(out io.Writer, registry *metrics.Registry) error {
	var jw jwriter.Writer
	newCatalog(registry).MarshalEasyJSON(&jw)
	if jw.Error != nil {
		return jw.Error
	}
	_, err := jw.DumpTo(out)
	return err
}
