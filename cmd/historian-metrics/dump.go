// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vkcom/historian-metrics/internal/api"
	"github.com/vkcom/historian-metrics/internal/metrics"
)

const (
	dumpJSON = "json"
	dumpCSV  = "csv"
)

var csvHeader = []string{
	"key", "name", "kind", "level_summary_name", "order_index", "group",
	"hidden_bar", "aggregated", "app_specific", "unreliable", "render_as_circle", "logcat",
}

func dump(w io.Writer, registry *metrics.Registry, format string) error {
	if format == dumpJSON {
		return api.WriteCatalogJSON(w, registry)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, k := range metrics.Keys() {
		info, ok := registry.Info(metrics.Name(k))
		if !ok {
			continue
		}
		err := cw.Write([]string{
			info.Key.String(),
			info.Name,
			info.Kind.String(),
			info.LevelSummaryName,
			strconv.Itoa(info.OrderIndex),
			info.Group,
			strconv.FormatBool(info.HiddenBar),
			strconv.FormatBool(info.Aggregated),
			strconv.FormatBool(info.AppSpecific),
			strconv.FormatBool(info.Unreliable),
			strconv.FormatBool(info.RenderAsCircle),
			strconv.FormatBool(info.Logcat),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
