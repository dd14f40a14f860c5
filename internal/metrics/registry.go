// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

import (
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// Registry answers classification queries by display name.
// Registry is immutable once returned by Initialize, so it is safe for concurrent use.
// Zero value and nil *Registry are valid and answer false to every query.
type Registry struct {
	hiddenBar   map[string]bool
	aggregated  map[string]bool
	appSpecific map[string]bool
	unreliable  map[string]bool
	circles     map[string]bool
	logcat      map[string]bool
	descriptors map[string]string
	order       map[string]int
	groupOf     map[string]string
	members     map[string][]string
}

// Info is everything registry knows about a single metric.
type Info struct {
	Key              Key
	Name             string
	Kind             Kind
	LevelSummaryName string // empty if metric has no level summary dimension
	OrderIndex       int    // -1 if metric is not in render order
	Group            string // empty if metric is not part of a group
	Members          []string
	Descriptor       string
	HiddenBar        bool
	Aggregated       bool
	AppSpecific      bool
	Unreliable       bool
	RenderAsCircle   bool
	Logcat           bool
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns process-wide registry, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = Initialize()
	})
	return defaultRegistry
}

// Initialize builds the maps for testing properties of the metrics.
// Every call returns a new registry with identical contents.
func Initialize() *Registry {
	r := &Registry{
		hiddenBar:   namesSet(hiddenBarMetrics),
		aggregated:  namesSet(metricsToAggregate),
		appSpecific: namesSet(appSpecificMetrics),
		unreliable:  namesSet(unreliableMetrics),
		circles:     namesSet(renderAsCircles),
		logcat:      namesSet(logcatMetrics),
		descriptors: make(map[string]string, len(descriptors)),
		order:       make(map[string]int, len(renderOrder)),
		groupOf:     map[string]string{},
		members:     make(map[string][]string, len(metricGroups)),
	}
	for k, d := range descriptors {
		r.descriptors[Name(k)] = d
	}
	for i, name := range renderOrder {
		if _, ok := r.order[name]; !ok { // first occurrence wins
			r.order[name] = i
		}
	}
	for g, keys := range metricGroups {
		group := Name(g)
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, Name(k))
			r.groupOf[Name(k)] = group
		}
		r.members[group] = names
	}
	return r
}

func namesSet(keys []Key) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[Name(k)] = true
	}
	return m
}

// IsHiddenBarMetric reports whether metric is hidden by default as a bar metric.
func (r *Registry) IsHiddenBarMetric(name string) bool {
	return r != nil && r.hiddenBar[name]
}

func (r *Registry) IsAggregated(name string) bool {
	return r != nil && r.aggregated[name]
}

// IsAppSpecific reports whether metric can be filtered by UID.
func (r *Registry) IsAppSpecific(name string) bool {
	return r != nil && r.appSpecific[name]
}

func (r *Registry) IsUnreliable(name string) bool {
	return r != nil && r.unreliable[name]
}

func (r *Registry) IsRenderedAsCircle(name string) bool {
	return r != nil && r.circles[name]
}

func (r *Registry) IsLogcatMetric(name string) bool {
	return r != nil && r.logcat[name]
}

// Descriptor returns help text for a group or metric.
func (r *Registry) Descriptor(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	d, ok := r.descriptors[name]
	return d, ok
}

// OrderIndex returns position of the metric in render order.
func (r *Registry) OrderIndex(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	i, ok := r.order[name]
	return i, ok
}

// SortByOrder sorts names by render order. Names not in render order go last,
// keeping their relative order.
func (r *Registry) SortByOrder(names []string) {
	if r == nil {
		return
	}
	slices.SortStableFunc(names, func(a, b string) int {
		ia, oka := r.order[a]
		ib, okb := r.order[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
}

// Group returns the group the metric is drawn in.
func (r *Registry) Group(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	g, ok := r.groupOf[name]
	return g, ok
}

func (r *Registry) GroupMembers(group string) []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.members[group])
}

func (r *Registry) Info(name string) (Info, bool) {
	k, ok := LookupKey(name)
	if !ok {
		return Info{}, false
	}
	info := Info{
		Key:            k,
		Name:           name,
		Kind:           KindOf(k),
		OrderIndex:     -1,
		Members:        r.GroupMembers(name),
		HiddenBar:      r.IsHiddenBarMetric(name),
		Aggregated:     r.IsAggregated(name),
		AppSpecific:    r.IsAppSpecific(name),
		Unreliable:     r.IsUnreliable(name),
		RenderAsCircle: r.IsRenderedAsCircle(name),
		Logcat:         r.IsLogcatMetric(name),
	}
	info.LevelSummaryName, _ = LevelSummaryName(k)
	if i, ok := r.OrderIndex(name); ok {
		info.OrderIndex = i
	}
	info.Group, _ = r.Group(name)
	info.Descriptor, _ = r.Descriptor(name)
	return info, true
}

// ErrorMetric returns the metric name appended with the error identifier.
func ErrorMetric(name string) string {
	return name + errorSuffix
}

// BaseMetric returns the metric name without the error identifier.
// Everything after the last space is dropped, so for multi word names
// without error identifier the last word is dropped as well.
func BaseMetric(name string) string {
	i := strings.LastIndexByte(name, ' ')
	if i == -1 {
		return name
	}
	return name[:i]
}

func IsErrorMetric(name string) bool {
	return strings.HasSuffix(name, errorSuffix)
}
