// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package metrics

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks integrity of the builtin tables and reports every violation found.
func Validate() error {
	var err error
	idents := map[string]Key{}
	names := map[string]Key{}
	for k := KeyInvalid + 1; k < numKeys; k++ {
		m := csv[k]
		if m.ident == "" || m.name == "" || m.kind == 0 {
			err = multierr.Append(err, fmt.Errorf("metric %d is not described", k))
			continue
		}
		if prev, ok := idents[m.ident]; ok {
			err = multierr.Append(err, fmt.Errorf("identifier %q used by both %d and %d", m.ident, prev, k))
		}
		idents[m.ident] = k
		if prev, ok := names[m.name]; ok {
			err = multierr.Append(err, fmt.Errorf("display name %q used by both %s and %s", m.name, prev, k))
		}
		names[m.name] = k
	}

	levelNames := map[string]Key{}
	levelKeys := map[Key]bool{}
	for _, d := range levelSummaryCsv {
		if !d.key.Valid() || d.name == "" {
			err = multierr.Append(err, fmt.Errorf("level summary dimension %q has invalid key %d", d.name, d.key))
			continue
		}
		if prev, ok := levelNames[d.name]; ok {
			err = multierr.Append(err, fmt.Errorf("level summary name %q used by both %s and %s", d.name, prev, d.key))
		}
		levelNames[d.name] = d.key
		if levelKeys[d.key] {
			err = multierr.Append(err, fmt.Errorf("level summary key %s listed twice", d.key))
		}
		levelKeys[d.key] = true
	}

	seen := map[string]bool{}
	for _, name := range renderOrder {
		if _, ok := names[name]; !ok && name != KernelUptime {
			err = multierr.Append(err, fmt.Errorf("render order references unknown metric %q", name))
		}
		if seen[name] {
			err = multierr.Append(err, fmt.Errorf("render order lists %q twice", name))
		}
		seen[name] = true
	}

	for list, keys := range map[string][]Key{
		"hidden bar":   hiddenBarMetrics,
		"aggregated":   metricsToAggregate,
		"app specific": appSpecificMetrics,
		"unreliable":   unreliableMetrics,
		"circles":      renderAsCircles,
		"logcat":       logcatMetrics,
	} {
		err = multierr.Append(err, validateKeys(list, keys))
	}
	for g, keys := range metricGroups {
		err = multierr.Append(err, validateKeys("group "+g.String(), append([]Key{g}, keys...)))
	}
	for k := range descriptors {
		err = multierr.Append(err, validateKeys("descriptors", []Key{k}))
	}
	return err
}

func validateKeys(list string, keys []Key) error {
	var err error
	for _, k := range keys {
		if !k.Valid() || Name(k) == "" {
			err = multierr.Append(err, fmt.Errorf("%s list references unknown metric %d", list, k))
		}
	}
	return err
}
