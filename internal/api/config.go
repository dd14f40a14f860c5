// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/exp/slices"

	"github.com/vkcom/historian-metrics/internal/config"
)

// Config can be changed at runtime via config file overlay.
type Config struct {
	CORSOrigins   []string
	CacheMaxAge   time.Duration
	CacheStaleAge time.Duration
	Verbose       bool
}

func DefaultConfig() *Config {
	return &Config{
		CacheMaxAge:   time.Hour,
		CacheStaleAge: 24 * time.Hour,
	}
}

func (argv *Config) ValidateConfig() error {
	if argv.CacheMaxAge < 0 {
		return fmt.Errorf("--cache-max-age (%v) must not be negative", argv.CacheMaxAge)
	}
	if argv.CacheStaleAge < 0 {
		return fmt.Errorf("--cache-stale-age (%v) must not be negative", argv.CacheStaleAge)
	}
	for _, origin := range argv.CORSOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil {
			return fmt.Errorf("invalid --cors-origins entry %q: %w", origin, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("invalid --cors-origins entry %q, expected scheme://host[:port]", origin)
		}
	}
	return nil
}

func (argv *Config) Copy() config.Config {
	cp := *argv
	cp.CORSOrigins = slices.Clone(argv.CORSOrigins)
	return &cp
}

func (argv *Config) Bind(f *pflag.FlagSet, defaultI config.Config) {
	default_ := defaultI.(*Config)
	config.StringSliceVar(f, &argv.CORSOrigins, "cors-origins", strings.Join(default_.CORSOrigins, ","), "comma-separated list of origins allowed to make cross-origin requests, * allows any")
	f.DurationVar(&argv.CacheMaxAge, "cache-max-age", default_.CacheMaxAge, "Cache-Control max-age of registry responses, 0 disables caching")
	f.DurationVar(&argv.CacheStaleAge, "cache-stale-age", default_.CacheStaleAge, "Cache-Control stale-while-revalidate of registry responses")
	f.BoolVar(&argv.Verbose, "verbose", default_.Verbose, "verbose logging")
}

func (argv *Config) originAllowed(origin string) bool {
	for _, o := range argv.CORSOrigins {
		if o == "*" || strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
			return true
		}
	}
	return false
}
