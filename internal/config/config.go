// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

const maxConfigFileSize = 1024 * 1024

type Config interface {
	Bind(f *pflag.FlagSet, default_ Config)
	ValidateConfig() error
	Copy() Config
}

// Listener applies runtime overlay file on top of the command line config.
// Overlay is a YAML mapping from flag name to flag value, for example
//
//	cache-max-age: 30s
//	cors-origins: [https://a.example, https://b.example]
type Listener struct {
	mx       sync.Mutex
	path     string
	initial  Config
	changeCB []func(config Config)
}

func NewListener(path string, config Config) *Listener {
	return &Listener{
		path:    path,
		initial: config.Copy(), // in case user overwrites his config in callback
	}
}

func (l *Listener) AddChangeCB(f func(config Config)) {
	l.mx.Lock()
	defer l.mx.Unlock()
	l.changeCB = append(l.changeCB, f)
}

// Parse returns copy of the initial config with overlay applied.
// Flags absent from overlay keep their initial values.
func (l *Listener) Parse(data []byte) (Config, error) {
	var overlay yaml.MapSlice
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	l.mx.Lock()
	defer l.mx.Unlock()
	f := pflag.NewFlagSet("", pflag.ContinueOnError)
	f.Usage = func() {} // don't print usage on unknown flags
	c := l.initial.Copy()
	c.Bind(f, c)
	for _, item := range overlay {
		name := fmt.Sprint(item.Key)
		if err := f.Set(name, overlayValue(item.Value)); err != nil {
			return nil, fmt.Errorf("failed to set %q: %w", name, err)
		}
	}
	if err := c.ValidateConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

func overlayValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []interface{}:
		s := make([]string, 0, len(v))
		for _, e := range v {
			s = append(s, fmt.Sprint(e))
		}
		return strings.Join(s, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Load reads and parses overlay file.
func (l *Listener) Load() (Config, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return l.Parse(data)
}

func (l *Listener) apply() error {
	cfg, err := l.Load()
	if err != nil {
		return err
	}
	l.mx.Lock()
	cbs := append([]func(Config){}, l.changeCB...)
	l.mx.Unlock()
	// do not call callback under mutex
	for _, f := range cbs {
		f(cfg)
	}
	return nil
}

// Listen applies overlay once, then every time the file changes.
// Invalid overlay is logged and ignored, last valid config stays in effect.
func (l *Listener) Listen() (closeF func(), _ error) {
	emptyFunc := func() {}
	if l.path == "" {
		return emptyFunc, nil
	}
	if err := l.apply(); err != nil {
		return emptyFunc, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return emptyFunc, err
	}
	if err = w.Add(l.path); err != nil {
		_ = w.Close()
		return emptyFunc, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					// editors replace file instead of writing it
					time.Sleep(100 * time.Millisecond)
					if err := w.Add(l.path); err != nil {
						log.Println("[error] config watching error:", err.Error())
						continue
					}
				}
				if err := l.apply(); err != nil {
					log.Println("[error] config reading error:", err.Error())
					continue
				}
				log.Printf("applied config file %q", l.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Println("[error] config watching error:", err.Error())
			}
		}
	}()
	return func() {
		_ = w.Close()
	}, nil
}
