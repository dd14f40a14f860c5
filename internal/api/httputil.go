// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jwriter"
	"github.com/zeebo/xxh3"
)

const (
	cacheMinAgeSeconds = 1
	cacheMaxAgeSeconds = 31536000
)

var errMetricNotFound = errors.New("metric not found")

func httpErr(code int, err error) httpError {
	return httpError{
		code: code,
		err:  err,
	}
}

type httpError struct {
	code int
	err  error
}

func (e httpError) Error() string {
	return e.err.Error()
}

func (e httpError) Unwrap() error {
	return e.err
}

type Response struct {
	Data  easyjson.Marshaler `json:"data,omitempty"`
	Error string             `json:"error,omitempty"`
}

func (r Response) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	first := true
	if r.Data != nil {
		first = false
		w.RawString(`"data":`)
		r.Data.MarshalEasyJSON(w)
	}
	if r.Error != "" {
		if !first {
			w.RawByte(',')
		}
		w.RawString(`"error":`)
		w.String(r.Error)
	}
	w.RawByte('}')
}

func httpCode(err error) int {
	code := http.StatusOK
	if err != nil {
		var httpErr httpError
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.code
		case errors.Is(err, errMetricNotFound):
			code = http.StatusNotFound
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			code = http.StatusGatewayTimeout // 504
		default:
			code = http.StatusInternalServerError // 500
		}
	}
	return code
}

func cacheSeconds(d time.Duration) int {
	s := int(d.Seconds() + 0.5)
	if s < cacheMinAgeSeconds {
		s = cacheMinAgeSeconds
	}
	if s > cacheMaxAgeSeconds {
		s = cacheMaxAgeSeconds
	}
	return s
}

func cacheControl(cache time.Duration, cacheStale time.Duration) string {
	switch {
	case cache == 0:
		return "no-cache, no-store, must-revalidate"
	case cacheStale == 0:
		return fmt.Sprintf("public, max-age=%d", cacheSeconds(cache))
	default:
		return fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", cacheSeconds(cache), cacheSeconds(cacheStale))
	}
}

func etag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
}

func etagMatches(ifNoneMatch string, tag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, t := range strings.Split(ifNoneMatch, ",") {
		t = strings.TrimSpace(t)
		if t == "*" || strings.TrimPrefix(t, "W/") == tag {
			return true
		}
	}
	return false
}

func respondJSON(w *HTTPRequestHandler, resp easyjson.Marshaler, cache time.Duration, cacheStale time.Duration, err error) {
	code := httpCode(err)
	r := Response{}

	w.endpointStat.reportServiceTime(code, err)

	if err != nil {
		if code == http.StatusInternalServerError {
			log.Println("[error]", err.Error())
		}
		r.Error = err.Error()
	} else {
		r.Data = resp
	}
	verbose := w.Config().Verbose
	start := time.Now()
	var jw jwriter.Writer
	r.MarshalEasyJSON(&jw)
	body, err := jw.BuildBytes()
	if err != nil {
		log.Printf("[error] failed to marshal JSON response for %q: %v", w.endpointStat.endpoint, err)
		msg := `{"error": "failed to marshal JSON response"}`
		w.Header().Set("Content-Length", strconv.Itoa(len(msg)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		if _, err := w.Write([]byte(msg)); err != nil {
			log.Printf("[error] failed to write HTTP response for %q: %v", w.endpointStat.endpoint, err)
		}
		return
	}
	if verbose {
		log.Printf("[debug] serialized %v bytes of JSON for %q in %v", len(body), w.endpointStat.endpoint, time.Since(start))
	}
	if code == http.StatusOK {
		tag := etag(body)
		w.Header().Set("ETag", tag)
		w.Header().Set("Cache-Control", cacheControl(cache, cacheStale))
		if etagMatches(w.ifNoneMatch, tag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		log.Printf("[error] failed to write HTTP response for %q: %v", w.endpointStat.endpoint, err)
	}
}
