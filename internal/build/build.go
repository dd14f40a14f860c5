// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package build

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strconv"
)

var (
	// filled by go build -ldflags "-X github.com/vkcom/historian-metrics/internal/build.version=..."
	time            string
	machine         string
	commit          string
	commitTimestamp string
	version         string
	number          string

	appName              string
	commitTimestampInt64 int64
)

func init() {
	appName = path.Base(os.Args[0])
	commitTimestampInt64, _ = strconv.ParseInt(commitTimestamp, 10, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func Time() string    { return orUnknown(time) }
func Machine() string { return orUnknown(machine) }
func Commit() string  { return orUnknown(commit) }
func Version() string { return orUnknown(version) }
func Number() string  { return orUnknown(number) }
func AppName() string { return appName }

// CommitTimestamp is UNIX seconds, so stable in any TZ.
func CommitTimestamp() int64 {
	return commitTimestampInt64
}

func Info() string {
	return fmt.Sprintf("%s compiled at %s by %s after %s on %s build %s", appName, Time(), runtime.Version(), Version(), Machine(), Number())
}
