// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-paktools.
//
// go-paktools is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package metrics

import (
	"errors"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrNoTextfile is returned by WriteTextfile when no path is configured.
var ErrNoTextfile = errors.New("metrics: textfile path is empty")

// CollectOnce updates the resource gauges from the runtime.
func CollectOnce() {
	if !IsEnabled() {
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	MemoryAllocBytes.Set(float64(memStats.Alloc))
	MemorySysBytes.Set(float64(memStats.Sys))
	GCPauseTotalSeconds.Set(float64(memStats.PauseTotalNs) / 1e9)
}

// WriteTextfile collects the resource gauges, stamps the run time and
// writes every series in Registry to path in the text exposition format.
// The file is replaced atomically so node_exporter never reads a partial
// write.
func WriteTextfile(path string) error {
	return writeTextfile(path, Registry, time.Now())
}

func writeTextfile(path string, g prometheus.Gatherer, now time.Time) error {
	if path == "" {
		return ErrNoTextfile
	}
	if IsEnabled() {
		CollectOnce()
		LastRunTimestamp.Set(float64(now.Unix()))
	}
	return prometheus.WriteToTextfile(path, g)
}
