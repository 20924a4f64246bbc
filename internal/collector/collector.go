// Package collector aggregates process telemetry into interval samples for
// the live-metrics client.
package collector

import (
	"reflect"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	models "github.com/Schera-ole/livemetrics/internal/model"
)

// Counter names of the system metrics attached to every sample.
const (
	CounterCommittedBytes = "\\Memory\\Committed Bytes"
	CounterProcessorTime  = "\\Processor(_Total)\\% Processor Time"
)

// RuntimeMetrics is a list of Go runtime memory statistics attached to every
// sample as raw named counters.
var RuntimeMetrics = []string{
	"Alloc",
	"Frees",
	"HeapAlloc",
	"HeapIdle",
	"HeapInuse",
	"HeapObjects",
	"HeapSys",
	"Mallocs",
	"NextGC",
	"NumGC",
	"PauseTotalNs",
	"StackInuse",
	"Sys",
	"TotalAlloc",
}

// topProcessLimit caps the size of the top-CPU process ranking.
const topProcessLimit = 5

// maxDocuments caps the exemplar documents kept per interval.
const maxDocuments = 10

// Collector accumulates tracked operations over a reporting interval and
// flushes them into a Sample once per interval.
type Collector struct {
	mu sync.Mutex

	logger *zap.SugaredLogger

	start time.Time

	requests        int64
	requestsFailed  int64
	requestDuration time.Duration

	dependencies       int64
	dependenciesFailed int64
	dependencyDuration time.Duration

	exceptions int64

	documents    []models.Document
	quotaReached bool

	accumulators []models.Accumulator
}

// New creates a collector whose first interval starts now.
func New(logger *zap.SugaredLogger) *Collector {

	return &Collector{
		logger: logger,
		start:  time.Now().UTC(),
	}
}

// TrackRequest records one served request; failed requests leave an exemplar document.
func (c *Collector) TrackRequest(name string, duration time.Duration, success bool) {

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
	c.requestDuration += duration
	if !success {
		c.requestsFailed++
		c.appendDocument("Request", name, duration, success)
	}
}

// TrackDependency records one outbound dependency call; failed calls leave an exemplar document.
func (c *Collector) TrackDependency(name string, duration time.Duration, success bool) {

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dependencies++
	c.dependencyDuration += duration
	if !success {
		c.dependenciesFailed++
		c.appendDocument("RemoteDependency", name, duration, success)
	}
}

// TrackException records one thrown exception and leaves an exemplar document.
func (c *Collector) TrackException(name string) {

	c.mu.Lock()
	defer c.mu.Unlock()
	c.exceptions++
	c.appendDocument("Exception", name, 0, false)
}

// appendDocument captures an exemplar in collection order, oldest first.
// Callers must hold the mutex.
func (c *Collector) appendDocument(docType, name string, duration time.Duration, success bool) {

	if len(c.documents) >= maxDocuments {
		c.quotaReached = true
		return
	}
	ok := success
	c.documents = append(c.documents, models.Document{
		DocumentType:  docType,
		Timestamp:     time.Now().UTC(),
		OperationName: name,
		DurationMs:    duration.Seconds() * 1000,
		Success:       &ok,
	})
}

// SetAccumulators replaces the derived-metric accumulator set, typically
// after a new collection configuration arrives.
func (c *Collector) SetAccumulators(accumulators []models.Accumulator) {

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accumulators = accumulators
}

// Flush returns the sample for the elapsed interval and resets the collector
// for the next one. System counters and the process ranking are read at
// flush time.
func (c *Collector) Flush() *models.Sample {

	c.mu.Lock()
	now := time.Now().UTC()
	sample := &models.Sample{
		StartTimestamp:       c.start,
		EndTimestamp:         now,
		Requests:             c.requests,
		RequestsFailed:       c.requestsFailed,
		RequestDuration:      c.requestDuration,
		Dependencies:         c.dependencies,
		DependenciesFailed:   c.dependenciesFailed,
		DependencyDuration:   c.dependencyDuration,
		Exceptions:           c.exceptions,
		Accumulators:         c.accumulators,
		Documents:            c.documents,
		DocumentQuotaReached: c.quotaReached,
	}
	c.start = now
	c.requests, c.requestsFailed, c.requestDuration = 0, 0, 0
	c.dependencies, c.dependenciesFailed, c.dependencyDuration = 0, 0, 0
	c.exceptions = 0
	c.documents = nil
	c.quotaReached = false
	c.mu.Unlock()

	sample.Counters = c.collectCounters()
	sample.TopCPUProcesses, sample.TopCPUAccessDenied = c.topProcesses()
	return sample
}

// collectCounters reads the runtime and system counters for one sample.
func (c *Collector) collectCounters() map[string]float64 {

	counters := make(map[string]float64, len(RuntimeMetrics)+2)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	msValue := reflect.ValueOf(memStats)
	for _, name := range RuntimeMetrics {
		field := msValue.FieldByName(name)
		if !field.IsValid() {
			continue
		}
		switch field.Kind() {
		case reflect.Uint32, reflect.Uint64:
			counters[name] = float64(field.Uint())
		case reflect.Float64:
			counters[name] = field.Float()
		}
	}

	memory, err := mem.VirtualMemory()
	if err != nil {
		c.logger.Errorw("error getting memory stats", "error", err)
	} else {
		counters[CounterCommittedBytes] = float64(memory.Used)
	}

	// Non-blocking: percentage since the previous call
	cpuPercents, err := cpu.Percent(0, false)
	if err != nil {
		c.logger.Errorw("error getting cpu info", "error", err)
	} else if len(cpuPercents) > 0 {
		counters[CounterProcessorTime] = cpuPercents[0]
	}

	return counters
}

// topProcesses ranks the busiest processes by CPU share.
//
// The access-denied flag reports that the process table could not be read at
// all; individual unreadable processes are skipped silently.
func (c *Collector) topProcesses() ([]models.ProcessInfo, bool) {

	procs, err := process.Processes()
	if err != nil {
		c.logger.Errorw("error listing processes", "error", err)
		return nil, true
	}

	var ranking []models.ProcessInfo
	for _, p := range procs {
		percent, err := p.CPUPercent()
		if err != nil {
			continue
		}
		name, err := p.Name()
		if err != nil {
			continue
		}
		ranking = append(ranking, models.ProcessInfo{ProcessName: name, CPUPercentage: percent})
	}
	sort.Slice(ranking, func(i, j int) bool {
		return ranking[i].CPUPercentage > ranking[j].CPUPercentage
	})
	if len(ranking) > topProcessLimit {
		ranking = ranking[:topProcessLimit]
	}
	return ranking, false
}
