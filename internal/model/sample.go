package models

import "time"

// Sample holds the raw telemetry aggregated over one reporting interval.
//
// It is produced by the collection subsystem and consumed by the snapshot
// builder; a Sample is not reused across intervals.
type Sample struct {
	// StartTimestamp is the beginning of the interval
	StartTimestamp time.Time

	// EndTimestamp is the end of the interval
	EndTimestamp time.Time

	// Requests is the number of requests observed in the interval
	Requests int64

	// RequestsFailed is the number of failed requests
	RequestsFailed int64

	// RequestDuration is the summed duration of all requests
	RequestDuration time.Duration

	// Dependencies is the number of dependency calls observed
	Dependencies int64

	// DependenciesFailed is the number of failed dependency calls
	DependenciesFailed int64

	// DependencyDuration is the summed duration of all dependency calls
	DependencyDuration time.Duration

	// Exceptions is the number of exceptions observed
	Exceptions int64

	// Counters holds raw named counter values collected during the interval
	Counters map[string]float64

	// Accumulators is the ordered set of derived-metric aggregators for the interval
	Accumulators []Accumulator

	// Documents holds exemplar documents in collection order, oldest first
	Documents []Document

	// TopCPUProcesses ranks the busiest processes observed during the interval
	TopCPUProcesses []ProcessInfo

	// TopCPUAccessDenied is set when the process ranking could not be read
	TopCPUAccessDenied bool

	// DocumentQuotaReached indicates the global exemplar quota was hit
	DocumentQuotaReached bool
}

// DurationSeconds returns the interval length in seconds, never less than zero.
func (s *Sample) DurationSeconds() float64 {

	d := s.EndTimestamp.Sub(s.StartTimestamp)
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}

// Accumulator computes a derived metric over one interval.
//
// Aggregation may fail independently per accumulator; a failure drops only
// that metric, never the whole snapshot.
type Accumulator interface {
	// ID returns the metric identifier the aggregate is reported under.
	ID() string

	// Aggregate computes the current aggregate value and the number of
	// observations contributing to it.
	Aggregate() (value float64, count int64, err error)
}
