// Package models defines the data structures exchanged with the live-metrics collector.
package models

import (
	"encoding/json"
	"time"
)

const (
	// SnapshotVersion is the protocol version stamped on every outgoing data point.
	SnapshotVersion = "2.0"

	// InvariantVersion is the schema-invariant version the collector validates against.
	InvariantVersion = 5
)

// DataPoint represents one outgoing telemetry snapshot for a single reporting interval.
type DataPoint struct {
	// Version is the protocol version of the snapshot
	Version string `json:"Version"`

	// InvariantVersion is the schema-invariant version of the snapshot
	InvariantVersion int `json:"InvariantVersion"`

	// Instance is the reporting instance name (role instance or host)
	Instance string `json:"Instance"`

	// StreamID uniquely identifies this stream for the lifetime of the process
	StreamID string `json:"StreamId"`

	// MachineName is the host name of the reporting machine
	MachineName string `json:"MachineName"`

	// Timestamp is the UTC time the snapshot was built
	Timestamp time.Time `json:"Timestamp"`

	// IsWebApp indicates whether the process serves web traffic
	IsWebApp bool `json:"IsWebApp"`

	// PerformanceCollectionSupported indicates whether process counters could be read
	PerformanceCollectionSupported bool `json:"PerformanceCollectionSupported"`

	// NumberOfProcessors is the logical processor count of the host
	NumberOfProcessors int `json:"NumberOfProcessors"`

	// Metrics is the ordered list of metric points for the interval
	Metrics []MetricPoint `json:"Metrics"`

	// Documents is the list of exemplar documents, most recent first
	Documents []Document `json:"Documents"`

	// GlobalDocumentQuotaReached indicates the global exemplar quota was hit
	GlobalDocumentQuotaReached bool `json:"GlobalDocumentQuotaReached"`

	// TopCPUProcesses ranks the busiest processes by CPU; omitted when empty
	TopCPUProcesses []ProcessInfo `json:"TopCpuProcesses,omitempty"`

	// TopCPUDataAccessDenied is set when the process ranking could not be read
	TopCPUDataAccessDenied bool `json:"TopCpuDataAccessDenied"`

	// CollectionConfigurationErrors reports configuration blobs the client failed
	// to apply; always attached so operators see acknowledgment of bad config
	CollectionConfigurationErrors []ConfigurationError `json:"CollectionConfigurationErrors"`
}

// MetricPoint is a single named metric value with the observation count backing it.
type MetricPoint struct {
	// Name is the unique identifier for the metric
	Name string `json:"Name"`

	// Value is the metric value, rounded to 4 decimal places
	Value float64 `json:"Value"`

	// Weight is the number of observations backing the value; 1 for plain
	// rates and counters, the underlying sample count for averages
	Weight int `json:"Weight"`
}

// Document is a sampled exemplar telemetry item attached to a snapshot.
type Document struct {
	// DocumentType names the kind of exemplar ("Request", "RemoteDependency", "Exception")
	DocumentType string `json:"DocumentType"`

	// Timestamp is when the underlying operation happened
	Timestamp time.Time `json:"Timestamp"`

	// OperationName identifies the sampled operation
	OperationName string `json:"OperationName,omitempty"`

	// DurationMs is the operation duration in milliseconds
	DurationMs float64 `json:"DurationMs,omitempty"`

	// Success reports whether the operation succeeded (omitted when unknown)
	Success *bool `json:"Success,omitempty"`

	// Properties carries additional exemplar detail
	Properties map[string]string `json:"Properties,omitempty"`
}

// ProcessInfo is one entry of the top-CPU process ranking.
type ProcessInfo struct {
	// ProcessName is the executable name of the process
	ProcessName string `json:"ProcessName"`

	// CPUPercentage is the CPU share of the process across all cores
	CPUPercentage float64 `json:"CpuPercentage"`
}

// ConfigurationError describes a collection configuration the client could not apply.
type ConfigurationError struct {
	// ErrorType classifies the failure
	ErrorType string `json:"CollectionConfigurationErrorType"`

	// Message is a human-readable description
	Message string `json:"Message"`

	// Data carries key-value context for the failure
	Data map[string]string `json:"Data,omitempty"`
}

// CollectionConfiguration is the server-provided streaming configuration.
//
// The client treats its sections as opaque: it records the etag for staleness
// comparison and hands the rest to the caller uninterpreted.
type CollectionConfiguration struct {
	// ETag is the version tag of this configuration, compared by exact equality
	ETag string `json:"ETag"`

	// Metrics holds the derived-metric definitions, uninterpreted by the client
	Metrics json.RawMessage `json:"Metrics,omitempty"`

	// DocumentStreams holds the exemplar filter definitions, uninterpreted by the client
	DocumentStreams json.RawMessage `json:"DocumentStreams,omitempty"`

	// QuotaInfo holds exemplar quota settings, uninterpreted by the client
	QuotaInfo json.RawMessage `json:"QuotaInfo,omitempty"`
}

// StreamIdentity describes the reporting process to the collector.
type StreamIdentity struct {
	// Instance is the reporting instance name
	Instance string

	// StreamID uniquely identifies this stream for the process lifetime
	StreamID string

	// MachineName is the host name
	MachineName string

	// IsWebApp indicates whether the process serves web traffic
	IsWebApp bool

	// PerformanceCollectionSupported indicates whether process counters could be read
	PerformanceCollectionSupported bool

	// NumberOfProcessors is the logical processor count of the host
	NumberOfProcessors int
}
