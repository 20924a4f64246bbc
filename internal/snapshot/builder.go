// Package snapshot turns interval samples into serialized telemetry
// snapshots in the collector's wire format.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	internalerrors "github.com/Schera-ole/livemetrics/internal/errors"
	models "github.com/Schera-ole/livemetrics/internal/model"
)

// Names of the default metrics reported for every interval.
const (
	MetricRequestRate             = "\\ApplicationInsights\\Requests/Sec"
	MetricRequestDuration         = "\\ApplicationInsights\\Request Duration"
	MetricRequestFailedRate       = "\\ApplicationInsights\\Requests Failed/Sec"
	MetricRequestSucceededRate    = "\\ApplicationInsights\\Requests Succeeded/Sec"
	MetricDependencyRate          = "\\ApplicationInsights\\Dependency Calls/Sec"
	MetricDependencyDuration      = "\\ApplicationInsights\\Dependency Call Duration"
	MetricDependencyFailedRate    = "\\ApplicationInsights\\Dependency Calls Failed/Sec"
	MetricDependencySucceededRate = "\\ApplicationInsights\\Dependency Calls Succeeded/Sec"
	MetricExceptionRate           = "\\ApplicationInsights\\Exceptions/Sec"
)

// Round rounds v to 4 decimal places, half away from zero.
//
// The tie rule is applied to the decimal representation of v, not to a
// binary-float approximation that could flip a tie.
func Round(v float64) float64 {

	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

// Builder assembles wire-format snapshots for one stream identity.
type Builder struct {
	// identity is stamped onto every snapshot
	identity models.StreamIdentity

	// logger receives per-metric aggregation failures
	logger *zap.SugaredLogger
}

// NewBuilder creates a snapshot builder for the given stream identity.
func NewBuilder(identity models.StreamIdentity, logger *zap.SugaredLogger) *Builder {

	return &Builder{identity: identity, logger: logger}
}

// BuildSubmissionBody serializes one snapshot per sample into a JSON array,
// the body of a data submission request.
func (b *Builder) BuildSubmissionBody(samples []*models.Sample, configErrors []models.ConfigurationError) ([]byte, error) {

	points := make([]models.DataPoint, 0, len(samples))
	for _, sample := range samples {
		points = append(points, b.buildDataPoint(sample, configErrors))
	}
	body, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("error serializing submission body: %w", err)
	}
	return body, nil
}

// BuildHeartbeatBody serializes a minimal snapshot with no metrics or
// documents, the body of a subscription-check request.
func (b *Builder) BuildHeartbeatBody(timestamp time.Time) ([]byte, error) {

	point := b.newDataPoint(timestamp, nil)
	body, err := json.Marshal(point)
	if err != nil {
		return nil, fmt.Errorf("error serializing heartbeat body: %w", err)
	}
	return body, nil
}

// buildDataPoint merges default metrics, raw counters and accumulator
// aggregates from one sample into a single snapshot.
func (b *Builder) buildDataPoint(sample *models.Sample, configErrors []models.ConfigurationError) models.DataPoint {

	metrics := b.defaultMetrics(sample)

	// Raw named counters, in stable name order
	names := make([]string, 0, len(sample.Counters))
	for name := range sample.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		metrics = append(metrics, models.MetricPoint{
			Name:   name,
			Value:  Round(sample.Counters[name]),
			Weight: 1,
		})
	}

	// Accumulator aggregates; a failing accumulator drops only its own metric
	for _, acc := range sample.Accumulators {
		value, count, err := acc.Aggregate()
		if err != nil {
			b.logger.Errorw("metric dropped from snapshot",
				"metric", acc.ID(),
				"error", fmt.Errorf("%w: %v", internalerrors.ErrAggregationFailed, err))
			continue
		}
		metrics = append(metrics, models.MetricPoint{
			Name:   acc.ID(),
			Value:  Round(value),
			Weight: int(count),
		})
	}

	point := b.newDataPoint(sample.EndTimestamp, configErrors)
	point.Metrics = metrics
	point.Documents = reverseDocuments(sample.Documents)
	point.GlobalDocumentQuotaReached = sample.DocumentQuotaReached
	if len(sample.TopCPUProcesses) > 0 {
		point.TopCPUProcesses = sample.TopCPUProcesses
	}
	point.TopCPUDataAccessDenied = sample.TopCPUAccessDenied
	return point
}

// defaultMetrics computes the fixed request/dependency/exception metrics.
//
// Rates are per second over the sample interval; durations are averages in
// milliseconds weighted by their backing counts.
func (b *Builder) defaultMetrics(sample *models.Sample) []models.MetricPoint {

	seconds := sample.DurationSeconds()
	rate := func(count int64) float64 {
		if seconds == 0 {
			return 0
		}
		return float64(count) / seconds
	}
	averageMs := func(total time.Duration, count int64) float64 {
		if count == 0 {
			return 0
		}
		return total.Seconds() * 1000 / float64(count)
	}

	requestsSucceeded := sample.Requests - sample.RequestsFailed
	dependenciesSucceeded := sample.Dependencies - sample.DependenciesFailed

	return []models.MetricPoint{
		{Name: MetricRequestRate, Value: Round(rate(sample.Requests)), Weight: 1},
		{Name: MetricRequestDuration, Value: Round(averageMs(sample.RequestDuration, sample.Requests)), Weight: int(sample.Requests)},
		{Name: MetricRequestFailedRate, Value: Round(rate(sample.RequestsFailed)), Weight: 1},
		{Name: MetricRequestSucceededRate, Value: Round(rate(requestsSucceeded)), Weight: 1},
		{Name: MetricDependencyRate, Value: Round(rate(sample.Dependencies)), Weight: 1},
		{Name: MetricDependencyDuration, Value: Round(averageMs(sample.DependencyDuration, sample.Dependencies)), Weight: int(sample.Dependencies)},
		{Name: MetricDependencyFailedRate, Value: Round(rate(sample.DependenciesFailed)), Weight: 1},
		{Name: MetricDependencySucceededRate, Value: Round(rate(dependenciesSucceeded)), Weight: 1},
		{Name: MetricExceptionRate, Value: Round(rate(sample.Exceptions)), Weight: 1},
	}
}

// newDataPoint stamps identity, version and timestamp fields onto an
// otherwise empty snapshot. The configuration-error list is always attached,
// even when empty.
func (b *Builder) newDataPoint(timestamp time.Time, configErrors []models.ConfigurationError) models.DataPoint {

	if configErrors == nil {
		configErrors = []models.ConfigurationError{}
	}
	return models.DataPoint{
		Version:                        models.SnapshotVersion,
		InvariantVersion:               models.InvariantVersion,
		Instance:                       b.identity.Instance,
		StreamID:                       b.identity.StreamID,
		MachineName:                    b.identity.MachineName,
		Timestamp:                      timestamp.UTC(),
		IsWebApp:                       b.identity.IsWebApp,
		PerformanceCollectionSupported: b.identity.PerformanceCollectionSupported,
		NumberOfProcessors:             b.identity.NumberOfProcessors,
		Metrics:                        []models.MetricPoint{},
		Documents:                      []models.Document{},
		CollectionConfigurationErrors:  configErrors,
	}
}

// reverseDocuments returns the documents newest-first; samples collect them
// oldest-first.
func reverseDocuments(docs []models.Document) []models.Document {

	reversed := make([]models.Document, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		reversed = append(reversed, docs[i])
	}
	return reversed
}
