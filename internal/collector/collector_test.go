package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "github.com/Schera-ole/livemetrics/internal/model"
)

func TestTrackAndFlush(t *testing.T) {
	c := New(zap.NewNop().Sugar())

	c.TrackRequest("GET /orders", 100*time.Millisecond, true)
	c.TrackRequest("GET /orders", 300*time.Millisecond, false)
	c.TrackDependency("sql", 50*time.Millisecond, true)
	c.TrackException("ErrTimeout")

	sample := c.Flush()

	assert.Equal(t, int64(2), sample.Requests)
	assert.Equal(t, int64(1), sample.RequestsFailed)
	assert.Equal(t, 400*time.Millisecond, sample.RequestDuration)
	assert.Equal(t, int64(1), sample.Dependencies)
	assert.Equal(t, int64(0), sample.DependenciesFailed)
	assert.Equal(t, int64(1), sample.Exceptions)

	// Failed operations leave exemplar documents in collection order
	require.Len(t, sample.Documents, 2)
	assert.Equal(t, "Request", sample.Documents[0].DocumentType)
	assert.Equal(t, "Exception", sample.Documents[1].DocumentType)
	assert.Equal(t, "ErrTimeout", sample.Documents[1].OperationName)

	// Flushing resets the collector for the next interval
	next := c.Flush()
	assert.Equal(t, int64(0), next.Requests)
	assert.Equal(t, int64(0), next.Exceptions)
	assert.Empty(t, next.Documents)
	assert.True(t, next.StartTimestamp.Equal(sample.EndTimestamp))
}

func TestFlushCollectsCounters(t *testing.T) {
	c := New(zap.NewNop().Sugar())

	sample := c.Flush()

	// Runtime memory counters are attached to every sample
	assert.Contains(t, sample.Counters, "Alloc")
	assert.Contains(t, sample.Counters, "HeapAlloc")
	assert.Contains(t, sample.Counters, "NumGC")
	assert.Greater(t, sample.Counters["Sys"], 0.0)
}

func TestDocumentQuota(t *testing.T) {
	c := New(zap.NewNop().Sugar())

	for i := 0; i < maxDocuments+3; i++ {
		c.TrackRequest("GET /orders", time.Millisecond, false)
	}

	sample := c.Flush()

	assert.Len(t, sample.Documents, maxDocuments)
	assert.True(t, sample.DocumentQuotaReached)
}

func TestSetAccumulators(t *testing.T) {
	c := New(zap.NewNop().Sugar())

	avg := NewRollingAverage("custom-a")
	avg.Observe(5)
	c.SetAccumulators([]models.Accumulator{avg})

	sample := c.Flush()
	require.Len(t, sample.Accumulators, 1)
	assert.Equal(t, "custom-a", sample.Accumulators[0].ID())

	// A nil replacement removes all accumulators
	c.SetAccumulators(nil)
	sample = c.Flush()
	assert.Empty(t, sample.Accumulators)
}

func TestRollingAverage(t *testing.T) {
	avg := NewRollingAverage("custom-a")
	assert.Equal(t, "custom-a", avg.ID())

	avg.Observe(1)
	avg.Observe(2)
	avg.Observe(3)

	value, count, err := avg.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, 2.0, value)
	assert.Equal(t, int64(3), count)

	// Aggregation resets the window
	value, count, err = avg.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
	assert.Equal(t, int64(0), count)
}

func TestNewStreamIdentity(t *testing.T) {
	identity := NewStreamIdentity("")

	assert.NotEmpty(t, identity.StreamID)
	assert.NotEmpty(t, identity.MachineName)
	assert.Equal(t, identity.MachineName, identity.Instance)
	assert.Greater(t, identity.NumberOfProcessors, 0)

	// Two identities never share a stream id
	other := NewStreamIdentity("worker-1")
	assert.NotEqual(t, identity.StreamID, other.StreamID)
	assert.Equal(t, "worker-1", other.Instance)
}
