package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "subscribed", OutcomeSubscribed.String())
	assert.Equal(t, "unsubscribed", OutcomeUnsubscribed.String())
	assert.Equal(t, "indeterminate", OutcomeIndeterminate.String())
}

func TestSampleDurationSeconds(t *testing.T) {
	now := time.Now().UTC()

	sample := &Sample{StartTimestamp: now, EndTimestamp: now.Add(2 * time.Second)}
	assert.Equal(t, 2.0, sample.DurationSeconds())

	// A clock step backwards never yields a negative interval
	inverted := &Sample{StartTimestamp: now, EndTimestamp: now.Add(-time.Second)}
	assert.Equal(t, 0.0, inverted.DurationSeconds())
}
