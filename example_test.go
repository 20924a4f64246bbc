package livemetrics_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	models "github.com/Schera-ole/livemetrics/internal/model"
	"github.com/Schera-ole/livemetrics/internal/snapshot"
)

// Example of the decimal rounding applied to every metric value
func Example_rounding() {
	fmt.Println(snapshot.Round(1.23456))
	fmt.Println(snapshot.Round(1.23445))
	// Output:
	// 1.2346
	// 1.2345
}

// Example of the tri-state exchange outcome
func Example_outcome() {
	fmt.Println(models.OutcomeSubscribed)
	fmt.Println(models.OutcomeUnsubscribed)
	fmt.Println(models.OutcomeIndeterminate)
	// Output:
	// subscribed
	// unsubscribed
	// indeterminate
}

// Simple test to demonstrate building a submission body
func TestExampleBasic(t *testing.T) {
	identity := models.StreamIdentity{
		Instance:    "example-instance",
		StreamID:    "stream-1",
		MachineName: "example-host",
	}
	builder := snapshot.NewBuilder(identity, zap.NewNop().Sugar())

	now := time.Now().UTC()
	sample := &models.Sample{
		StartTimestamp: now,
		EndTimestamp:   now.Add(time.Second),
		Requests:       5,
	}

	body, err := builder.BuildSubmissionBody([]*models.Sample{sample}, nil)
	if err != nil {
		t.Fatalf("Failed to build submission body: %v", err)
	}

	var points []models.DataPoint
	if err := json.Unmarshal(body, &points); err != nil {
		t.Fatalf("Failed to decode submission body: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("Expected 1 data point, got %d", len(points))
	}
	if points[0].StreamID != "stream-1" {
		t.Errorf("Expected stream-1, got %s", points[0].StreamID)
	}
}
