package models

// FailureEvent records one transmission failure for operator diagnostics.
type FailureEvent struct {
	// TS is the timestamp of the failure in ISO 8601 format
	TS string `json:"ts"`

	// Operation is the exchange that failed ("ping" or "post")
	Operation string `json:"operation"`

	// Detail describes the failure
	Detail string `json:"detail"`
}
