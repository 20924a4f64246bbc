package errors

import "errors"

var (
	// Transport errors
	ErrSendFailed = errors.New("request send failed")
	ErrBodyRead   = errors.New("response body read failed")

	// Response errors
	ErrNoSubscribedHeader  = errors.New("subscribed header missing or unparsable")
	ErrConfigurationDecode = errors.New("collection configuration decode failed")

	// Aggregation errors
	ErrAggregationFailed = errors.New("metric aggregation failed")
)
