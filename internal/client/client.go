// Package client implements the live-metrics protocol client.
//
// The client issues two kinds of requests against the collector: heartbeats
// that establish or re-affirm a streaming subscription, and submissions that
// carry interval telemetry snapshots. Every exchange returns a tri-state
// outcome plus an optional updated collection configuration; the client
// never returns an error or panics to the polling loop.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	internalerrors "github.com/Schera-ole/livemetrics/internal/errors"
	models "github.com/Schera-ole/livemetrics/internal/model"
	"github.com/Schera-ole/livemetrics/internal/session"
	"github.com/Schera-ole/livemetrics/internal/snapshot"
)

// DefaultTimeout bounds one full round trip when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// FailureSink receives transmission failures for operator diagnostics.
type FailureSink interface {
	Log(operation string, detail string)
}

// Config carries the construction-time settings of a client.
type Config struct {
	// BaseURL is the collector endpoint, without trailing slash
	BaseURL string

	// InstrumentationKey identifies the telemetry resource
	InstrumentationKey string

	// AuthKey is the auth API key; empty when none is configured
	AuthKey string

	// Timeout bounds one full round trip; DefaultTimeout when zero
	Timeout time.Duration
}

// Client performs the heartbeat and submission exchanges for one stream.
//
// A single polling loop is expected to drive a client; the session state it
// owns is internally synchronized regardless.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ikey       string
	builder    *snapshot.Builder
	state      *session.State
	logger     *zap.SugaredLogger
	sink       FailureSink
}

// New creates a protocol client with its own session state.
//
// sink may be nil; failures are then only logged.
func New(config Config, identity models.StreamIdentity, logger *zap.SugaredLogger, sink FailureSink) *Client {

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    config.BaseURL,
		ikey:       config.InstrumentationKey,
		builder:    snapshot.NewBuilder(identity, logger),
		state:      session.NewState(identity, config.AuthKey),
		logger:     logger,
		sink:       sink,
	}
}

// Ping issues a heartbeat to establish or re-affirm the subscription.
//
// Heartbeats carry the identity headers in addition to the common header set.
func (c *Client) Ping(ctx context.Context, timestamp time.Time, configETag string) (models.Outcome, *models.CollectionConfiguration) {

	body, err := c.builder.BuildHeartbeatBody(timestamp)
	if err != nil {
		c.fail("ping", err)
		return models.OutcomeIndeterminate, nil
	}
	return c.exchange(ctx, "ping", body, true, configETag)
}

// Post submits interval snapshots to the collector.
//
// Identity headers are not sent; the collector knows the stream from prior
// heartbeats. A submission before any heartbeat is still valid, it simply
// carries no session tokens yet.
func (c *Client) Post(ctx context.Context, samples []*models.Sample, configETag string, configErrors []models.ConfigurationError) (models.Outcome, *models.CollectionConfiguration) {

	body, err := c.builder.BuildSubmissionBody(samples, configErrors)
	if err != nil {
		c.fail("post", err)
		return models.OutcomeIndeterminate, nil
	}
	return c.exchange(ctx, "post", body, false, configETag)
}

// exchange performs one buffered POST and interprets the response.
func (c *Client) exchange(ctx context.Context, operation string, body []byte, forHeartbeat bool, configETag string) (models.Outcome, *models.CollectionConfiguration) {

	// The body is fully buffered so the content length is known up front and
	// no half-built request is ever left in flight.
	endpoint := fmt.Sprintf("%s/%s?ikey=%s", c.baseURL, operation, url.QueryEscape(c.ikey))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(operation, fmt.Errorf("error creating request for %s: %w", endpoint, err))
		return models.OutcomeIndeterminate, nil
	}
	request.Header = c.state.Headers(forHeartbeat, time.Now(), configETag)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.fail(operation, fmt.Errorf("%w: %v", internalerrors.ErrSendFailed, err))
		return models.OutcomeIndeterminate, nil
	}
	defer response.Body.Close()

	subscribed, err := parseSubscribed(response.Header)
	if err != nil {
		// A response without a readable subscribed indicator cannot be
		// trusted for any other field; drain so the connection is reusable.
		io.Copy(io.Discard, response.Body)
		c.fail(operation, err)
		return models.OutcomeIndeterminate, nil
	}

	// Token rotation must not stall on later parse failures, so the cache is
	// refreshed before the configuration is considered.
	c.state.UpdateFrom(response.Header)

	outcome := models.OutcomeUnsubscribed
	if subscribed {
		outcome = models.OutcomeSubscribed
	}

	var configuration *models.CollectionConfiguration
	responseETag := response.Header.Get(session.HeaderConfigurationETag)
	if subscribed && responseETag != "" && responseETag != configETag {
		configuration = c.readConfiguration(operation, response.Body, responseETag)
	} else {
		io.Copy(io.Discard, response.Body)
	}
	return outcome, configuration
}

// readConfiguration decodes the pushed configuration from the response body.
//
// Decode failures are logged and yield a nil configuration; the already
// parsed outcome is unaffected.
func (c *Client) readConfiguration(operation string, body io.Reader, etag string) *models.CollectionConfiguration {

	raw, err := io.ReadAll(body)
	if err != nil {
		c.fail(operation, fmt.Errorf("%w: %v", internalerrors.ErrBodyRead, err))
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	configuration := &models.CollectionConfiguration{}
	if err := json.Unmarshal(raw, configuration); err != nil {
		c.fail(operation, fmt.Errorf("%w: %v", internalerrors.ErrConfigurationDecode, err))
		return nil
	}
	if configuration.ETag == "" {
		configuration.ETag = etag
	}
	return configuration
}

// parseSubscribed reads the boolean subscribed indicator from the response.
func parseSubscribed(h http.Header) (bool, error) {

	value := h.Get(session.HeaderSubscribed)
	if value == "" {
		return false, internalerrors.ErrNoSubscribedHeader
	}
	subscribed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %q", internalerrors.ErrNoSubscribedHeader, value)
	}
	return subscribed, nil
}

// fail logs a boundary failure and forwards it to the diagnostics sink.
func (c *Client) fail(operation string, err error) {

	c.logger.Errorw("live metrics exchange failed", "operation", operation, "error", err)
	if c.sink != nil {
		c.sink.Log(operation, err.Error())
	}
}
