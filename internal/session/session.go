// Package session tracks the per-client handshake state for the live-metrics
// protocol: the opaque session tokens issued by the collector and the header
// set attached to every outgoing request.
package session

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	models "github.com/Schera-ole/livemetrics/internal/model"
)

// Request and response header names of the live-metrics protocol.
const (
	HeaderTransmissionTime  = "x-ms-qps-transmission-time"
	HeaderConfigurationETag = "x-ms-qps-configuration-etag"
	HeaderAuthAPIKey        = "x-ms-qps-auth-api-key"
	HeaderSubscribed        = "x-ms-qps-subscribed"

	// Identity headers, sent on heartbeat requests only
	HeaderInstanceName     = "x-ms-qps-instance-name"
	HeaderStreamID         = "x-ms-qps-stream-id"
	HeaderMachineName      = "x-ms-qps-machine-name"
	HeaderInvariantVersion = "x-ms-qps-invariant-version"
)

// OpaqueTokenHeaders lists the collector-issued session token headers.
//
// The client echoes these back verbatim for session continuity and never
// interprets their values.
var OpaqueTokenHeaders = []string{
	"x-ms-qps-auth-app-id",
	"x-ms-qps-auth-status",
	"x-ms-qps-auth-token-expiry",
	"x-ms-qps-auth-token-signature",
	"x-ms-qps-auth-token-signature-alg",
}

// ticksAtUnixEpoch is the number of 100ns intervals between 0001-01-01 and
// the Unix epoch.
const ticksAtUnixEpoch = 621355968000000000

// Ticks converts t to 100-nanosecond intervals since 0001-01-01 UTC, the
// culture-independent integer format the transmission-time header carries.
func Ticks(t time.Time) int64 {

	return ticksAtUnixEpoch + t.UnixNano()/100
}

// State owns the opaque token cache for one client instance.
//
// There is no shared or global token state: two clients never observe each
// other's sessions.
type State struct {
	// mu guards tokens so header construction sees a consistent snapshot
	mu sync.RWMutex

	// tokens maps opaque header name -> last received value; names never
	// received (or cleared by the collector) are absent
	tokens map[string]string

	// identity describes the reporting process, fixed at construction
	identity models.StreamIdentity

	// authKey is the caller-supplied auth API key, empty when none
	authKey string
}

// NewState creates session state with an empty token cache.
func NewState(identity models.StreamIdentity, authKey string) *State {

	return &State{
		tokens:   make(map[string]string, len(OpaqueTokenHeaders)),
		identity: identity,
		authKey:  authKey,
	}
}

// Identity returns the stream identity the state was created with.
func (s *State) Identity() models.StreamIdentity {

	return s.identity
}

// Headers builds the header set for one outgoing request.
//
// Every request carries the transmission time, the caller's configuration
// etag, the auth key (empty string when none) and all previously received
// opaque tokens. Heartbeats additionally carry the identity headers.
func (s *State) Headers(forHeartbeat bool, now time.Time, configETag string) http.Header {

	s.mu.RLock()
	defer s.mu.RUnlock()

	h := http.Header{}
	h.Set(HeaderTransmissionTime, strconv.FormatInt(Ticks(now.UTC()), 10))
	h.Set(HeaderConfigurationETag, configETag)
	h.Set(HeaderAuthAPIKey, s.authKey)
	for _, name := range OpaqueTokenHeaders {
		if value, ok := s.tokens[name]; ok {
			h.Set(name, value)
		}
	}
	if forHeartbeat {
		h.Set(HeaderInstanceName, s.identity.Instance)
		h.Set(HeaderStreamID, s.identity.StreamID)
		h.Set(HeaderMachineName, s.identity.MachineName)
		h.Set(HeaderInvariantVersion, strconv.Itoa(models.InvariantVersion))
	}
	return h
}

// UpdateFrom overwrites every tracked opaque token with the value found in
// the response headers. Tokens absent from the response are cleared, so a
// stale cache never resurrects a token the collector stopped sending.
func (s *State) UpdateFrom(resp http.Header) {

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range OpaqueTokenHeaders {
		value := resp.Get(name)
		if value == "" {
			delete(s.tokens, name)
		} else {
			s.tokens[name] = value
		}
	}
}
