// Package livemetrics implements the client half of a live-metrics streaming
// protocol.
//
// A process periodically reports short-interval aggregated telemetry
// (request and dependency rates, custom counters, sampled exemplar
// documents) to a remote collector and receives back, as part of the same
// exchange, a decision on whether to keep streaming and an optional updated
// collection configuration.
//
// The protocol client issues two request kinds:
//   - Heartbeat (ping): establishes or re-affirms a streaming subscription
//     without metric payload, carrying the stream identity headers.
//   - Submission (post): carries one or more interval snapshots of
//     aggregated telemetry.
//
// Every exchange yields a tri-state outcome (subscribed, unsubscribed,
// indeterminate) plus an optional configuration update. The tri-state is
// deliberate: the polling loop must distinguish "the collector said stop"
// from "the exchange failed" to choose its backoff.
//
// Features:
//   - Session token handshake with the collector (opaque tokens echoed
//     back verbatim, refreshed from every readable response)
//   - Cheap configuration staleness check via version tags
//   - Snapshot building with decimal rounding and weighted averages
//   - Top-CPU process ranking and system counters via gopsutil
//   - Structured logging
//   - Transmission failure diagnostics to file or HTTP endpoint
//
// The repository includes an agent command that drives the client on a
// fixed interval with backoff. Agent configuration is supported via
// command-line flags and environment variables.
package livemetrics
