package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Schera-ole/livemetrics/internal/agent"
	"github.com/Schera-ole/livemetrics/internal/client"
	"github.com/Schera-ole/livemetrics/internal/collector"
	"github.com/Schera-ole/livemetrics/internal/diagnostics"
	models "github.com/Schera-ole/livemetrics/internal/model"
)

// idleInterval is how often the agent re-checks the subscription after the
// collector declined it.
const idleInterval = 60 * time.Second

// applyConfiguration builds the accumulator set from a received
// configuration. Metric definitions that cannot be decoded are reported back
// to the collector as configuration errors on subsequent submissions.
func applyConfiguration(cfg *models.CollectionConfiguration) ([]models.Accumulator, []models.ConfigurationError) {
	if len(cfg.Metrics) == 0 {
		return nil, nil
	}
	var definitions []struct {
		ID string `json:"Id"`
	}
	if err := json.Unmarshal(cfg.Metrics, &definitions); err != nil {
		return nil, []models.ConfigurationError{{
			ErrorType: "MetricConfigurationError",
			Message:   fmt.Sprintf("could not decode metric definitions: %v", err),
			Data:      map[string]string{"ETag": cfg.ETag},
		}}
	}
	var accumulators []models.Accumulator
	for _, def := range definitions {
		if def.ID == "" {
			continue
		}
		accumulators = append(accumulators, collector.NewRollingAverage(def.ID))
	}
	return accumulators, nil
}

func main() {
	agentConfig, err := agent.NewAgentConfig()
	if err != nil {
		log.Fatal("Failed to parse configuration: ", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	events := make(chan models.FailureEvent, 20)
	var sink client.FailureSink
	if agentConfig.DiagnosticsFile != "" {
		fileEvents := make(chan models.FailureEvent, 20)
		go diagnostics.Broadcaster(events, fileEvents)
		go diagnostics.FileSubscriber(fileEvents, agentConfig.DiagnosticsFile)
		sink = diagnostics.NewFailureLogger(events)
	}

	identity := collector.NewStreamIdentity("")
	coll := collector.New(logger)
	protocolClient := client.New(client.Config{
		BaseURL:            agentConfig.Address,
		InstrumentationKey: agentConfig.InstrumentationKey,
		AuthKey:            agentConfig.AuthKey,
		Timeout:            time.Duration(agentConfig.Timeout) * time.Second,
	}, identity, logger, sink)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	reportInterval := time.Duration(agentConfig.ReportInterval) * time.Second
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	ctx := context.Background()
	var (
		subscribed   bool
		etag         string
		configErrors []models.ConfigurationError
		failures     int
		wait         time.Duration
	)
	for {
		select {
		case <-sigChan:
			logger.Infow("Shutting down...")
			close(events)
			return
		case <-time.After(wait):
		}

		var outcome models.Outcome
		var cfg *models.CollectionConfiguration
		if subscribed {
			sample := coll.Flush()
			outcome, cfg = protocolClient.Post(ctx, []*models.Sample{sample}, etag, configErrors)
		} else {
			outcome, cfg = protocolClient.Ping(ctx, time.Now().UTC(), etag)
		}

		switch outcome {
		case models.OutcomeSubscribed:
			subscribed = true
			failures = 0
			wait = reportInterval
		case models.OutcomeUnsubscribed:
			subscribed = false
			failures = 0
			wait = idleInterval
		default:
			// No definitive answer, back off before the next attempt
			failures++
			idx := failures - 1
			if idx >= len(delays) {
				idx = len(delays) - 1
			}
			wait = delays[idx]
		}

		if cfg != nil {
			etag = cfg.ETag
			accumulators, errs := applyConfiguration(cfg)
			coll.SetAccumulators(accumulators)
			configErrors = errs
			logger.Infow("collection configuration updated", "etag", etag)
		}
	}
}
