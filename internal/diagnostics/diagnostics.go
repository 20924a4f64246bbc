// Package diagnostics provides failure reporting for the live-metrics agent.
//
// It implements a publish-subscribe pattern for distributing transmission
// failure events to multiple destinations including files and HTTP endpoints.
package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	models "github.com/Schera-ole/livemetrics/internal/model"
)

// FailureLogger is an interface for recording transmission failures.
type FailureLogger interface {
	// Log records a failed exchange with a short detail string.
	Log(operation string, detail string)
}

// failureLogger is a concrete implementation of FailureLogger that sends events to a channel.
type failureLogger struct {
	eventChan chan models.FailureEvent
}

// NewFailureLogger creates a FailureLogger that sends events to the provided channel.
func NewFailureLogger(eventChan chan models.FailureEvent) FailureLogger {
	return &failureLogger{
		eventChan: eventChan,
	}
}

// Log records a failed exchange with the specified operation and detail.
func (l *failureLogger) Log(operation string, detail string) {
	event := models.FailureEvent{
		TS:        time.Now().Format(time.RFC3339),
		Operation: operation,
		Detail:    detail,
	}

	select {
	case l.eventChan <- event:
		// Event sent successfully
	default:
		// Channel is full, drop the event to prevent blocking the client
		fmt.Printf("FailureLogger: dropped event, channel is full\n")
	}
}

// Broadcaster distributes failure events to multiple subscriber channels.
//
// It receives events from a source channel and sends them to all provided
// subscriber channels using select with default case to prevent blocking.
func Broadcaster(source <-chan models.FailureEvent, subs ...chan<- models.FailureEvent) {
	for evt := range source {
		for _, subChan := range subs {
			select {
			case subChan <- evt:
				// Event sent successfully
			default:
				// Channel is blocked, discard event to prevent goroutine leak
				fmt.Printf("Broadcaster: dropped event for blocked subscriber channel\n")
			}
		}
	}
}

// FileSubscriber appends failure events to a file, one JSON line per event.
func FileSubscriber(events <-chan models.FailureEvent, path string) {
	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			fmt.Printf("FileSubscriber: error marshalling JSON: %v\n", err)
			continue
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("FileSubscriber: could not open file %s: %v\n", path, err)
			continue
		}
		_, err = f.WriteString(string(data) + "\n")
		if err != nil {
			fmt.Printf("FileSubscriber: error writing to file: %v\n", err)
		}
		f.Close()
	}
}

// URLSubscriber sends failure events to an HTTP endpoint.
func URLSubscriber(events <-chan models.FailureEvent, url string) {
	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			fmt.Printf("URLSubscriber: error marshalling JSON: %v\n", err)
			continue
		}
		resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Printf("URLSubscriber: error sending request to %s: %v\n", url, err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
