package collector

import (
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/cpu"

	models "github.com/Schera-ole/livemetrics/internal/model"
)

// NewStreamIdentity builds the identity reported to the collector.
//
// The stream id is a fresh UUID per process; instance defaults to the host
// name when empty.
func NewStreamIdentity(instance string) models.StreamIdentity {

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	if instance == "" {
		instance = host
	}

	processors, err := cpu.Counts(true)
	supported := err == nil
	if err != nil {
		processors = runtime.NumCPU()
	}

	return models.StreamIdentity{
		Instance:                       instance,
		StreamID:                       uuid.NewString(),
		MachineName:                    host,
		IsWebApp:                       false,
		PerformanceCollectionSupported: supported,
		NumberOfProcessors:             processors,
	}
}
