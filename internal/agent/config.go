package agent

import (
	"flag"
	"log"
	"os"
	"strconv"
)

type AgentConfig struct {
	Address            string
	InstrumentationKey string
	AuthKey            string
	ReportInterval     int
	Timeout            int
	DiagnosticsFile    string
}

func NewAgentConfig() (*AgentConfig, error) {
	config := &AgentConfig{
		Address:        "http://localhost:8080",
		ReportInterval: 1,
		Timeout:        3,
	}

	address := flag.String("a", config.Address, "Base URL of the live-metrics collector")
	ikey := flag.String("i", "", "Instrumentation key")
	authKey := flag.String("k", "", "Auth API key")
	reportInterval := flag.Int("r", config.ReportInterval, "Reporting interval in seconds")
	timeout := flag.Int("t", config.Timeout, "Request timeout in seconds")
	diagnosticsFile := flag.String("f", "", "File for transmission failure diagnostics")
	flag.Parse()

	envIntVars := map[string]*int{
		"REPORT_INTERVAL": reportInterval,
		"TIMEOUT":         timeout,
	}

	envStrVars := map[string]*string{
		"ADDRESS":             address,
		"INSTRUMENTATION_KEY": ikey,
		"AUTH_API_KEY":        authKey,
		"DIAGNOSTICS_FILE":    diagnosticsFile,
	}

	for envVar, flag := range envIntVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			interval, err := strconv.Atoi(envValue)
			if err != nil {
				log.Fatalf("Invalid %s value: %s", envVar, envValue)
			}
			*flag = interval
		}
	}

	for envVar, flag := range envStrVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			*flag = envValue
		}
	}

	config.Address = *address
	config.InstrumentationKey = *ikey
	config.AuthKey = *authKey
	config.ReportInterval = *reportInterval
	config.Timeout = *timeout
	config.DiagnosticsFile = *diagnosticsFile

	return config, nil
}
