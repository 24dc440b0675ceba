package smoke

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/dorsum/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (string, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	if err := logger.Init(
		logger.WithFormat("console"),
		logger.WithOutputPaths("stdout", logFile),
	); err != nil {
		return "", fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return logFile, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`dorsum Smoke Test
=================

Checks a running dorsum instance: health, mesh status, and that every
profile route returns an installable profile with fresh identifiers.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -rounds int
        Copies of each profile to fetch (default 20)
  -workers int
        Maximum concurrent requests (default 4)
  -kinds string
        Comma-separated profile kinds: dot, doh, proxy (default all)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file for run output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Log every verified profile
  -help
        Show this help message

Examples:
  # Check a local instance
  go run ./cmd/smoke

  # Hammer a remote node
  go run ./cmd/smoke -url http://100.64.0.1:3000 -rounds 200 -workers 16

  # Only the DNS profiles
  go run ./cmd/smoke -kinds dot,doh
`)
}
