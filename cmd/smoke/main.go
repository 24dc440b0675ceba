package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/dorsum/internal/smoke"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:3000", "Base URL of the service")
		rounds  = flag.Int("rounds", smoke.DefaultRounds, "Copies of each profile to fetch")
		workers = flag.Int("workers", smoke.DefaultWorkers, "Maximum concurrent requests")
		kinds   = flag.String("kinds", "", "Comma-separated profile kinds: dot, doh, proxy (default all)")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Log file for run output (default: smoke_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Log every verified profile")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	selected, err := smoke.ParseKinds(*kinds)
	if err != nil {
		_, _ = os.Stderr.WriteString("Invalid -kinds: " + err.Error() + "\n")
		os.Exit(1)
	}

	logPath, err := smoke.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL: *baseURL,
		Rounds:  *rounds,
		Workers: *workers,
		Timeout: *timeout,
		LogFile: logPath,
		Verbose: *verbose,
		Kinds:   selected,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
