// Package smoke exercises a running dorsum instance end to end.
package smoke

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/okian/dorsum/internal/domain/profile"
	"github.com/okian/dorsum/pkg/logger"
)

var statusPattern = regexp.MustCompile(`<span class="status">([^<]*)</span>`)

// Run executes the smoke test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Rounds <= 0 {
		config.Rounds = DefaultRounds
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if len(config.Kinds) == 0 {
		config.Kinds = profile.Kinds()
	}
	base := strings.TrimRight(config.BaseURL, "/")

	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")
	client := newHTTPClient(config.Timeout)

	log.Info(ctx, "starting dorsum smoke test",
		logger.String("baseURL", base),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, base); err != nil {
		return stats, err
	}

	// Step 2: Read mesh status
	state, err := checkStatusPage(ctx, client, base)
	if err != nil {
		return stats, err
	}
	stats.BackendState = state
	log.Info(ctx, "mesh status", logger.String("backendState", state))

	// Step 3: Fetch every profile concurrently
	registry := newIdentifierRegistry()
	p := pool.New().
		WithMaxGoroutines(config.Workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, kind := range config.Kinds {
		url := base + "/ios/" + profile.FileName(kind)
		for round := 0; round < config.Rounds; round++ {
			p.Go(func(ctx context.Context) error {
				resp, err := client.get(ctx, url)
				if err != nil {
					return err
				}
				ids, err := verifyProfile(kind, resp)
				if err != nil {
					return err
				}
				source := fmt.Sprintf("%s#%d", kind, round)
				if err := registry.record(source, ids); err != nil {
					return err
				}
				if config.Verbose {
					log.Debug(ctx, "profile verified",
						logger.String("kind", kind.String()),
						logger.Int("round", round),
						logger.String("uuids", strings.Join(ids, ",")))
				}
				return nil
			})
		}
	}
	if err := p.Wait(); err != nil {
		return stats, fmt.Errorf("profile verification failed: %w", err)
	}

	stats.ProfilesFetched = config.Rounds * len(config.Kinds)
	stats.Identifiers = registry.len()
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient, base string) error {
	resp, err := client.get(ctx, base+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// The service answers with Prometheus metrics.
	if resp.status != StatusOK {
		return fmt.Errorf("%w: healthz returned %d", ErrUnhealthy, resp.status)
	}
	return nil
}

// checkStatusPage reads the backend state from the status view.
func checkStatusPage(ctx context.Context, client *httpClient, base string) (string, error) {
	resp, err := client.get(ctx, base+"/tailscale")
	if err != nil {
		return "", err
	}
	if resp.status != StatusOK {
		return "", fmt.Errorf("%w: tailscale returned %d: %s", ErrStatus, resp.status, strings.TrimSpace(string(resp.body)))
	}
	m := statusPattern.FindSubmatch(resp.body)
	if m == nil {
		return "", fmt.Errorf("%w: status page has no state", ErrDecode)
	}
	return string(m[1]), nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var profilesPerSecond float64
	if stats.Duration > 0 {
		profilesPerSecond = float64(stats.ProfilesFetched) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.String("backendState", stats.BackendState),
		logger.Int("profilesFetched", stats.ProfilesFetched),
		logger.Int("identifiers", stats.Identifiers),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("profilesPerSecond", profilesPerSecond))
}
