package smoke

import (
	"strings"
	"time"

	"github.com/okian/dorsum/internal/domain/profile"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string         // Base URL of the service
	Rounds  int            // Copies of each profile to fetch
	Workers int            // Maximum concurrent requests
	Timeout time.Duration  // HTTP request timeout
	LogFile string         // Log file for run output
	Verbose bool           // Log every fetched profile
	Kinds   []profile.Kind // Profile kinds to fetch; all when empty
}

// ParseKinds reads a comma-separated kind list such as "dot,proxy".
// An empty list selects every kind.
func ParseKinds(list string) ([]profile.Kind, error) {
	var kinds []profile.Kind
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		kind, err := profile.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return profile.Kinds(), nil
	}
	return kinds, nil
}

// Stats holds run statistics.
type Stats struct {
	ProfilesFetched int
	Identifiers     int
	BackendState    string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
