// Package config holds the run configuration and loads the API credential.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/report"
	"github.com/pable/duoqstats/internal/riot"
)

// DateLayout is the accepted --season-start format.
const DateLayout = "2006-01-02"

// RankedSoloQueue is the queue id for ranked solo/duo.
const RankedSoloQueue = 420

// Config is everything one run needs. It is built once and passed down.
type Config struct {
	TargetName  string
	SeasonStart time.Time
	QueueID     int
	Champion    string
	TopN        int
	PageSize    int
	MaxPages    int
	PlatformURL string
	RegionalURL string
	Timeout     time.Duration
	Strict      bool
}

// Default returns the configuration the tool runs with when no flags are given.
func Default() Config {
	return Config{
		SeasonStart: time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC),
		QueueID:     RankedSoloQueue,
		TopN:        report.DefaultTopN,
		PageSize:    fetcher.DefaultPageSize,
		MaxPages:    fetcher.DefaultMaxPages,
		PlatformURL: riot.DefaultPlatformURL,
		RegionalURL: riot.DefaultRegionalURL,
		Timeout:     30 * time.Second,
	}
}

// SeasonStartEpoch returns the season start as epoch seconds.
func (c Config) SeasonStartEpoch() int64 {
	return c.SeasonStart.Unix()
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.TargetName) == "":
		return errors.New("player name is required")
	case c.SeasonStart.IsZero():
		return errors.New("season start is required")
	case c.TopN <= 0:
		return fmt.Errorf("top must be positive, got %d", c.TopN)
	case c.PageSize <= 0 || c.PageSize > 100:
		return fmt.Errorf("page size must be in 1..100, got %d", c.PageSize)
	case c.MaxPages <= 0:
		return fmt.Errorf("max pages must be positive, got %d", c.MaxPages)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// LoadAPIKey returns the Riot API key. It checks, in order, RIOT_API_KEY
// (after loading ./.env if present), keyFile, then ~/.duoqstats/apikey.txt.
func LoadAPIKey(keyFile string) (string, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	if key := strings.TrimSpace(os.Getenv("RIOT_API_KEY")); key != "" {
		return key, nil
	}

	candidates := []string{}
	if keyFile != "" {
		candidates = append(candidates, keyFile)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".duoqstats", "apikey.txt"))
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("Riot API key not found: set RIOT_API_KEY, add it to .env, or create %s or ~/.duoqstats/apikey.txt", keyFile)
}
