package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pable/duoqstats/internal/config"
	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/logging"
	"github.com/pable/duoqstats/internal/riot"
	"github.com/pable/duoqstats/internal/storage"
)

// session bundles the clients one command run needs.
type session struct {
	log     zerolog.Logger
	client  *riot.Client
	fetcher *fetcher.Fetcher
	db      *storage.DB
}

// baseConfig returns the defaults with persistent flag values applied.
func baseConfig() config.Config {
	cfg := config.Default()
	cfg.PlatformURL = platformURL
	cfg.RegionalURL = regionalURL
	cfg.Timeout = timeout
	return cfg
}

// openSession loads the API key and wires the client, fetcher and, with
// --cache, the match cache.
func openSession(cfg config.Config) (*session, error) {
	log := logging.New(os.Stderr, verbose)

	apiKey, err := config.LoadAPIKey(keyFile)
	if err != nil {
		return nil, err
	}
	client := riot.NewClient(apiKey,
		riot.WithPlatformURL(cfg.PlatformURL),
		riot.WithRegionalURL(cfg.RegionalURL),
		riot.WithTimeout(cfg.Timeout),
	)

	s := &session{log: log, client: client}
	opts := []fetcher.Option{
		fetcher.WithLogger(log),
		fetcher.WithPageSize(cfg.PageSize),
		fetcher.WithMaxPages(cfg.MaxPages),
	}
	if useCache {
		db, err := openCache()
		if err != nil {
			return nil, err
		}
		s.db = db
		opts = append(opts, fetcher.WithCache(db))
		log.Debug().Str("db", dbPath).Msg("match cache enabled")
	}
	s.fetcher = fetcher.New(client, opts...)
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close cache")
		}
	}
}

func openCache() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
