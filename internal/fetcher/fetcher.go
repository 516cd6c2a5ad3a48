// Package fetcher retrieves a player's match ids and match records.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/pable/duoqstats/internal/model"
	"github.com/pable/duoqstats/internal/riot"
)

var (
	// ErrMalformedMatch marks a match-detail response without the expected
	// structure. Callers skip the match and carry on.
	ErrMalformedMatch = errors.New("malformed match response")
	// ErrPageLimit is returned, together with the ids collected so far, when
	// pagination reaches MaxPages without seeing an empty page.
	ErrPageLimit = errors.New("match id pagination exceeded page limit")
)

const (
	DefaultPageSize = 20
	DefaultMaxPages = 500
)

// API is the subset of the Riot client used to fetch matches.
type API interface {
	MatchIDs(ctx context.Context, puuid string, q riot.MatchIDsQuery) ([]string, error)
	MatchDetail(ctx context.Context, matchID string) ([]byte, error)
}

// Cache stores raw match-detail bodies. *storage.DB implements it.
type Cache interface {
	GetMatch(matchID string) ([]byte, bool, error)
	PutMatch(matchID string, body []byte, fetchedAt time.Time) error
}

// Fetcher pages through match ids and loads match records one at a time.
type Fetcher struct {
	api      API
	cache    Cache
	log      zerolog.Logger
	pageSize int
	maxPages int
	now      func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCache serves and stores match bodies through c.
func WithCache(c Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithPageSize sets the number of ids requested per page.
func WithPageSize(n int) Option {
	return func(f *Fetcher) { f.pageSize = n }
}

// WithMaxPages bounds the number of page requests.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) { f.maxPages = n }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// New returns a Fetcher backed by api.
func New(api API, opts ...Option) *Fetcher {
	f := &Fetcher{
		api:      api,
		log:      zerolog.Nop(),
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		now:      time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// MatchIDs returns every match id for the player in queue since the given
// epoch second, in retrieval order with duplicates removed. Pages are
// requested with increasing offsets until one comes back empty.
func (f *Fetcher) MatchIDs(ctx context.Context, id model.PlayerID, queue int, since int64) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	for page := 0; page < f.maxPages; page++ {
		q := riot.MatchIDsQuery{
			Queue:     queue,
			StartTime: since,
			Start:     page * f.pageSize,
			Count:     f.pageSize,
		}
		batch, err := f.api.MatchIDs(ctx, string(id), q)
		if err != nil {
			return nil, fmt.Errorf("match ids page %d: %w", page, err)
		}
		f.log.Debug().Int("page", page).Int("ids", len(batch)).Msg("match id page")
		if len(batch) == 0 {
			return ids, nil
		}
		for _, m := range batch {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			ids = append(ids, m)
		}
	}
	return ids, fmt.Errorf("%w (%d pages of %d)", ErrPageLimit, f.maxPages, f.pageSize)
}

// Match loads one match record. A response that is an API error, lacks an
// info object or fails to decode yields ErrMalformedMatch. Transport errors
// are returned as-is.
func (f *Fetcher) Match(ctx context.Context, matchID string) (*model.Match, error) {
	if f.cache != nil {
		body, ok, err := f.cache.GetMatch(matchID)
		if err != nil {
			f.log.Warn().Err(err).Str("match", matchID).Msg("cache read failed")
		} else if ok {
			f.log.Debug().Str("match", matchID).Msg("cache hit")
			return decodeMatch(matchID, body)
		}
	}

	body, err := f.api.MatchDetail(ctx, matchID)
	if err != nil {
		var apiErr *riot.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%s: %w: %v", matchID, ErrMalformedMatch, err)
		}
		return nil, fmt.Errorf("fetch match %s: %w", matchID, err)
	}

	m, err := decodeMatch(matchID, body)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		if err := f.cache.PutMatch(matchID, body, f.now()); err != nil {
			f.log.Warn().Err(err).Str("match", matchID).Msg("cache write failed")
		}
	}
	return m, nil
}

func decodeMatch(matchID string, body []byte) (*model.Match, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w: invalid JSON", matchID, ErrMalformedMatch)
	}
	info := gjson.GetBytes(body, "info")
	if !info.IsObject() {
		return nil, fmt.Errorf("%s: %w: no info object", matchID, ErrMalformedMatch)
	}
	if !info.Get("participants").IsArray() {
		return nil, fmt.Errorf("%s: %w: no participants", matchID, ErrMalformedMatch)
	}

	var resp riot.MatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", matchID, ErrMalformedMatch, err)
	}

	m := &model.Match{
		MatchID:         matchID,
		DurationSeconds: resp.Info.GameDuration,
		Participants:    make([]model.Participant, 0, len(resp.Info.Participants)),
	}
	for _, p := range resp.Info.Participants {
		m.Participants = append(m.Participants, model.Participant{
			PlayerID:     model.PlayerID(p.PUUID),
			ChampionName: p.ChampionName,
			Win:          p.Win,
		})
	}
	return m, nil
}
