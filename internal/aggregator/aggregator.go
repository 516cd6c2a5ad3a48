package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/model"
)

// SkipReason says why a match contributed nothing to the counters.
type SkipReason string

const (
	Counted          SkipReason = ""
	SkipMalformed    SkipReason = "malformed"
	SkipShort        SkipReason = "short"
	SkipChampion     SkipReason = "champion"
	SkipTargetAbsent SkipReason = "target-missing"
)

// Stats counts how each fetched match was handled.
type Stats struct {
	Fetched          int
	Valid            int
	Malformed        int
	Short            int
	ChampionFiltered int
	TargetMissing    int
}

// Skipped returns the number of matches that were not counted.
func (s Stats) Skipped() int {
	return s.Malformed + s.Short + s.ChampionFiltered + s.TargetMissing
}

// Tally accumulates outcome and appearance counts for one target player.
// Counters only ever increase.
type Tally struct {
	Target      model.PlayerID
	Champion    string // optional, compared case-insensitively
	Outcomes    model.OutcomeCounter
	Appearances *model.AppearanceCounter
	Stats       Stats
}

// NewTally returns an empty tally for target. An empty champion disables the
// champion filter.
func NewTally(target model.PlayerID, champion string) *Tally {
	return &Tally{
		Target:      target,
		Champion:    champion,
		Outcomes:    make(model.OutcomeCounter),
		Appearances: model.NewAppearanceCounter(),
	}
}

// Add counts one match. Only the target's own outcome is attributed: every
// participant on the target's side (the target included) gets one
// appearance and one outcome of the target's result. The other side is
// ignored.
func (t *Tally) Add(m *model.Match) SkipReason {
	t.Stats.Fetched++
	if m.DurationSeconds < model.MinDurationSeconds {
		t.Stats.Short++
		return SkipShort
	}
	me, ok := m.Find(t.Target)
	if !ok {
		t.Stats.TargetMissing++
		return SkipTargetAbsent
	}
	if t.Champion != "" && !strings.EqualFold(me.ChampionName, t.Champion) {
		t.Stats.ChampionFiltered++
		return SkipChampion
	}

	iWon := me.Win
	winners, losers := m.Teams()
	side := losers
	if iWon {
		side = winners
	}
	for _, p := range side {
		t.Outcomes[model.OutcomeKey{PlayerID: p.PlayerID, Win: iWon}]++
		t.Appearances.Inc(p.PlayerID)
	}
	t.Stats.Valid++
	return Counted
}

// MarkMalformed records a match whose detail could not be read.
func (t *Tally) MarkMalformed() {
	t.Stats.Fetched++
	t.Stats.Malformed++
}

// MatchSource loads one match record. *fetcher.Fetcher implements it.
type MatchSource interface {
	Match(ctx context.Context, matchID string) (*model.Match, error)
}

// Aggregate loads each match in order and counts it into a new tally.
// Malformed matches are skipped and logged; any other load error aborts.
func Aggregate(ctx context.Context, src MatchSource, target model.PlayerID, matchIDs []string, champion string, log zerolog.Logger) (*Tally, error) {
	t := NewTally(target, champion)
	for i, id := range matchIDs {
		m, err := src.Match(ctx, id)
		if errors.Is(err, fetcher.ErrMalformedMatch) {
			t.MarkMalformed()
			log.Warn().Str("match", id).Str("reason", string(SkipMalformed)).Err(err).Msg("skipping match")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("aggregate match %d/%d: %w", i+1, len(matchIDs), err)
		}

		reason := t.Add(m)
		switch reason {
		case Counted:
			log.Debug().Str("match", id).Int("n", i+1).Int("of", len(matchIDs)).Msg("counted")
		case SkipTargetAbsent:
			log.Warn().Str("match", id).Str("reason", string(reason)).Msg("skipping match: target not among participants")
		default:
			log.Debug().Str("match", id).Str("reason", string(reason)).Msg("skipping match")
		}
	}
	log.Info().Msgf("Found %d valid matches", t.Stats.Valid)
	return t, nil
}
