package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/logging"
	"github.com/pable/duoqstats/internal/model"
)

const me model.PlayerID = "me"

// makeMatch builds a 10-player match. allies play on the target's side and
// share the target's result; the enemy side is filled with unique ids.
func makeMatch(id string, iWon bool, champion string, allies ...model.PlayerID) *model.Match {
	m := &model.Match{MatchID: id, DurationSeconds: 1800}
	m.Participants = append(m.Participants, model.Participant{PlayerID: me, ChampionName: champion, Win: iWon})
	for i := 0; i < 4; i++ {
		pid := model.PlayerID(fmt.Sprintf("%s-ally%d", id, i))
		if i < len(allies) {
			pid = allies[i]
		}
		m.Participants = append(m.Participants, model.Participant{PlayerID: pid, ChampionName: "Lux", Win: iWon})
	}
	for i := 0; i < 5; i++ {
		pid := model.PlayerID(fmt.Sprintf("%s-enemy%d", id, i))
		m.Participants = append(m.Participants, model.Participant{PlayerID: pid, ChampionName: "Zed", Win: !iWon})
	}
	return m
}

// sliceSource serves matches by id; ids listed in malformed return ErrMalformedMatch.
type sliceSource struct {
	matches   map[string]*model.Match
	malformed map[string]bool
	fail      map[string]error
}

func (s *sliceSource) Match(_ context.Context, id string) (*model.Match, error) {
	if s.malformed[id] {
		return nil, fmt.Errorf("%s: %w", id, fetcher.ErrMalformedMatch)
	}
	if err, ok := s.fail[id]; ok {
		return nil, err
	}
	return s.matches[id], nil
}

func TestAdd_OnlyTargetSideCounted(t *testing.T) {
	tally := NewTally(me, "")
	m := makeMatch("m1", true, "Ahri", "duo")

	if r := tally.Add(m); r != Counted {
		t.Fatalf("expected match counted, got %q", r)
	}
	winners, losers := m.Teams()
	for _, p := range winners {
		if tally.Appearances.Get(p.PlayerID) != 1 {
			t.Errorf("winner %s: appearances = %d, want 1", p.PlayerID, tally.Appearances.Get(p.PlayerID))
		}
		if tally.Outcomes.Wins(p.PlayerID) != 1 {
			t.Errorf("winner %s: wins = %d, want 1", p.PlayerID, tally.Outcomes.Wins(p.PlayerID))
		}
	}
	for _, p := range losers {
		if tally.Appearances.Get(p.PlayerID) != 0 || tally.Outcomes.Losses(p.PlayerID) != 0 {
			t.Errorf("enemy %s must not be counted", p.PlayerID)
		}
	}
	if tally.Appearances.Len() != 5 {
		t.Errorf("expected 5 identifiers counted, got %d", tally.Appearances.Len())
	}
}

func TestAdd_LossAttributedToLosingSide(t *testing.T) {
	tally := NewTally(me, "")
	tally.Add(makeMatch("m1", false, "Ahri", "duo"))

	if tally.Outcomes.Losses("duo") != 1 || tally.Outcomes.Wins("duo") != 0 {
		t.Errorf("duo: wins=%d losses=%d", tally.Outcomes.Wins("duo"), tally.Outcomes.Losses("duo"))
	}
	if tally.Appearances.Get("m1-enemy0") != 0 {
		t.Error("winning enemy must not be counted when the target lost")
	}
}

func TestAdd_TargetInvariant(t *testing.T) {
	tally := NewTally(me, "")
	results := []bool{true, false, true, true, false, false, true}
	prev := 0
	for i, won := range results {
		tally.Add(makeMatch(fmt.Sprintf("m%d", i), won, "Ahri", "duo"))
		if got := tally.Appearances.Get("duo"); got < prev {
			t.Fatalf("appearance count decreased: %d -> %d", prev, got)
		} else {
			prev = got
		}
	}

	wins, losses := tally.Outcomes.Wins(me), tally.Outcomes.Losses(me)
	if wins+losses != tally.Appearances.Get(me) {
		t.Errorf("wins+losses = %d, appearances = %d", wins+losses, tally.Appearances.Get(me))
	}
	if tally.Appearances.Get(me) != tally.Stats.Valid || tally.Stats.Valid != len(results) {
		t.Errorf("appearances = %d, valid = %d, want %d", tally.Appearances.Get(me), tally.Stats.Valid, len(results))
	}
	if wins != 4 {
		t.Errorf("wins = %d, want 4", wins)
	}
}

func TestAdd_ShortGameSkipped(t *testing.T) {
	tally := NewTally(me, "")
	m := makeMatch("m1", true, "Ahri")
	m.DurationSeconds = 599

	if r := tally.Add(m); r != SkipShort {
		t.Fatalf("expected SkipShort, got %q", r)
	}
	if tally.Appearances.Len() != 0 || tally.Stats.Short != 1 || tally.Stats.Valid != 0 {
		t.Errorf("short game must not be counted: %+v", tally.Stats)
	}

	m.DurationSeconds = 600
	if r := tally.Add(m); r != Counted {
		t.Errorf("600s game should count, got %q", r)
	}
}

func TestAdd_ChampionFilter(t *testing.T) {
	tally := NewTally(me, "fiddlesticks")

	if r := tally.Add(makeMatch("m1", true, "Ahri", "duo")); r != SkipChampion {
		t.Fatalf("expected SkipChampion, got %q", r)
	}
	if tally.Appearances.Get(me) != 0 || tally.Appearances.Get("duo") != 0 || len(tally.Outcomes) != 0 {
		t.Error("filtered match must not increment any counter, including the target's")
	}

	if r := tally.Add(makeMatch("m2", true, "FiddleSticks", "duo")); r != Counted {
		t.Fatalf("champion match is case-insensitive, got %q", r)
	}
	if tally.Appearances.Get(me) != 1 || tally.Stats.ChampionFiltered != 1 {
		t.Errorf("unexpected tally: me=%d stats=%+v", tally.Appearances.Get(me), tally.Stats)
	}
}

func TestAdd_TargetAbsent(t *testing.T) {
	tally := NewTally("someone-else", "")
	if r := tally.Add(makeMatch("m1", true, "Ahri")); r != SkipTargetAbsent {
		t.Fatalf("expected SkipTargetAbsent, got %q", r)
	}
	if tally.Appearances.Len() != 0 || tally.Stats.TargetMissing != 1 {
		t.Errorf("unexpected tally: %+v", tally.Stats)
	}
}

func TestAggregate_SkipsMalformedAndContinues(t *testing.T) {
	src := &sliceSource{
		matches: map[string]*model.Match{
			"m1": makeMatch("m1", true, "Ahri", "duo"),
			"m3": makeMatch("m3", false, "Ahri", "duo"),
		},
		malformed: map[string]bool{"m2": true},
	}
	tally, err := Aggregate(context.Background(), src, me, []string{"m1", "m2", "m3"}, "", logging.Nop())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if tally.Stats.Fetched != 3 || tally.Stats.Valid != 2 || tally.Stats.Malformed != 1 {
		t.Errorf("stats = %+v", tally.Stats)
	}
	if tally.Stats.Skipped() != 1 {
		t.Errorf("skipped = %d", tally.Stats.Skipped())
	}
	if tally.Appearances.Get("duo") != 2 {
		t.Errorf("duo appearances = %d", tally.Appearances.Get("duo"))
	}
}

func TestAggregate_OtherErrorsAbort(t *testing.T) {
	boom := errors.New("dial tcp: timeout")
	src := &sliceSource{fail: map[string]error{"m1": boom}}
	_, err := Aggregate(context.Background(), src, me, []string{"m1"}, "", logging.Nop())
	if !errors.Is(err, boom) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestAppearanceCounter_FirstSeenOrder(t *testing.T) {
	tally := NewTally(me, "")
	tally.Add(makeMatch("m1", true, "Ahri", "a", "b"))
	tally.Add(makeMatch("m2", true, "Ahri", "b", "c"))

	entries := tally.Appearances.Entries()
	want := []model.PlayerID{me, "a", "b"}
	for i, id := range want {
		if entries[i].PlayerID != id {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].PlayerID, id)
		}
	}
	if entries[2].Count != 2 {
		t.Errorf("b count = %d, want 2", entries[2].Count)
	}
}
