// Package report ranks teammates by games played together and derives
// per-teammate and duo-corrected solo win rates.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pable/duoqstats/internal/model"
)

// DefaultTopN is the number of teammates listed after the target.
const DefaultTopN = 10

// ErrDivisionUndefined is reported when a win rate has zero games.
var ErrDivisionUndefined = errors.New("win rate undefined: zero games")

// Line is one ranked identifier with its counts.
type Line struct {
	PlayerID  model.PlayerID
	Games     int
	Wins      int
	WinRate   float64
	Undefined bool
}

// Summary is the name-free report. Target is the player's own aggregate,
// Solo is the duo-corrected estimate and Teammates are the ranked others.
type Summary struct {
	Target    Line
	Solo      Line
	Teammates []Line
	DuoWins   int
	DuoGames  int
}

// Rank returns the target followed by the topN other identifiers with the
// most appearances. Ties keep first-seen order.
func Rank(target model.PlayerID, appearances *model.AppearanceCounter, topN int) []model.Entry {
	entries := appearances.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	out := []model.Entry{{PlayerID: target, Count: appearances.Get(target)}}
	for _, e := range entries {
		if len(out) > topN {
			break
		}
		if e.PlayerID == target {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Build computes the report from the two counters.
//
// Every selected teammate seen in more than one game is treated as a duo
// partner and its games are subtracted from the target's to estimate solo
// queue. A partner seen once counts as solo queue (false negative) and a
// stranger matched twice counts as a duo (false positive). Overlapping
// partners are subtracted once each, so solo games can go negative.
func Build(target model.PlayerID, outcomes model.OutcomeCounter, appearances *model.AppearanceCounter, topN int) *Summary {
	ranked := Rank(target, appearances, topN)

	s := &Summary{Target: line(target, outcomes.Wins(target), appearances.Get(target))}
	for _, e := range ranked[1:] {
		wins := outcomes.Wins(e.PlayerID)
		s.Teammates = append(s.Teammates, line(e.PlayerID, wins, e.Count))
		if e.Count > 1 {
			s.DuoWins += wins
			s.DuoGames += e.Count
		}
	}
	s.Solo = line(target, s.Target.Wins-s.DuoWins, s.Target.Games-s.DuoGames)
	return s
}

func line(id model.PlayerID, wins, games int) Line {
	l := Line{PlayerID: id, Games: games, Wins: wins}
	if games == 0 {
		l.Undefined = true
		return l
	}
	l.WinRate = float64(wins) / float64(games)
	return l
}

// Check returns ErrDivisionUndefined if any line has zero games.
func (s *Summary) Check() error {
	if s.Target.Undefined {
		return fmt.Errorf("target: %w", ErrDivisionUndefined)
	}
	if s.Solo.Undefined {
		return fmt.Errorf("solo (%d duo games of %d): %w", s.DuoGames, s.Target.Games, ErrDivisionUndefined)
	}
	for _, l := range s.Teammates {
		if l.Undefined {
			return fmt.Errorf("teammate %s: %w", l.PlayerID, ErrDivisionUndefined)
		}
	}
	return nil
}

// Rows renders the summary as ordered report rows: the target, the solo
// estimate, then teammates. names must hold a display name for every
// teammate; missing names fall back to the identifier.
func (s *Summary) Rows(targetName string, names map[model.PlayerID]string) []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(s.Teammates)+2)
	rows = append(rows, row(targetName, s.Target))
	rows = append(rows, row(targetName+" solo", s.Solo))
	for _, l := range s.Teammates {
		name, ok := names[l.PlayerID]
		if !ok {
			name = string(l.PlayerID)
		}
		rows = append(rows, row(name, l))
	}
	return rows
}

func row(label string, l Line) model.ReportRow {
	return model.ReportRow{Label: label, Games: l.Games, WinRate: l.WinRate, Undefined: l.Undefined}
}

// NameResolver returns a display name for an identifier.
type NameResolver interface {
	DisplayName(ctx context.Context, id model.PlayerID) (string, error)
}

// ResolveNames looks up every teammate's display name, one call each.
func (s *Summary) ResolveNames(ctx context.Context, r NameResolver) (map[model.PlayerID]string, error) {
	names := make(map[model.PlayerID]string, len(s.Teammates))
	for _, l := range s.Teammates {
		name, err := r.DisplayName(ctx, l.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("resolve teammate name: %w", err)
		}
		names[l.PlayerID] = name
	}
	return names, nil
}
