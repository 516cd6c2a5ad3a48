package model

// PlayerID is the stable, opaque identifier (Riot PUUID) of a player. It is
// never shown to the user.
type PlayerID string

// MinDurationSeconds is the shortest game that is aggregated. Shorter games
// are remakes or records whose duration was reported in a different unit
// before patch 11.20; both are dropped without correction.
const MinDurationSeconds = 600

// Participant is one player's entry in a match. Win is relative to that
// participant's team.
type Participant struct {
	PlayerID     PlayerID
	ChampionName string
	Win          bool
}

// Match is one completed game.
type Match struct {
	MatchID         string
	DurationSeconds int
	Participants    []Participant
}

// Find returns the participant entry for id, or false if id did not play.
func (m *Match) Find(id PlayerID) (Participant, bool) {
	for _, p := range m.Participants {
		if p.PlayerID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Teams splits the participants by win flag.
func (m *Match) Teams() (winners, losers []Participant) {
	for _, p := range m.Participants {
		if p.Win {
			winners = append(winners, p)
		} else {
			losers = append(losers, p)
		}
	}
	return winners, losers
}

// OutcomeKey indexes the outcome counter.
type OutcomeKey struct {
	PlayerID PlayerID
	Win      bool
}

// OutcomeCounter counts attributed outcomes per (player, win flag). Reads of
// missing keys yield zero.
type OutcomeCounter map[OutcomeKey]int

// Wins returns the number of attributed wins for id.
func (c OutcomeCounter) Wins(id PlayerID) int { return c[OutcomeKey{id, true}] }

// Losses returns the number of attributed losses for id.
func (c OutcomeCounter) Losses(id PlayerID) int { return c[OutcomeKey{id, false}] }

// AppearanceCounter counts the matches in which a player shared the target's
// team and outcome. It remembers the order in which identifiers were first
// seen, which is used to break ranking ties.
type AppearanceCounter struct {
	counts map[PlayerID]int
	order  []PlayerID
}

// NewAppearanceCounter returns an empty counter.
func NewAppearanceCounter() *AppearanceCounter {
	return &AppearanceCounter{counts: make(map[PlayerID]int)}
}

// Inc adds one appearance for id.
func (c *AppearanceCounter) Inc(id PlayerID) {
	if _, ok := c.counts[id]; !ok {
		c.order = append(c.order, id)
	}
	c.counts[id]++
}

// Get returns the appearance count for id, zero if never seen.
func (c *AppearanceCounter) Get(id PlayerID) int { return c.counts[id] }

// Len returns the number of distinct identifiers seen.
func (c *AppearanceCounter) Len() int { return len(c.order) }

// Entry is one (identifier, count) pair.
type Entry struct {
	PlayerID PlayerID
	Count    int
}

// Entries returns every identifier with its count in first-seen order.
func (c *AppearanceCounter) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{PlayerID: id, Count: c.counts[id]})
	}
	return out
}

// ReportRow is one printed line: a label, the games counted for it and the
// win rate in [0,1]. Undefined is set when the rate's denominator was zero.
type ReportRow struct {
	Label     string
	Games     int
	WinRate   float64
	Undefined bool
}
