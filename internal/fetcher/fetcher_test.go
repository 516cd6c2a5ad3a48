package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/pable/duoqstats/internal/riot"
)

// pagedAPI serves match id pages of the given sizes, then empty pages.
type pagedAPI struct {
	sizes   []int
	queries []riot.MatchIDsQuery
	details map[string][]byte
	errs    map[string]error
	fetched []string
}

func (p *pagedAPI) MatchIDs(_ context.Context, _ string, q riot.MatchIDsQuery) ([]string, error) {
	p.queries = append(p.queries, q)
	page := len(p.queries) - 1
	if page >= len(p.sizes) {
		return []string{}, nil
	}
	ids := make([]string, p.sizes[page])
	for i := range ids {
		ids[i] = fmt.Sprintf("NA1_%d", q.Start+i)
	}
	return ids, nil
}

func (p *pagedAPI) MatchDetail(_ context.Context, matchID string) ([]byte, error) {
	p.fetched = append(p.fetched, matchID)
	if err, ok := p.errs[matchID]; ok {
		return nil, err
	}
	return p.details[matchID], nil
}

// memCache is an in-memory Cache.
type memCache map[string][]byte

func (c memCache) GetMatch(id string) ([]byte, bool, error) {
	b, ok := c[id]
	return b, ok, nil
}

func (c memCache) PutMatch(id string, body []byte, _ time.Time) error {
	c[id] = body
	return nil
}

const validBody = `{"metadata":{"matchId":"NA1_1"},"info":{"gameDuration":1800,"participants":[
	{"puuid":"me","championName":"Ahri","win":true},
	{"puuid":"bob","championName":"Lux","win":false}]}}`

func TestMatchIDs_PaginatesUntilEmptyPage(t *testing.T) {
	api := &pagedAPI{sizes: []int{20, 20, 7}}
	f := New(api)

	ids, err := f.MatchIDs(context.Background(), "me", 420, 1673308800)
	if err != nil {
		t.Fatalf("MatchIDs: %v", err)
	}
	if len(ids) != 47 {
		t.Errorf("expected 47 ids, got %d", len(ids))
	}
	if len(api.queries) != 4 {
		t.Errorf("expected 4 page requests, got %d", len(api.queries))
	}
	for i, id := range ids {
		if want := fmt.Sprintf("NA1_%d", i); id != want {
			t.Fatalf("ids[%d] = %s, want %s (request order)", i, id, want)
		}
	}
	for i, q := range api.queries {
		if q.Start != i*DefaultPageSize || q.Count != DefaultPageSize || q.Queue != 420 || q.StartTime != 1673308800 {
			t.Errorf("query %d = %+v", i, q)
		}
	}
}

func TestMatchIDs_Deduplicates(t *testing.T) {
	api := &pagedAPI{sizes: []int{3, 3}}
	// Page size 2 makes the second page (start=2) overlap the first (ids 0..2).
	f := New(api, WithPageSize(2))

	ids, err := f.MatchIDs(context.Background(), "me", 420, 0)
	if err != nil {
		t.Fatalf("MatchIDs: %v", err)
	}
	want := []string{"NA1_0", "NA1_1", "NA1_2", "NA1_3", "NA1_4"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestMatchIDs_PageLimit(t *testing.T) {
	api := &pagedAPI{sizes: []int{20, 20, 20, 20}}
	f := New(api, WithMaxPages(2))

	ids, err := f.MatchIDs(context.Background(), "me", 420, 0)
	if !errors.Is(err, ErrPageLimit) {
		t.Fatalf("expected ErrPageLimit, got %v", err)
	}
	if len(ids) != 40 {
		t.Errorf("expected the 40 ids collected so far, got %d", len(ids))
	}
	if len(api.queries) != 2 {
		t.Errorf("expected 2 page requests, got %d", len(api.queries))
	}
}

func TestMatch_Decodes(t *testing.T) {
	api := &pagedAPI{details: map[string][]byte{"NA1_1": []byte(validBody)}}
	m, err := New(api).Match(context.Background(), "NA1_1")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m.DurationSeconds != 1800 || len(m.Participants) != 2 {
		t.Fatalf("unexpected match %+v", m)
	}
	p, ok := m.Find("me")
	if !ok || p.ChampionName != "Ahri" || !p.Win {
		t.Errorf("participant me = %+v, %v", p, ok)
	}
}

func TestMatch_Malformed(t *testing.T) {
	api := &pagedAPI{
		details: map[string][]byte{
			"NA1_noinfo":  []byte(`{"status":{"message":"Rate limit exceeded","status_code":429}}`),
			"NA1_garbage": []byte(`not json`),
			"NA1_nopart":  []byte(`{"info":{"gameDuration":1800}}`),
		},
		errs: map[string]error{
			"NA1_404": &riot.APIError{Path: "/lol/match/v5/matches/NA1_404", Status: http.StatusNotFound},
		},
	}
	f := New(api)
	for _, id := range []string{"NA1_noinfo", "NA1_garbage", "NA1_nopart", "NA1_404"} {
		if _, err := f.Match(context.Background(), id); !errors.Is(err, ErrMalformedMatch) {
			t.Errorf("%s: expected ErrMalformedMatch, got %v", id, err)
		}
	}
}

func TestMatch_TransportErrorIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	api := &pagedAPI{errs: map[string]error{"NA1_1": boom}}
	_, err := New(api).Match(context.Background(), "NA1_1")
	if errors.Is(err, ErrMalformedMatch) {
		t.Fatal("transport error must not be treated as a malformed match")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestMatch_CacheHitSkipsFetch(t *testing.T) {
	api := &pagedAPI{}
	cache := memCache{"NA1_1": []byte(validBody)}
	m, err := New(api, WithCache(cache)).Match(context.Background(), "NA1_1")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(api.fetched) != 0 {
		t.Errorf("expected no remote fetch, got %v", api.fetched)
	}
	if len(m.Participants) != 2 {
		t.Errorf("unexpected match %+v", m)
	}
}

func TestMatch_CachesOnlyWellFormed(t *testing.T) {
	api := &pagedAPI{details: map[string][]byte{
		"NA1_ok":  []byte(validBody),
		"NA1_bad": []byte(`{"status":{}}`),
	}}
	cache := memCache{}
	f := New(api, WithCache(cache))
	f.Match(context.Background(), "NA1_ok")
	f.Match(context.Background(), "NA1_bad")

	if _, ok := cache["NA1_ok"]; !ok {
		t.Error("expected well-formed body to be cached")
	}
	if _, ok := cache["NA1_bad"]; ok {
		t.Error("malformed body must not be cached")
	}
}
