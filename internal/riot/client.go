// Package riot provides a minimal client for the Riot Games summoner-v4,
// account-v1 and match-v5 APIs.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultPlatformURL serves summoner-v4 for the NA shard.
	DefaultPlatformURL = "https://na1.api.riotgames.com"
	// DefaultRegionalURL serves account-v1 and match-v5 for the Americas.
	DefaultRegionalURL = "https://americas.api.riotgames.com"

	maxRetries        = 3
	defaultRetryAfter = 10 * time.Second
)

// Client is a minimal Riot API client. It issues one request at a time and
// only retries on HTTP 429.
type Client struct {
	apiKey      string
	platformURL string
	regionalURL string
	http        *http.Client
	sleep       func(context.Context, time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithPlatformURL overrides the platform routing host (summoner-v4).
func WithPlatformURL(u string) Option {
	return func(c *Client) { c.platformURL = u }
}

// WithRegionalURL overrides the regional routing host (account-v1, match-v5).
func WithRegionalURL(u string) Option {
	return func(c *Client) { c.regionalURL = u }
}

// WithBaseURL points both routing hosts at u. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.platformURL = u
		c.regionalURL = u
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient returns a Riot API client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		platformURL: DefaultPlatformURL,
		regionalURL: DefaultRegionalURL,
		http:        &http.Client{Timeout: 30 * time.Second},
		sleep:       sleepCtx,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	snippet := string(e.Body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.Path, e.Status, snippet)
}

// Summoner holds the fields we need from summoner-v4.
type Summoner struct {
	PUUID string `json:"puuid"`
	Name  string `json:"name"`
}

// Account holds the fields we need from account-v1.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// RiotID returns "gameName#tagLine".
func (a *Account) RiotID() string {
	return a.GameName + "#" + a.TagLine
}

// MatchIDsQuery filters the match-id listing.
type MatchIDsQuery struct {
	Queue     int
	StartTime int64 // epoch seconds, 0 for no bound
	Start     int
	Count     int
}

func (q MatchIDsQuery) values() url.Values {
	v := url.Values{}
	if q.Queue != 0 {
		v.Set("queue", strconv.Itoa(q.Queue))
	}
	if q.StartTime != 0 {
		v.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	}
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("count", strconv.Itoa(q.Count))
	return v
}

// MatchResponse mirrors the parts of match-v5 /matches/{id} we read.
type MatchResponse struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info struct {
		GameDuration     int                `json:"gameDuration"`
		GameEndTimestamp int64              `json:"gameEndTimestamp"`
		QueueID          int                `json:"queueId"`
		Participants     []MatchParticipant `json:"participants"`
	} `json:"info"`
}

// MatchParticipant is one entry of info.participants.
type MatchParticipant struct {
	PUUID        string `json:"puuid"`
	ChampionName string `json:"championName"`
	Win          bool   `json:"win"`
}

// fetch performs an authenticated GET against base+path and returns the
// body. Non-2xx responses come back as *APIError.
func (c *Client) fetch(ctx context.Context, base, path string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", path, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("GET %s: read body: %w", path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			if err := c.sleep(ctx, retryAfter(resp.Header.Get("Retry-After"))); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{Path: path, Status: resp.StatusCode, Body: body}
		}
		return body, nil
	}
}

func (c *Client) get(ctx context.Context, base, path string, out interface{}) error {
	body, err := c.fetch(ctx, base, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// SummonerByName looks up a summoner by display name.
func (c *Client) SummonerByName(ctx context.Context, name string) (*Summoner, error) {
	var s Summoner
	if err := c.get(ctx, c.platformURL, "/lol/summoner/v4/summoners/by-name/"+url.PathEscape(name), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SummonerByPUUID looks up a summoner by PUUID.
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	var s Summoner
	if err := c.get(ctx, c.platformURL, "/lol/summoner/v4/summoners/by-puuid/"+url.PathEscape(puuid), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AccountByRiotID looks up an account by gameName and tagLine.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	var a Account
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s", url.PathEscape(gameName), url.PathEscape(tagLine))
	if err := c.get(ctx, c.regionalURL, path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// AccountByPUUID looks up an account by PUUID.
func (c *Client) AccountByPUUID(ctx context.Context, puuid string) (*Account, error) {
	var a Account
	if err := c.get(ctx, c.regionalURL, "/riot/account/v1/accounts/by-puuid/"+url.PathEscape(puuid), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// MatchIDs returns one page of match ids for a player, newest first.
func (c *Client) MatchIDs(ctx context.Context, puuid string, q MatchIDsQuery) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?%s", url.PathEscape(puuid), q.values().Encode())
	var ids []string
	if err := c.get(ctx, c.regionalURL, path, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchDetail returns the raw match-v5 body for matchID. The body is not
// validated; callers decide whether it has the expected shape.
func (c *Client) MatchDetail(ctx context.Context, matchID string) ([]byte, error) {
	return c.fetch(ctx, c.regionalURL, "/lol/match/v5/matches/"+url.PathEscape(matchID))
}

func retryAfter(h string) time.Duration {
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRetryAfter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
