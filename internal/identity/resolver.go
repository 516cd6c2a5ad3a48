// Package identity maps player names to stable identifiers and back.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pable/duoqstats/internal/model"
	"github.com/pable/duoqstats/internal/riot"
)

// ErrNotFound is returned when the remote service has no player for a name or
// identifier.
var ErrNotFound = errors.New("player not found")

// Lookup is the subset of the Riot client used for identity resolution.
type Lookup interface {
	SummonerByName(ctx context.Context, name string) (*riot.Summoner, error)
	SummonerByPUUID(ctx context.Context, puuid string) (*riot.Summoner, error)
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.Account, error)
	AccountByPUUID(ctx context.Context, puuid string) (*riot.Account, error)
}

// Resolver resolves names with one remote call per lookup. Nothing is cached.
type Resolver struct {
	api     Lookup
	riotIDs bool
}

// NewResolver returns a Resolver. When riotIDs is set, display names are
// reported as "gameName#tagLine" from account-v1 instead of summoner names.
func NewResolver(api Lookup, riotIDs bool) *Resolver {
	return &Resolver{api: api, riotIDs: riotIDs}
}

// IsRiotID reports whether name is in "gameName#tagLine" form.
func IsRiotID(name string) bool {
	i := strings.LastIndex(name, "#")
	return i > 0 && i < len(name)-1
}

// Resolve returns the identifier for a summoner name or Riot ID.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.PlayerID, error) {
	var puuid string
	if IsRiotID(name) {
		i := strings.LastIndex(name, "#")
		a, err := r.api.AccountByRiotID(ctx, name[:i], name[i+1:])
		if err != nil {
			return "", wrapLookup(name, err)
		}
		puuid = a.PUUID
	} else {
		s, err := r.api.SummonerByName(ctx, name)
		if err != nil {
			return "", wrapLookup(name, err)
		}
		puuid = s.PUUID
	}
	if puuid == "" {
		return "", fmt.Errorf("resolve %q: %w", name, ErrNotFound)
	}
	return model.PlayerID(puuid), nil
}

// DisplayName returns the current display name for id.
func (r *Resolver) DisplayName(ctx context.Context, id model.PlayerID) (string, error) {
	if r.riotIDs {
		a, err := r.api.AccountByPUUID(ctx, string(id))
		if err != nil {
			return "", wrapLookup(string(id), err)
		}
		return a.RiotID(), nil
	}
	s, err := r.api.SummonerByPUUID(ctx, string(id))
	if err != nil {
		return "", wrapLookup(string(id), err)
	}
	return s.Name, nil
}

func wrapLookup(key string, err error) error {
	var apiErr *riot.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("lookup %q: %w", key, ErrNotFound)
	}
	return fmt.Errorf("lookup %q: %w", key, err)
}
