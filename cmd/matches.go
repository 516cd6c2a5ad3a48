package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/duoqstats/internal/config"
	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/identity"
)

var (
	mSeasonStart string
	mQueue       int
)

var matchesCmd = &cobra.Command{
	Use:   "matches <summoner-name | gameName#tagLine>",
	Short: "List the player's match ids since the season start",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatches,
}

func init() {
	def := config.Default()
	matchesCmd.Flags().StringVar(&mSeasonStart, "season-start", def.SeasonStart.Format(config.DateLayout), "only list matches since this UTC date (YYYY-MM-DD)")
	matchesCmd.Flags().IntVar(&mQueue, "queue", def.QueueID, "queue id to list")
}

func runMatches(cmd *cobra.Command, args []string) error {
	cfg := baseConfig()
	cfg.TargetName = args[0]
	cfg.QueueID = mQueue
	start, err := config.ParseDate(mSeasonStart)
	if err != nil {
		return err
	}
	cfg.SeasonStart = start
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	resolver := identity.NewResolver(s.client, identity.IsRiotID(cfg.TargetName))
	target, err := resolver.Resolve(ctx, cfg.TargetName)
	if err != nil {
		return err
	}
	ids, err := s.fetcher.MatchIDs(ctx, target, cfg.QueueID, cfg.SeasonStartEpoch())
	if errors.Is(err, fetcher.ErrPageLimit) {
		s.log.Warn().Err(err).Msg("match list truncated")
	} else if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	s.log.Info().Int("matches", len(ids)).Msg("done")
	return nil
}
