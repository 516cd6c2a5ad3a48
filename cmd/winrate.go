package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/duoqstats/internal/aggregator"
	"github.com/pable/duoqstats/internal/config"
	"github.com/pable/duoqstats/internal/fetcher"
	"github.com/pable/duoqstats/internal/identity"
	"github.com/pable/duoqstats/internal/report"
)

// winrate command flags.
var (
	wrSeasonStart string
	wrQueue       int
	wrChampion    string
	wrTop         int
	wrPageSize    int
	wrMaxPages    int
	wrStrict      bool
	wrFormat      string
)

var cWarn = color.New(color.FgYellow)

// winrateCmd is the cobra command that runs the full teammate report.
var winrateCmd = &cobra.Command{
	Use:   "winrate <summoner-name | gameName#tagLine>",
	Short: "Teammate win rates and duo-corrected solo win rate",
	Long: `Pages through every ranked match since the season start, counts the
teammates who shared each of the player's wins and losses, and prints:

  <player>        games  win-rate
  <player> solo   games  win-rate   (duo partners subtracted)
  <teammate>      games  win-rate   (most frequent first)

A teammate seen in more than one game is treated as a duo partner. One-off
duos are missed, and strangers matched twice are counted as duos.

Examples:
  duoqstats winrate muakasan
  duoqstats winrate "Faker#KR1" --champion ahri --top 5 --format table`,
	Args: cobra.ExactArgs(1),
	RunE: runWinrate,
}

func init() {
	def := config.Default()
	f := winrateCmd.Flags()
	f.StringVar(&wrSeasonStart, "season-start", def.SeasonStart.Format(config.DateLayout), "only count matches since this UTC date (YYYY-MM-DD)")
	f.IntVar(&wrQueue, "queue", def.QueueID, "queue id to fetch (420 = ranked solo/duo)")
	f.StringVar(&wrChampion, "champion", "", "only count matches where the player picked this champion")
	f.IntVar(&wrTop, "top", def.TopN, "number of teammates to list")
	f.IntVar(&wrPageSize, "page-size", def.PageSize, "match ids requested per page")
	f.IntVar(&wrMaxPages, "max-pages", def.MaxPages, "stop paginating after this many pages")
	f.BoolVar(&wrStrict, "strict", false, "fail when a win rate has zero games instead of printing n/a")
	f.StringVar(&wrFormat, "format", "plain", "output format: plain or table")
}

func winrateConfig(name string) (config.Config, error) {
	cfg := baseConfig()
	cfg.TargetName = name
	cfg.QueueID = wrQueue
	cfg.Champion = wrChampion
	cfg.TopN = wrTop
	cfg.PageSize = wrPageSize
	cfg.MaxPages = wrMaxPages
	cfg.Strict = wrStrict
	start, err := config.ParseDate(wrSeasonStart)
	if err != nil {
		return cfg, err
	}
	cfg.SeasonStart = start
	return cfg, cfg.Validate()
}

func runWinrate(cmd *cobra.Command, args []string) error {
	if wrFormat != "plain" && wrFormat != "table" {
		return fmt.Errorf("unknown format %q (want plain or table)", wrFormat)
	}
	cfg, err := winrateConfig(args[0])
	if err != nil {
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

	s.log.Debug().Int64("since", cfg.SeasonStartEpoch()).Int("queue", cfg.QueueID).Msg("listing matches")
	ids, err := s.fetcher.MatchIDs(ctx, target, cfg.QueueID, cfg.SeasonStartEpoch())
	if errors.Is(err, fetcher.ErrPageLimit) {
		s.log.Warn().Err(err).Int("ids", len(ids)).Msg("continuing with partial match list")
	} else if err != nil {
		return err
	}
	s.log.Info().Int("matches", len(ids)).Msg("match ids fetched")

	tally, err := aggregator.Aggregate(ctx, s.fetcher, target, ids, cfg.Champion, s.log)
	if err != nil {
		return err
	}
	st := tally.Stats
	s.log.Info().
		Int("valid", st.Valid).
		Int("malformed", st.Malformed).
		Int("short", st.Short).
		Int("champion", st.ChampionFiltered).
		Int("target_missing", st.TargetMissing).
		Msg("aggregation done")

	summary := report.Build(target, tally.Outcomes, tally.Appearances, cfg.TopN)
	if err := summary.Check(); err != nil {
		if cfg.Strict {
			return err
		}
		cWarn.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	targetName, err := resolver.DisplayName(ctx, target)
	if err != nil {
		return err
	}
	names, err := summary.ResolveNames(ctx, resolver)
	if err != nil {
		return err
	}
	rows := summary.Rows(targetName, names)

	if wrFormat == "table" {
		report.PrintTable(cmd.OutOrStdout(), rows)
	} else {
		report.PrintPlain(cmd.OutOrStdout(), rows)
	}
	return nil
}
