package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/duoqstats/internal/riot"
)

// Persistent flags shared by every command.
var (
	dbPath      string
	useCache    bool
	verbose     bool
	keyFile     string
	platformURL string
	regionalURL string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "duoqstats",
	Short: "Ranked teammate and solo-queue win rates",
	Long: `Fetch a player's ranked match history from the Riot API, count which
teammates shared their wins and losses, and estimate a solo-queue win rate
with repeated (duo) teammates subtracted out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".duoqstats", "cache.db")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", defaultDB, "path to the SQLite match cache")
	pf.BoolVar(&useCache, "cache", false, "read and store raw match details in the local cache")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.StringVar(&keyFile, "key-file", "apikey.txt", "file holding the Riot API key (RIOT_API_KEY takes precedence)")
	pf.StringVar(&platformURL, "platform", riot.DefaultPlatformURL, "platform routing host for summoner lookups")
	pf.StringVar(&regionalURL, "region", riot.DefaultRegionalURL, "regional routing host for account and match lookups")
	pf.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")

	rootCmd.AddCommand(winrateCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(cacheCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
