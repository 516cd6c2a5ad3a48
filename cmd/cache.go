package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var cHeader = color.New(color.FgCyan, color.Bold)

// cacheCmd groups the match cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or delete the local match cache",
	Long: `Match details fetched with --cache are stored compressed in a local
SQLite file (see --db). Only raw match bodies are kept; reports are always
recomputed.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached matches",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var dropForce bool

// cacheDropCmd deletes the cache database file.
var cacheDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the match cache",
	Long:  "Permanently delete the SQLite match cache. Matches are fetched again on the next --cache run.",
	Args:  cobra.NoArgs,
	RunE:  runCacheDrop,
}

func init() {
	cacheDropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	cacheCmd.AddCommand(cacheListCmd, cacheStatsCmd, cacheDropCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	db, err := openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches cached yet. Run 'duoqstats winrate <name> --cache' to fill it.")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("MATCH", "FETCHED", "RAW", "STORED")
	for _, m := range matches {
		table.Append(
			m.MatchID,
			m.FetchedAt.Format("2006-01-02 15:04"),
			strconv.Itoa(m.RawSize),
			strconv.Itoa(m.StoredSize),
		)
	}
	table.Render()
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	db, err := openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.Stats()
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	ratio := 0.0
	if s.StoredBytes > 0 {
		ratio = float64(s.RawBytes) / float64(s.StoredBytes)
	}
	cHeader.Fprintf(os.Stdout, "\n=== Match Cache ===\n\n")
	fmt.Fprintf(os.Stdout, "  Path          : %s\n", dbPath)
	fmt.Fprintf(os.Stdout, "  Matches       : %d\n", s.Matches)
	fmt.Fprintf(os.Stdout, "  Raw bytes     : %d\n", s.RawBytes)
	fmt.Fprintf(os.Stdout, "  Stored bytes  : %d\n", s.StoredBytes)
	fmt.Fprintf(os.Stdout, "  Compression   : %.1fx\n", ratio)
	return nil
}

func runCacheDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Cache does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove cache: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
