package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/config"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect and prune the operation journal",
	Long: `Inspect and prune the operation journal.

These commands connect to the journal database configured under journal.*
whether or not journal.enabled is set, so history can still be read after
recording was switched off.`,
}

var (
	journalPrefix string
	journalLimit  int
	journalCursor string
	journalAll    bool
	journalJSON   bool

	pruneBefore    string
	pruneOlderThan time.Duration
)

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded operations, oldest first",
	Long: `List recorded operations, oldest first.

Examples:
  fsgate journal list
  fsgate journal list --prefix docs/ --limit 20
  fsgate journal list --all --json`,
	Args: cobra.NoArgs,
	RunE: runJournalList,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old journal entries",
	Long: `Delete journal entries created before a point in time.

Exactly one of --before (RFC 3339 timestamp) or --older-than (duration)
is required.

Examples:
  fsgate journal prune --older-than 720h
  fsgate journal prune --before 2026-01-01T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: runJournalPrune,
}

func init() {
	journalListCmd.Flags().StringVar(&journalPrefix, "prefix", "", "only show events whose path starts with prefix")
	journalListCmd.Flags().IntVarP(&journalLimit, "limit", "l", 100, "max events per page (max: 1000)")
	journalListCmd.Flags().StringVar(&journalCursor, "cursor", "", "pagination cursor from a previous page")
	journalListCmd.Flags().BoolVar(&journalAll, "all", false, "fetch all pages")
	journalListCmd.Flags().BoolVar(&journalJSON, "json", false, "output as JSON")

	journalPruneCmd.Flags().StringVar(&pruneBefore, "before", "", "delete events created before this RFC 3339 time")
	journalPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "delete events older than this duration")
	journalPruneCmd.MarkFlagsMutuallyExclusive("before", "older-than")
	journalPruneCmd.MarkFlagsOneRequired("before", "older-than")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalPruneCmd)
	rootCmd.AddCommand(journalCmd)
}

func runJournalList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	journal := db.Journal()
	query := fsgate.EventQuery{
		PathPrefix: journalPrefix,
		Limit:      journalLimit,
		Cursor:     journalCursor,
	}

	var page fsgate.EventPage
	for {
		next, err := journal.List(ctx, query)
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		page.Items = append(page.Items, next.Items...)
		page.NextCursor = next.NextCursor

		if !journalAll || next.NextCursor == "" {
			break
		}
		query.Cursor = next.NextCursor
	}

	if journalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	return writeEvents(os.Stdout, page)
}

func writeEvents(w io.Writer, page fsgate.EventPage) error {
	if len(page.Items) == 0 {
		_, err := fmt.Fprintln(w, "No events recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tOPERATION\tPATH\tSIZE")
	for _, e := range page.Items {
		path := e.Path
		if e.Destination != "" {
			path += " -> " + e.Destination
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			e.CreatedAt.UTC().Format(time.RFC3339), e.Operation, path, e.SizeBytes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if page.NextCursor != "" {
		_, err := fmt.Fprintf(w, "\nMore events available. Next cursor: %s\n", page.NextCursor)
		return err
	}
	return nil
}

func runJournalPrune(cmd *cobra.Command, args []string) error {
	before, err := pruneCutoff(time.Now(), pruneBefore, pruneOlderThan)
	if err != nil {
		return err
	}

	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openJournal(ctx, cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	removed, err := db.Journal().Prune(ctx, before)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}

	slog.Info("journal pruned", "before", before.Format(time.RFC3339), "removed", removed)
	return nil
}

// pruneCutoff resolves the --before and --older-than flags to a single
// timestamp.
func pruneCutoff(now time.Time, before string, olderThan time.Duration) (time.Time, error) {
	switch {
	case before != "":
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --before: %w", err)
		}
		return t, nil
	case olderThan > 0:
		return now.Add(-olderThan), nil
	default:
		return time.Time{}, errors.New("prune: --older-than must be positive")
	}
}
