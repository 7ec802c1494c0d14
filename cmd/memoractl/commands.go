package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vytor/memora/internal/db"
	"github.com/vytor/memora/internal/feed"
	"github.com/vytor/memora/internal/memory"
	"github.com/vytor/memora/internal/models"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

func addLearnerFlags(cmd *cobra.Command, learnerID, deckID *int64) {
	cmd.Flags().Int64VarP(learnerID, "learner", "l", 0, "learner id")
	cmd.Flags().Int64VarP(deckID, "deck", "d", 0, "deck id, 0 for the default deck")
	_ = cmd.MarkFlagRequired("learner")
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				versions, err := db.Migrations()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, v := range versions {
					okColor.Fprintf(out, "applied %s\n", v)
				}
				return nil
			})
		},
	}
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		learnerID int64
		deckID    int64
		file      string
		url       string
		timeout   time.Duration
	)

	command := &cobra.Command{
		Use:   "import",
		Short: "Sync glossary entries from a YAML, CSV or JSON export into a deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				glossary *feed.File
				err      error
			)
			if url != "" {
				glossary, err = feed.NewClient(timeout, 3).Fetch(cmd.Context(), url)
				if err != nil {
					return fmt.Errorf("feed.Fetch(%s) > %w", url, err)
				}
			} else {
				glossary, err = feed.Load(file)
				if err != nil {
					return fmt.Errorf("feed.Load(%s) > %w", file, err)
				}
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				// a deck named in the file is used when no id was given
				if deckID == 0 && strings.TrimSpace(glossary.Deck) != "" {
					deck, err := a.decks.CreateDeck(ctx, learnerID, glossary.Deck, a.now())
					if err != nil {
						return err
					}
					deckID = deck.ID
				}
				result, err := a.items.Sync(ctx, learnerID, deckID, glossary.Entries, a.now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				okColor.Fprintf(out, "deck %d: %d created", result.DeckID, result.Created)
				fmt.Fprintf(out, ", %d already present", result.Existing)
				if result.Skipped > 0 {
					warnColor.Fprintf(out, ", %d skipped", result.Skipped)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
	addLearnerFlags(command, &learnerID, &deckID)
	command.Flags().StringVarP(&file, "file", "f", "", "glossary file (.yaml, .yml, .csv, .tsv)")
	command.Flags().StringVar(&url, "url", "", "glossary export URL")
	command.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "HTTP timeout for --url")
	command.MarkFlagsOneRequired("file", "url")
	command.MarkFlagsMutuallyExclusive("file", "url")
	return command
}

func newDecksCommand(opts *rootOptions) *cobra.Command {
	var learnerID int64

	command := &cobra.Command{
		Use:   "decks",
		Short: "List a learner's decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				decks, err := a.decks.ListDecks(ctx, learnerID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(decks) == 0 {
					warnColor.Fprintln(out, "no decks")
					return nil
				}
				headerColor.Fprintf(out, "%-6s %s\n", "ID", "NAME")
				for _, d := range decks {
					fmt.Fprintf(out, "%-6d %s\n", d.ID, d.Name)
				}
				return nil
			})
		},
	}
	command.Flags().Int64VarP(&learnerID, "learner", "l", 0, "learner id")
	_ = command.MarkFlagRequired("learner")
	return command
}

func printSummary(out io.Writer, s *models.ScheduleSummary) {
	headerColor.Fprintf(out, "deck %d\n", s.DeckID)
	fmt.Fprintf(out, "  mode:            %s\n", s.Mode)
	fmt.Fprintf(out, "  new limit:       %d\n", s.NewLimit)
	fmt.Fprintf(out, "  new shown today: %d\n", s.NewShownToday)
	if s.AllowedNewToday == 0 {
		warnColor.Fprintf(out, "  allowed today:   %d\n", s.AllowedNewToday)
	} else {
		okColor.Fprintf(out, "  allowed today:   %d\n", s.AllowedNewToday)
	}
	fmt.Fprintf(out, "  due reviews:     %d\n", s.DueReviewCount)
	fmt.Fprintf(out, "  new available:   %d\n", s.NewAvailableCount)
}

func newStateCommand(opts *rootOptions) *cobra.Command {
	var learnerID, deckID int64

	command := &cobra.Command{
		Use:   "state",
		Short: "Show the daily quota and queue sizes for a deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.scheduler.State(ctx, learnerID, deckID, a.now())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	addLearnerFlags(command, &learnerID, &deckID)
	return command
}

func newSetModeCommand(opts *rootOptions) *cobra.Command {
	var learnerID, deckID int64

	command := &cobra.Command{
		Use:       "set-mode MODE",
		Short:     "Switch the learning mode, resetting the daily new-item limit",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.ModeBeginner), string(models.ModeComfortable), string(models.ModeAggressive)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := strings.ToLower(strings.TrimSpace(args[0]))
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.scheduler.SetMode(ctx, learnerID, deckID, mode, a.now())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	addLearnerFlags(command, &learnerID, &deckID)
	return command
}

func newSetLimitCommand(opts *rootOptions) *cobra.Command {
	var learnerID, deckID int64

	command := &cobra.Command{
		Use:   "set-limit LIMIT",
		Short: "Override the daily new-item limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid limit %q: %w", args[0], err)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.scheduler.SetLimit(ctx, learnerID, deckID, limit, a.now())
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
	addLearnerFlags(command, &learnerID, &deckID)
	return command
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var (
		learnerID int64
		itemID    int64
		limit     int
	)

	command := &cobra.Command{
		Use:   "history",
		Short: "Show the review log of an item, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				entries, err := a.scheduler.ReviewHistory(ctx, learnerID, itemID, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					warnColor.Fprintln(out, "no reviews")
					return nil
				}
				headerColor.Fprintf(out, "%-20s %-6s %-8s %-8s %s\n", "REVIEWED", "RATING", "BEFORE", "AFTER", "MASTERY")
				for _, e := range entries {
					line := fmt.Sprintf("%-20s %-6d %-8d %-8d %.3f\n",
						e.ReviewedAt.UTC().Format("2006-01-02 15:04:05"), e.Rating, e.IntervalBefore, e.IntervalAfter, e.PredictedMastery)
					if memory.Recalled(e.Rating) {
						okColor.Fprint(out, line)
					} else {
						warnColor.Fprint(out, line)
					}
				}
				return nil
			})
		},
	}
	command.Flags().Int64VarP(&learnerID, "learner", "l", 0, "learner id")
	command.Flags().Int64VarP(&itemID, "item", "i", 0, "item id")
	command.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries, 0 for all")
	_ = command.MarkFlagRequired("learner")
	_ = command.MarkFlagRequired("item")
	return command
}
