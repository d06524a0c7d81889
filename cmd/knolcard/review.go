package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/session"
	"github.com/conorfennell/knolcard/internal/sm2"
)

func newStatusCmd(a *app) *cobra.Command {
	var collectionID int64
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many cards are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if collectionID != 0 {
				if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
					return err
				}
			}
			cards, err := a.db.GetCardsByCollection(ctx, collectionID)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), sm2.ComputeReviewStatus(cards, a.scheduler.Now()))
			return nil
		},
	}
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only count cards in this collection")
	return cmd
}

func printStatus(w io.Writer, status domain.ReviewStatus) {
	fmt.Fprintf(w, "Total cards: %d\n", status.TotalCards)
	fmt.Fprintf(w, "Due now: %d\n", status.DueCards)
	if status.NextReviewDate.IsZero() {
		fmt.Fprintln(w, "Next review: none scheduled")
		return
	}
	fmt.Fprintf(w, "Next review: %s\n", status.NextReviewDate.Local().Format(dateLayout))
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		collectionID int64
		selfGrade    bool
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the cards that are due",
		Long: "Shows each due card's Korean side and reads the English answer from standard input.\n" +
			"With --self-grade the answer is revealed and you mark it right (y) or wrong (n).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if collectionID != 0 {
				if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
					return err
				}
			}

			s := session.New(a.db, a.scheduler, a.logger)
			if err := s.Load(ctx, collectionID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if s.State() == session.StateEmpty {
				fmt.Fprintln(out, "No cards due for review.")
				cards, err := a.db.GetCardsByCollection(ctx, collectionID)
				if err != nil {
					return err
				}
				printStatus(out, sm2.ComputeReviewStatus(cards, a.scheduler.Now()))
				return nil
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			for s.State() == session.StateActive {
				card, _ := s.Current()
				fmt.Fprintf(out, "[%d/%d] %s (%s)\n", s.Position(), s.Total(), card.OriginalText, card.Tag)

				var (
					res session.Result
					err error
				)
				if selfGrade {
					fmt.Fprint(out, "Press Enter to reveal> ")
					if !in.Scan() {
						break
					}
					fmt.Fprintf(out, "Answer: %s\nCorrect? [y/n]> ", card.TranslatedText)
					if !in.Scan() {
						break
					}
					res, err = s.Grade(ctx, isYes(in.Text()))
				} else {
					fmt.Fprint(out, "> ")
					if !in.Scan() {
						break
					}
					res, err = s.Submit(ctx, in.Text())
				}
				if err != nil {
					return err
				}

				if res.Correct {
					fmt.Fprintf(out, "Correct! Next review in %d day(s).\n", res.Card.Interval)
				} else {
					fmt.Fprintf(out, "Incorrect. The answer is %q.\n", res.Expected)
				}
			}
			if err := in.Err(); err != nil {
				return fmt.Errorf("failed to read answer: %w", err)
			}

			sum := s.Summary()
			if s.State() == session.StateFinished {
				fmt.Fprintf(out, "Finished! %d out of %d correct.\n", sum.Correct, sum.Total)
			} else {
				fmt.Fprintf(out, "Stopped after %d of %d cards, %d correct.\n", sum.Reviewed, sum.Total, sum.Correct)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only review cards in this collection")
	cmd.Flags().BoolVar(&selfGrade, "self-grade", false, "Reveal the answer and grade yourself")
	return cmd
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
