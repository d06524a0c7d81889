package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conorfennell/knolcard/internal/answer"
	"github.com/conorfennell/knolcard/internal/domain"
)

// ErrDuplicateCard is returned when a card with the same wording exists.
var ErrDuplicateCard = errors.New("card already exists")

const dateLayout = "2006-01-02 15:04"

func newAddCmd(a *app) *cobra.Command {
	var (
		original, translated, tag string
		collectionID              int64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a flashcard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := domain.ParseTag(tag)
			if err != nil {
				return err
			}
			if collectionID != 0 {
				if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
					return err
				}
			}

			card, err := domain.NewCard(original, translated, t, collectionID, a.scheduler.Now())
			if err != nil {
				return err
			}

			existing, err := a.db.FindCardByFingerprint(ctx, answer.Fingerprint(card))
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s (%s)", ErrDuplicateCard, existing.ID, existing.OriginalText)
			}

			if err := a.db.SaveCard(ctx, card); err != nil {
				return err
			}
			a.logger.Info("card added", "card_id", card.ID.String(), "collection_id", collectionID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added card %s\n", card.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&original, "original", "", "Korean text")
	cmd.Flags().StringVar(&translated, "translated", "", "English translation")
	cmd.Flags().StringVar(&tag, "tag", "", "Part of speech ("+tagNames()+")")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Collection id")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("translated")
	return cmd
}

func tagNames() string {
	names := make([]string, len(domain.Tags))
	for i, t := range domain.Tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func newListCmd(a *app) *cobra.Command {
	var collectionID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flashcards, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.db.GetCardsByCollection(cmd.Context(), collectionID)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cards.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKOREAN\tENGLISH\tTAG\tNEXT REVIEW")
			for _, c := range cards {
				next := "new"
				if c.Reviewed() {
					next = c.NextReview.Local().Format(dateLayout)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.OriginalText, c.TranslatedText, c.Tag, next)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only list cards in this collection")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a flashcard and its review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid card id %q: %w", args[0], err)
			}
			if err := a.db.DeleteCard(cmd.Context(), id); err != nil {
				return err
			}
			a.logger.Info("card deleted", "card_id", id.String())
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %s\n", id)
			return nil
		},
	}
}

func newPostponeCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "postpone <card-id>",
		Short: "Push a card's next review back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid card id %q: %w", args[0], err)
			}
			card, err := a.db.GetCard(ctx, id)
			if err != nil {
				return err
			}
			updated, err := a.scheduler.Postpone(card, days, a.scheduler.Now())
			if err != nil {
				return err
			}
			if err := a.db.SaveCard(ctx, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next review %s\n", updated.NextReview.Local().Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 1, "Days to postpone by")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var original, translated, tag string
	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change a card's text or tag; its review schedule is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid card id %q: %w", args[0], err)
			}
			card, err := a.db.GetCard(ctx, id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("original") {
				original = card.OriginalText
			}
			if !flags.Changed("translated") {
				translated = card.TranslatedText
			}
			var t domain.Tag
			if flags.Changed("tag") {
				if t, err = domain.ParseTag(tag); err != nil {
					return err
				}
			}

			edited, err := card.Edit(original, translated, t)
			if err != nil {
				return err
			}
			existing, err := a.db.FindCardByFingerprint(ctx, answer.Fingerprint(edited))
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != edited.ID {
				return fmt.Errorf("%w: %s (%s)", ErrDuplicateCard, existing.ID, existing.OriginalText)
			}

			if err := a.db.SaveCard(ctx, edited); err != nil {
				return err
			}
			a.logger.Info("card edited", "card_id", id.String())
			fmt.Fprintf(cmd.OutOrStdout(), "Updated card %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&original, "original", "", "New Korean text")
	cmd.Flags().StringVar(&translated, "translated", "", "New English translation")
	cmd.Flags().StringVar(&tag, "tag", "", "New part of speech")
	return cmd
}
