package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conorfennell/knolcard/internal/domain"
)

func newGrammarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Manage grammar notes",
	}
	cmd.AddCommand(
		newGrammarAddCmd(a),
		newGrammarListCmd(a),
		newGrammarShowCmd(a),
		newGrammarEditCmd(a),
		newGrammarDeleteCmd(a),
	)
	return cmd
}

func newGrammarAddCmd(a *app) *cobra.Command {
	var (
		description, summary string
		collectionID         int64
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a grammar note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if collectionID != 0 {
				if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
					return err
				}
			}
			g, err := domain.NewGrammarConcept(args[0], description, summary, collectionID, a.scheduler.Now())
			if err != nil {
				return err
			}
			if err := a.db.SaveGrammarConcept(ctx, g); err != nil {
				return err
			}
			a.logger.Info("grammar concept added", "grammar_id", g.ID.String())
			fmt.Fprintf(cmd.OutOrStdout(), "Added grammar note %s\n", g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Explanation")
	cmd.Flags().StringVar(&summary, "summary", "", "One-line summary")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Collection id")
	return cmd
}

func newGrammarListCmd(a *app) *cobra.Command {
	var collectionID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List grammar notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			concepts, err := a.db.GetGrammarConcepts(cmd.Context(), collectionID)
			if err != nil {
				return err
			}
			if len(concepts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No grammar notes.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSUMMARY")
			for _, g := range concepts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", g.ID, g.Name, g.Summary)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only list notes in this collection")
	return cmd
}

func newGrammarShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <grammar-id>",
		Short: "Print a grammar note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := getGrammar(cmd, a, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, g.Name)
			if g.Summary != "" {
				fmt.Fprintln(out, g.Summary)
			}
			if g.Description != "" {
				fmt.Fprintf(out, "\n%s\n", g.Description)
			}
			return nil
		},
	}
}

func newGrammarEditCmd(a *app) *cobra.Command {
	var (
		name, description, summary string
		collectionID               int64
	)
	cmd := &cobra.Command{
		Use:   "edit <grammar-id>",
		Short: "Change a grammar note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := getGrammar(cmd, a, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				g.Name = name
			}
			if flags.Changed("description") {
				g.Description = description
			}
			if flags.Changed("summary") {
				g.Summary = summary
			}
			if flags.Changed("collection") {
				if collectionID != 0 {
					if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
						return err
					}
				}
				g.CollectionID = collectionID
			}
			if err := a.db.SaveGrammarConcept(ctx, g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated grammar note %s\n", g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New explanation")
	cmd.Flags().StringVar(&summary, "summary", "", "New summary")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Move to this collection (0 for none)")
	return cmd
}

func newGrammarDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <grammar-id>",
		Short: "Delete a grammar note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid grammar id %q: %w", args[0], err)
			}
			if err := a.db.DeleteGrammarConcept(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted grammar note %s\n", id)
			return nil
		},
	}
}

func getGrammar(cmd *cobra.Command, a *app, arg string) (domain.GrammarConcept, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return domain.GrammarConcept{}, fmt.Errorf("invalid grammar id %q: %w", arg, err)
	}
	return a.db.GetGrammarConcept(cmd.Context(), id)
}
