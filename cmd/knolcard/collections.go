package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCollectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection"},
		Short:   "Manage card collections",
	}
	cmd.AddCommand(
		newCollectionsAddCmd(a),
		newCollectionsListCmd(a),
		newCollectionsDeleteCmd(a),
	)
	return cmd
}

func newCollectionsAddCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.db.InsertCollection(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			a.logger.Info("collection added", "collection_id", id)
			fmt.Fprintf(cmd.OutOrStdout(), "Added collection %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	return cmd
}

func newCollectionsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := a.db.GetAllCollections(cmd.Context())
			if err != nil {
				return err
			}
			if len(collections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No collections.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, c := range collections {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
			}
			return w.Flush()
		},
	}
}

func newCollectionsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection-id>",
		Short: "Delete a collection; its cards are kept without a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid collection id %q: %w", args[0], err)
			}
			if err := a.db.DeleteCollection(cmd.Context(), id); err != nil {
				return err
			}
			a.logger.Info("collection deleted", "collection_id", id)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %d\n", id)
			return nil
		},
	}
}
