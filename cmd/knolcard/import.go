package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/conorfennell/knolcard/internal/answer"
	"github.com/conorfennell/knolcard/internal/domain"
)

// importEntry is one card in an import document. JSON documents parse too.
type importEntry struct {
	Original   string `yaml:"original"`
	Translated string `yaml:"translated"`
	Tag        string `yaml:"tag"`
}

func newImportCmd(a *app) *cobra.Command {
	var (
		file         string
		collectionID int64
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add many cards at once from a YAML or JSON list",
		Long: "Reads a list of {original, translated, tag} entries from --file or standard input\n" +
			"and saves them in one transaction. Entries that duplicate an existing card, or an\n" +
			"earlier entry, are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if collectionID != 0 {
				if _, err := a.db.GetCollection(ctx, collectionID); err != nil {
					return err
				}
			}

			var r io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			var entries []importEntry
			if err := yaml.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("failed to decode import: %w", err)
			}

			now := a.scheduler.Now()
			seen := make(map[string]bool, len(entries))
			var (
				cards   []domain.Card
				skipped int
			)
			for i, e := range entries {
				tag, err := domain.ParseTag(e.Tag)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i+1, err)
				}
				card, err := domain.NewCard(e.Original, e.Translated, tag, collectionID, now)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i+1, err)
				}
				fp := answer.Fingerprint(card)
				if seen[fp] {
					skipped++
					continue
				}
				seen[fp] = true
				existing, err := a.db.FindCardByFingerprint(ctx, fp)
				if err != nil {
					return err
				}
				if existing != nil {
					skipped++
					continue
				}
				cards = append(cards, card)
			}

			if err := a.db.SaveCards(ctx, cards); err != nil {
				return err
			}
			a.logger.Info("cards imported", "added", len(cards), "skipped", skipped, "collection_id", collectionID)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d card(s), skipped %d duplicate(s)\n", len(cards), skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "File to read instead of standard input")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Collection to add the cards to")
	return cmd
}
