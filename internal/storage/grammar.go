package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/google/uuid"
)

const grammarColumns = `id, name, description, summary, collection_id, created_at`

func scanGrammar(row rowScanner) (domain.GrammarConcept, error) {
	var (
		g            domain.GrammarConcept
		id           string
		collectionID sql.NullInt64
	)
	if err := row.Scan(&id, &g.Name, &g.Description, &g.Summary, &collectionID, &g.CreatedAt); err != nil {
		return domain.GrammarConcept{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.GrammarConcept{}, fmt.Errorf("%w: grammar concept id %q: %v", ErrCorruptRecord, id, err)
	}
	g.ID = parsed
	g.CollectionID = collectionID.Int64
	g.CreatedAt = g.CreatedAt.UTC()
	return g, nil
}

// SaveGrammarConcept inserts the concept or replaces the content of an
// existing one with the same ID.
func (db *DB) SaveGrammarConcept(ctx context.Context, g domain.GrammarConcept) error {
	if err := g.Validate(); err != nil {
		return err
	}
	var collectionID sql.NullInt64
	if g.CollectionID != 0 {
		collectionID = sql.NullInt64{Int64: g.CollectionID, Valid: true}
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO grammar_concepts (`+grammarColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			summary = excluded.summary,
			collection_id = excluded.collection_id
	`, g.ID.String(), g.Name, g.Description, g.Summary, collectionID, g.CreatedAt.UTC())
	if err != nil {
		return storageErr("failed to save grammar concept %s: %w", g.ID, err)
	}
	return nil
}

// GetGrammarConcept retrieves a concept by its ID.
func (db *DB) GetGrammarConcept(ctx context.Context, id uuid.UUID) (domain.GrammarConcept, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+grammarColumns+` FROM grammar_concepts WHERE id = ?`, id.String())
	g, err := scanGrammar(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GrammarConcept{}, fmt.Errorf("%w: %s", ErrGrammarNotFound, id)
		}
		if errors.Is(err, ErrCorruptRecord) {
			return domain.GrammarConcept{}, err
		}
		return domain.GrammarConcept{}, storageErr("failed to get grammar concept %s: %w", id, err)
	}
	return g, nil
}

// GetGrammarConcepts lists concepts newest first. A collectionID of 0 lists
// every concept.
func (db *DB) GetGrammarConcepts(ctx context.Context, collectionID int64) ([]domain.GrammarConcept, error) {
	query := `SELECT ` + grammarColumns + ` FROM grammar_concepts`
	var args []any
	if collectionID != 0 {
		query += ` WHERE collection_id = ?`
		args = append(args, collectionID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to get grammar concepts for collection %d: %w", collectionID, err)
	}
	defer rows.Close()

	var concepts []domain.GrammarConcept
	for rows.Next() {
		g, err := scanGrammar(rows)
		if err != nil {
			if errors.Is(err, ErrCorruptRecord) {
				return nil, err
			}
			return nil, storageErr("failed to scan grammar concept row: %w", err)
		}
		concepts = append(concepts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate grammar concept rows: %w", err)
	}
	return concepts, nil
}

// DeleteGrammarConcept removes a concept.
func (db *DB) DeleteGrammarConcept(ctx context.Context, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM grammar_concepts WHERE id = ?`, id.String())
	if err != nil {
		return storageErr("failed to delete grammar concept %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("failed to read rows affected for grammar concept %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGrammarNotFound, id)
	}
	return nil
}
