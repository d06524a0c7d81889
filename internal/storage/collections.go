package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/knolcard/internal/domain"
)

// InsertCollection stores a new collection and returns its ID.
func (db *DB) InsertCollection(ctx context.Context, name, description string) (int64, error) {
	col := domain.Collection{Name: name, Description: description, CreatedAt: time.Now().UTC()}
	if err := col.Validate(); err != nil {
		return 0, err
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO collections (name, description, created_at)
		VALUES (?, ?, ?)
	`, col.Name, col.Description, col.CreatedAt)
	if err != nil {
		return 0, storageErr("failed to insert collection %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("failed to get last insert ID for collection %s: %w", name, err)
	}
	return id, nil
}

// GetCollection retrieves a collection by its ID.
func (db *DB) GetCollection(ctx context.Context, id int64) (domain.Collection, error) {
	var c domain.Collection
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM collections WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, fmt.Errorf("%w: %d", ErrCollectionNotFound, id)
		}
		return domain.Collection{}, storageErr("failed to get collection %d: %w", id, err)
	}
	return c, nil
}

// GetAllCollections retrieves all collections, newest first.
func (db *DB) GetAllCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM collections
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, storageErr("failed to get all collections: %w", err)
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, storageErr("failed to scan collection row: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate collection rows: %w", err)
	}
	return collections, nil
}

// DeleteCollection removes a collection. Its cards and grammar concepts are
// kept and lose their collection reference.
func (db *DB) DeleteCollection(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE cards SET collection_id = NULL WHERE collection_id = ?
		`, id); err != nil {
			return storageErr("failed to detach cards from collection %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE grammar_concepts SET collection_id = NULL WHERE collection_id = ?
		`, id); err != nil {
			return storageErr("failed to detach grammar concepts from collection %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
		if err != nil {
			return storageErr("failed to delete collection %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storageErr("failed to read rows affected for collection %d: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrCollectionNotFound, id)
		}
		return nil
	})
}
