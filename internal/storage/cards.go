package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knolcard/internal/answer"
	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/google/uuid"
)

const cardColumns = `id, original_text, translated_text, tag, collection_id, created_at,
	review_count, ease_factor, interval_days, last_reviewed, next_review`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard reads a card row and validates it. Rows that do not form a valid
// card are reported as ErrCorruptRecord rather than returned half-filled.
func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c            domain.Card
		id, tag      string
		collectionID sql.NullInt64
		lastReviewed sql.NullTime
		nextReview   sql.NullTime
	)
	if err := row.Scan(
		&id,
		&c.OriginalText,
		&c.TranslatedText,
		&tag,
		&collectionID,
		&c.CreatedAt,
		&c.ReviewCount,
		&c.EaseFactor,
		&c.Interval,
		&lastReviewed,
		&nextReview,
	); err != nil {
		return domain.Card{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: card id %q: %v", ErrCorruptRecord, id, err)
	}
	c.ID = parsed
	c.Tag = domain.Tag(tag)
	c.CollectionID = collectionID.Int64
	c.CreatedAt = c.CreatedAt.UTC()
	if lastReviewed.Valid {
		c.LastReviewed = lastReviewed.Time.UTC()
	}
	if nextReview.Valid {
		c.NextReview = nextReview.Time.UTC()
	}

	if err := c.Validate(); err != nil {
		return domain.Card{}, fmt.Errorf("%w: card %s: %w", ErrCorruptRecord, id, err)
	}
	return c, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveCard inserts the card or, if a card with the same ID exists, replaces
// its content and scheduling state. CreatedAt is never changed by an update.
func (db *DB) SaveCard(ctx context.Context, card domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	return saveCard(ctx, db.conn, card)
}

// SaveCards saves every card in one transaction. Nothing is written unless
// all cards are valid and every write succeeds.
func (db *DB) SaveCards(ctx context.Context, cards []domain.Card) error {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return err
		}
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, card := range cards {
			if err := saveCard(ctx, tx, card); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveCard(ctx context.Context, ex execer, card domain.Card) error {
	var collectionID sql.NullInt64
	if card.CollectionID != 0 {
		collectionID = sql.NullInt64{Int64: card.CollectionID, Valid: true}
	}
	lastReviewed := sql.NullTime{Time: card.LastReviewed.UTC(), Valid: !card.LastReviewed.IsZero()}
	nextReview := sql.NullTime{Time: card.NextReview.UTC(), Valid: !card.NextReview.IsZero()}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original_text = excluded.original_text,
			translated_text = excluded.translated_text,
			tag = excluded.tag,
			collection_id = excluded.collection_id,
			review_count = excluded.review_count,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review,
			fingerprint = excluded.fingerprint
	`,
		card.ID.String(),
		card.OriginalText,
		card.TranslatedText,
		string(card.Tag),
		collectionID,
		card.CreatedAt.UTC(),
		card.ReviewCount,
		card.EaseFactor,
		card.Interval,
		lastReviewed,
		nextReview,
		answer.Fingerprint(card),
	)
	if err != nil {
		return storageErr("failed to save card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard retrieves a card by its ID.
func (db *DB) GetCard(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id.String())
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		if errors.Is(err, ErrCorruptRecord) {
			return domain.Card{}, err
		}
		return domain.Card{}, storageErr("failed to get card %s: %w", id, err)
	}
	return card, nil
}

// FindCardByFingerprint returns the first card whose content matches the
// fingerprint, or nil if there is none.
func (db *DB) FindCardByFingerprint(ctx context.Context, fingerprint string) (*domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE fingerprint = ? ORDER BY created_at LIMIT 1
	`, fingerprint)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		if errors.Is(err, ErrCorruptRecord) {
			return nil, err
		}
		return nil, storageErr("failed to find card by fingerprint %s: %w", fingerprint, err)
	}
	return &card, nil
}

// GetAllCards retrieves every card, newest first.
func (db *DB) GetAllCards(ctx context.Context) ([]domain.Card, error) {
	return db.GetCardsByCollection(ctx, 0)
}

// GetCardsByCollection retrieves the cards of one collection, newest first.
// A collectionID of 0 returns all cards.
func (db *DB) GetCardsByCollection(ctx context.Context, collectionID int64) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards`
	var args []any
	if collectionID != 0 {
		query += ` WHERE collection_id = ?`
		args = append(args, collectionID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to get cards for collection %d: %w", collectionID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			if errors.Is(err, ErrCorruptRecord) {
				return nil, err
			}
			return nil, storageErr("failed to scan card row: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate card rows: %w", err)
	}
	return cards, nil
}

// DeleteCard removes a card and its review history.
func (db *DB) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_logs WHERE card_id = ?`, id.String()); err != nil {
			return storageErr("failed to delete review logs for card %s: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id.String())
		if err != nil {
			return storageErr("failed to delete card %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storageErr("failed to read rows affected for card %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		return nil
	})
}
