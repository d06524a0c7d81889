package storage

import (
	"context"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/google/uuid"
)

// LogReview appends a review event to the card's history.
func (db *DB) LogReview(ctx context.Context, log domain.ReviewLog) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO review_logs (card_id, reviewed_at, correct, interval_days, ease_factor)
		VALUES (?, ?, ?, ?, ?)
	`,
		log.CardID.String(),
		log.ReviewedAt.UTC(),
		log.Correct,
		log.Interval,
		log.EaseFactor,
	)
	if err != nil {
		return storageErr("failed to log review for card %s: %w", log.CardID, err)
	}
	return nil
}

// GetReviewLogs returns a card's review history, oldest first.
func (db *DB) GetReviewLogs(ctx context.Context, cardID uuid.UUID) ([]domain.ReviewLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT reviewed_at, correct, interval_days, ease_factor
		FROM review_logs WHERE card_id = ?
		ORDER BY reviewed_at, id
	`, cardID.String())
	if err != nil {
		return nil, storageErr("failed to get review logs for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var logs []domain.ReviewLog
	for rows.Next() {
		l := domain.ReviewLog{CardID: cardID}
		if err := rows.Scan(&l.ReviewedAt, &l.Correct, &l.Interval, &l.EaseFactor); err != nil {
			return nil, storageErr("failed to scan review log row for card %s: %w", cardID, err)
		}
		l.ReviewedAt = l.ReviewedAt.UTC()
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate review logs for card %s: %w", cardID, err)
	}
	return logs, nil
}
