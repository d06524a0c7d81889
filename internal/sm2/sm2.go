// Package sm2 schedules flashcard reviews with a binary-outcome variant of the
// SuperMemo-2 algorithm.
package sm2

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/conorfennell/knolcard/internal/domain"
)

var (
	// ErrInvalidState is returned when a card's scheduling fields are out of
	// range on entry. The card is left untouched.
	ErrInvalidState = errors.New("invalid scheduling state")

	// ErrInvalidDays is returned when a postpone is requested for less than a day.
	ErrInvalidDays = errors.New("postpone days must be at least 1")

	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid scheduler parameters")
)

// Params holds the tunables of the update rule.
type Params struct {
	InitialEaseFactor float64 `koanf:"initial_ease_factor" validate:"gte=1"`
	MinEaseFactor     float64 `koanf:"min_ease_factor" validate:"gt=0"`
	EaseBonus         float64 `koanf:"ease_bonus" validate:"gte=0"`
	EasePenalty       float64 `koanf:"ease_penalty" validate:"gte=0"`
	FirstInterval     int     `koanf:"first_interval" validate:"gte=1"`
	SecondInterval    int     `koanf:"second_interval" validate:"gte=1"`
	LapseInterval     int     `koanf:"lapse_interval" validate:"gte=1"`
	MaxInterval       int     `koanf:"max_interval" validate:"gte=1"`
}

// DefaultParams returns the classic SM-2 spacing: 1 day, then 6 days, then
// multiplicative growth, with the ease factor floored at 1.3 and intervals
// capped at a hundred years.
func DefaultParams() *Params {
	return &Params{
		InitialEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:     1.3,
		EaseBonus:         0.1,
		EasePenalty:       0.2,
		FirstInterval:     1,
		SecondInterval:    6,
		LapseInterval:     1,
		MaxInterval:       36500,
	}
}

// Validate checks that p describes a usable schedule.
func (p *Params) Validate() error {
	switch {
	case p.MinEaseFactor <= 0:
		return fmt.Errorf("%w: min ease factor %.2f must be positive", ErrInvalidParams, p.MinEaseFactor)
	case p.InitialEaseFactor < p.MinEaseFactor:
		return fmt.Errorf("%w: initial ease factor %.2f below minimum %.2f", ErrInvalidParams, p.InitialEaseFactor, p.MinEaseFactor)
	case p.EaseBonus < 0 || p.EasePenalty < 0:
		return fmt.Errorf("%w: ease adjustments must not be negative", ErrInvalidParams)
	case p.FirstInterval < 1 || p.SecondInterval < 1 || p.LapseInterval < 1:
		return fmt.Errorf("%w: intervals must be at least one day", ErrInvalidParams)
	case p.MaxInterval < max(p.FirstInterval, p.SecondInterval, p.LapseInterval):
		return fmt.Errorf("%w: max interval %d below a fixed interval", ErrInvalidParams, p.MaxInterval)
	}
	return nil
}

// Scheduler applies review outcomes to cards and answers due-date queries.
type Scheduler struct {
	params *Params
	now    func() time.Time
}

// NewScheduler creates a scheduler. A nil params uses DefaultParams.
func NewScheduler(params *Params) *Scheduler {
	if params == nil {
		params = DefaultParams()
	}
	return &Scheduler{params: params, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	c := *s
	c.now = now
	return &c
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Params returns the scheduler's parameters.
func (s *Scheduler) Params() Params {
	return *s.params
}

// RecordReview applies a review outcome at the scheduler's current time.
func (s *Scheduler) RecordReview(card domain.Card, isCorrect bool) (domain.Card, error) {
	return s.RecordReviewAt(card, isCorrect, s.now())
}

// RecordReviewAt applies a review outcome and returns the updated card.
// The input card is not modified.
func (s *Scheduler) RecordReviewAt(card domain.Card, isCorrect bool, now time.Time) (domain.Card, error) {
	if err := checkState(card); err != nil {
		return card, err
	}

	p := s.params
	next := card

	// Records written before scheduling existed carry no ease factor.
	if next.EaseFactor == 0 {
		next.EaseFactor = p.InitialEaseFactor
	}

	next.ReviewCount++
	next.LastReviewed = now

	if isCorrect {
		switch next.ReviewCount {
		case 1:
			next.Interval = p.FirstInterval
		case 2:
			next.Interval = p.SecondInterval
		default:
			next.Interval = p.scale(next.Interval, next.EaseFactor)
		}
		next.EaseFactor += p.EaseBonus
	} else {
		next.Interval = p.LapseInterval
		next.EaseFactor -= p.EasePenalty
	}

	next.EaseFactor = math.Max(p.MinEaseFactor, next.EaseFactor)
	next.Interval = min(next.Interval, p.MaxInterval)
	next.NextReview = now.AddDate(0, 0, next.Interval)

	return next, nil
}

// scale multiplies an interval by the ease factor, saturating at MaxInterval
// before the float is converted back to an int.
func (p *Params) scale(interval int, ease float64) int {
	days := math.Round(float64(interval) * ease)
	if days >= float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return int(days)
}

func checkState(card domain.Card) error {
	switch {
	case card.EaseFactor < 0:
		return fmt.Errorf("%w: card %s has ease factor %.2f", ErrInvalidState, card.ID, card.EaseFactor)
	case card.Interval < 0:
		return fmt.Errorf("%w: card %s has interval %d", ErrInvalidState, card.ID, card.Interval)
	case card.ReviewCount < 0:
		return fmt.Errorf("%w: card %s has review count %d", ErrInvalidState, card.ID, card.ReviewCount)
	}
	return nil
}

// SelectDueCards returns the cards due at now. Never-reviewed cards come
// first in their input order, followed by the rest by NextReview ascending.
// The input slice is not reordered.
func (s *Scheduler) SelectDueCards(cards []domain.Card, now time.Time) []domain.Card {
	return SelectDueCards(cards, now)
}

// SelectDueCards is the scheduler-independent form of Scheduler.SelectDueCards.
func SelectDueCards(cards []domain.Card, now time.Time) []domain.Card {
	due := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	slices.SortStableFunc(due, func(a, b domain.Card) int {
		switch {
		case !a.Reviewed() && !b.Reviewed():
			return 0
		case !a.Reviewed():
			return -1
		case !b.Reviewed():
			return 1
		}
		return a.NextReview.Compare(b.NextReview)
	})
	return due
}

// ComputeReviewStatus counts total and due cards, and finds the earliest
// review scheduled strictly after now.
func ComputeReviewStatus(cards []domain.Card, now time.Time) domain.ReviewStatus {
	status := domain.ReviewStatus{TotalCards: len(cards)}
	for _, c := range cards {
		if c.IsDue(now) {
			status.DueCards++
			continue
		}
		if status.NextReviewDate.IsZero() || c.NextReview.Before(status.NextReviewDate) {
			status.NextReviewDate = c.NextReview
		}
	}
	return status
}

// ComputeReviewStatus is a method form of the package-level ComputeReviewStatus.
func (s *Scheduler) ComputeReviewStatus(cards []domain.Card, now time.Time) domain.ReviewStatus {
	return ComputeReviewStatus(cards, now)
}

// Postpone pushes a card's next review back by days. A card that has never
// been reviewed is postponed from now. The result is never later than
// MaxInterval days after now.
func (s *Scheduler) Postpone(card domain.Card, days int, now time.Time) (domain.Card, error) {
	if days < 1 {
		return card, ErrInvalidDays
	}
	limit := now.AddDate(0, 0, s.params.MaxInterval)
	from := card.NextReview
	if from.IsZero() {
		from = now
	}

	next := card
	next.NextReview = from.AddDate(0, 0, min(days, s.params.MaxInterval))
	if next.NextReview.After(limit) {
		next.NextReview = limit
	}
	return next, nil
}
