// Package session runs a single review pass over the due cards of a
// collection.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/conorfennell/knolcard/internal/answer"
	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/sm2"
)

// ErrNotActive is returned when an answer is submitted outside the Active state.
var ErrNotActive = errors.New("session is not active")

// CardStore is the persistence the session reads due cards from and writes
// reviewed cards back to.
type CardStore interface {
	GetCardsByCollection(ctx context.Context, collectionID int64) ([]domain.Card, error)
	SaveCard(ctx context.Context, card domain.Card) error
}

// ReviewLogger is implemented by stores that keep a review history.
type ReviewLogger interface {
	LogReview(ctx context.Context, log domain.ReviewLog) error
}

// State is the lifecycle phase of a session.
type State int

const (
	StateLoading  State = iota // Fetching due cards
	StateActive                // Serving cards
	StateFinished              // Every due card was reviewed
	StateEmpty                 // Nothing was due at load time
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	case StateEmpty:
		return "empty"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result describes the outcome of one answered card.
type Result struct {
	Card     domain.Card // the card after scheduling
	Correct  bool
	Expected string
	Finished bool
}

// Summary is the tally shown at the end of a session.
type Summary struct {
	Reviewed int
	Correct  int
	Total    int
}

// Session walks the cards that were due when it was loaded. Answers are
// applied one at a time; each reviewed card is saved before the session
// advances, so abandoning a session never loses a completed review.
type Session struct {
	store     CardStore
	scheduler *sm2.Scheduler
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	cards    []domain.Card
	position int
	correct  int
}

// New creates a session in the Loading state.
func New(store CardStore, scheduler *sm2.Scheduler, logger *slog.Logger) *Session {
	if store == nil {
		panic("store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:     store,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "review_session")),
		state:     StateLoading,
	}
}

// Load fetches the collection's cards and keeps those due at now.
// A collectionID of 0 reviews every card. On a store error the session stays
// in the Loading state and may be loaded again.
func (s *Session) Load(ctx context.Context, collectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLoading
	cards, err := s.store.GetCardsByCollection(ctx, collectionID)
	if err != nil {
		s.logger.Error("failed to load cards", "collection_id", collectionID, "error", err)
		return fmt.Errorf("failed to load cards for collection %d: %w", collectionID, err)
	}

	now := s.scheduler.Now()
	s.cards = s.scheduler.SelectDueCards(cards, now)
	s.position = 0
	s.correct = 0

	if len(s.cards) == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateActive
	}
	s.logger.Info("session loaded",
		"collection_id", collectionID,
		"cards", len(cards),
		"due", len(s.cards),
		"state", s.state.String(),
	)
	return nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the card awaiting an answer. The boolean is false outside
// the Active state.
func (s *Session) Current() (domain.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return domain.Card{}, false
	}
	return s.cards[s.position], true
}

// Position returns the 1-based index of the current card. Once finished it
// equals Total.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		return s.position + 1
	}
	return s.position
}

// Total returns the number of cards due at load time.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Correct returns the number of correct answers so far.
func (s *Session) Correct() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correct
}

// Summary returns the session tally.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{Reviewed: s.position, Correct: s.correct, Total: len(s.cards)}
}

// Submit checks a typed answer against the current card's translation and
// records the outcome.
func (s *Session) Submit(ctx context.Context, given string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return Result{}, ErrNotActive
	}
	expected := s.cards[s.position].TranslatedText
	return s.grade(ctx, answer.Match(expected, given))
}

// Grade records a self-assessed outcome for the current card.
func (s *Session) Grade(ctx context.Context, isCorrect bool) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return Result{}, ErrNotActive
	}
	return s.grade(ctx, isCorrect)
}

// grade must be called with s.mu held and the session active.
func (s *Session) grade(ctx context.Context, isCorrect bool) (Result, error) {
	card := s.cards[s.position]
	log := s.logger.With("card_id", card.ID.String())

	updated, err := s.scheduler.RecordReview(card, isCorrect)
	if err != nil {
		log.Error("failed to schedule review", "error", err)
		return Result{}, fmt.Errorf("failed to schedule card %s: %w", card.ID, err)
	}

	if err := s.store.SaveCard(ctx, updated); err != nil {
		log.Error("failed to save reviewed card", "error", err)
		return Result{}, fmt.Errorf("failed to save card %s: %w", card.ID, err)
	}

	if rl, ok := s.store.(ReviewLogger); ok {
		entry := domain.ReviewLog{
			CardID:     updated.ID,
			ReviewedAt: updated.LastReviewed,
			Correct:    isCorrect,
			Interval:   updated.Interval,
			EaseFactor: updated.EaseFactor,
		}
		// History is best effort; the card is already saved.
		if err := rl.LogReview(ctx, entry); err != nil {
			log.Warn("failed to log review", "error", err)
		}
	}

	s.cards[s.position] = updated
	s.position++
	if isCorrect {
		s.correct++
	}
	if s.position >= len(s.cards) {
		s.state = StateFinished
	}

	log.Debug("card reviewed",
		"correct", isCorrect,
		"interval", updated.Interval,
		"ease_factor", updated.EaseFactor,
		"next_review", updated.NextReview,
	)

	return Result{
		Card:     updated,
		Correct:  isCorrect,
		Expected: card.TranslatedText,
		Finished: s.state == StateFinished,
	}, nil
}
