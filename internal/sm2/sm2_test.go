package sm2

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/google/uuid"
)

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func freshCard() domain.Card {
	return domain.Card{
		ID:             uuid.New(),
		OriginalText:   "물",
		TranslatedText: "water",
		Tag:            domain.TagNoun,
		CreatedAt:      baseTime,
		EaseFactor:     domain.DefaultEaseFactor,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordReviewScenario(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()

	steps := []struct {
		correct         bool
		wantReviewCount int
		wantInterval    int
		wantEase        float64
	}{
		{correct: true, wantReviewCount: 1, wantInterval: 1, wantEase: 2.6},
		{correct: true, wantReviewCount: 2, wantInterval: 6, wantEase: 2.7},
		{correct: false, wantReviewCount: 3, wantInterval: 1, wantEase: 2.5},
	}

	now := baseTime
	for i, step := range steps {
		next, err := s.RecordReviewAt(card, step.correct, now)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if next.ReviewCount != step.wantReviewCount {
			t.Errorf("step %d: ReviewCount = %d, want %d", i, next.ReviewCount, step.wantReviewCount)
		}
		if next.Interval != step.wantInterval {
			t.Errorf("step %d: Interval = %d, want %d", i, next.Interval, step.wantInterval)
		}
		if !approx(next.EaseFactor, step.wantEase) {
			t.Errorf("step %d: EaseFactor = %.4f, want %.4f", i, next.EaseFactor, step.wantEase)
		}
		if !next.LastReviewed.Equal(now) {
			t.Errorf("step %d: LastReviewed = %v, want %v", i, next.LastReviewed, now)
		}
		wantNext := now.AddDate(0, 0, step.wantInterval)
		if !next.NextReview.Equal(wantNext) {
			t.Errorf("step %d: NextReview = %v, want %v", i, next.NextReview, wantNext)
		}
		card = next
		now = next.NextReview
	}
}

func TestThirdCorrectReviewIsMultiplicative(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()

	var err error
	for i := 0; i < 2; i++ {
		card, err = s.RecordReviewAt(card, true, baseTime)
		if err != nil {
			t.Fatalf("review %d: %v", i+1, err)
		}
	}
	easeBefore := card.EaseFactor

	card, err = s.RecordReviewAt(card, true, baseTime)
	if err != nil {
		t.Fatalf("third review: %v", err)
	}

	want := int(math.Round(6 * easeBefore))
	if card.Interval != want {
		t.Errorf("Interval = %d, want round(6 * %.2f) = %d", card.Interval, easeBefore, want)
	}
	if card.Interval != 16 {
		t.Errorf("Interval = %d, want 16", card.Interval)
	}
}

func TestRecordReviewDoesNotMutateInput(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	original := card

	if _, err := s.RecordReviewAt(card, true, baseTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card != original {
		t.Errorf("input card was modified: got %+v, want %+v", card, original)
	}
}

func TestIncorrectAlwaysResetsInterval(t *testing.T) {
	s := NewScheduler(nil)
	for _, interval := range []int{0, 1, 6, 16, 42, 365} {
		card := freshCard()
		card.ReviewCount = 5
		card.Interval = interval
		card.NextReview = baseTime

		next, err := s.RecordReviewAt(card, false, baseTime)
		if err != nil {
			t.Fatalf("interval %d: unexpected error: %v", interval, err)
		}
		if next.Interval != 1 {
			t.Errorf("interval %d: got %d after lapse, want 1", interval, next.Interval)
		}
	}
}

func TestEaseFactorFloor(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()

	for i := 0; i < 50; i++ {
		var err error
		card, err = s.RecordReviewAt(card, false, baseTime)
		if err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
		if card.EaseFactor < 1.3 {
			t.Fatalf("review %d: EaseFactor %.4f dropped below 1.3", i, card.EaseFactor)
		}
	}
	if !approx(card.EaseFactor, 1.3) {
		t.Errorf("EaseFactor = %.4f after repeated lapses, want 1.3", card.EaseFactor)
	}

	// A single correct answer from the floor lifts it by the bonus.
	card, _ = s.RecordReviewAt(card, true, baseTime)
	if !approx(card.EaseFactor, 1.4) {
		t.Errorf("EaseFactor = %.4f, want 1.4", card.EaseFactor)
	}
}

func TestEaseFactorHasNoCeiling(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	for i := 0; i < 10; i++ {
		card, _ = s.RecordReviewAt(card, true, baseTime)
	}
	if !approx(card.EaseFactor, 3.5) {
		t.Errorf("EaseFactor = %.4f after 10 correct reviews, want 3.5", card.EaseFactor)
	}
}

func TestRecordReviewInvalidState(t *testing.T) {
	s := NewScheduler(nil)
	testCases := []struct {
		name   string
		mutate func(c *domain.Card)
	}{
		{name: "negative ease factor", mutate: func(c *domain.Card) { c.EaseFactor = -1 }},
		{name: "negative interval", mutate: func(c *domain.Card) { c.Interval = -2 }},
		{name: "negative review count", mutate: func(c *domain.Card) { c.ReviewCount = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := freshCard()
			tc.mutate(&card)
			got, err := s.RecordReviewAt(card, true, baseTime)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState, got %v", err)
			}
			if got != card {
				t.Errorf("card should be returned unchanged on error")
			}
		})
	}
}

func TestLegacyCardWithoutEaseFactor(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	card.EaseFactor = 0

	next, err := s.RecordReviewAt(card, true, baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(next.EaseFactor, 2.6) {
		t.Errorf("EaseFactor = %.4f, want 2.6", next.EaseFactor)
	}
}

func TestRecordReviewUsesClock(t *testing.T) {
	s := NewScheduler(nil).WithClock(func() time.Time { return baseTime })
	next, err := s.RecordReview(freshCard(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.LastReviewed.Equal(baseTime) {
		t.Errorf("LastReviewed = %v, want %v", next.LastReviewed, baseTime)
	}
	if !next.NextReview.Equal(baseTime.AddDate(0, 0, 1)) {
		t.Errorf("NextReview = %v, want one day later", next.NextReview)
	}
}

func TestCustomParams(t *testing.T) {
	params := DefaultParams()
	params.FirstInterval = 2
	params.SecondInterval = 5
	params.EaseBonus = 0.15
	s := NewScheduler(params)

	card, _ := s.RecordReviewAt(freshCard(), true, baseTime)
	if card.Interval != 2 || !approx(card.EaseFactor, 2.65) {
		t.Errorf("first review: interval %d ease %.2f, want 2 and 2.65", card.Interval, card.EaseFactor)
	}
	card, _ = s.RecordReviewAt(card, true, baseTime)
	if card.Interval != 5 {
		t.Errorf("second review: interval %d, want 5", card.Interval)
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params should be valid: %v", err)
	}

	bad := []func(p *Params){
		func(p *Params) { p.MinEaseFactor = 0 },
		func(p *Params) { p.InitialEaseFactor = 1.0 },
		func(p *Params) { p.EasePenalty = -0.1 },
		func(p *Params) { p.FirstInterval = 0 },
		func(p *Params) { p.LapseInterval = -1 },
		func(p *Params) { p.MaxInterval = 5 },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("case %d: expected ErrInvalidParams, got %v", i, err)
		}
	}
}

func TestPostpone(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	card.NextReview = baseTime

	next, err := s.Postpone(card, 3, baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.NextReview.Equal(baseTime.AddDate(0, 0, 3)) {
		t.Errorf("NextReview = %v, want three days later", next.NextReview)
	}

	if _, err := s.Postpone(card, 0, baseTime); !errors.Is(err, ErrInvalidDays) {
		t.Errorf("expected ErrInvalidDays, got %v", err)
	}
}

func TestIntervalCappedAtMax(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	card.ReviewCount = 5
	card.Interval = math.MaxInt64 / 2
	card.NextReview = baseTime

	next, err := s.RecordReviewAt(card, true, baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Interval != 36500 {
		t.Errorf("Interval = %d, want 36500", next.Interval)
	}
	if !next.NextReview.Equal(baseTime.AddDate(0, 0, 36500)) {
		t.Errorf("NextReview = %v, want capped date", next.NextReview)
	}

	// A capped card stays reviewable.
	again, err := s.RecordReviewAt(next, true, next.NextReview)
	if err != nil {
		t.Fatalf("review after cap: %v", err)
	}
	if again.Interval != 36500 {
		t.Errorf("Interval after cap = %d, want 36500", again.Interval)
	}
}

func TestLongCorrectStreakStaysBounded(t *testing.T) {
	s := NewScheduler(nil)
	card := freshCard()
	now := baseTime
	prev := 0
	for i := 0; i < 60; i++ {
		next, err := s.RecordReviewAt(card, true, now)
		if err != nil {
			t.Fatalf("review %d: %v", i+1, err)
		}
		if next.Interval < prev || next.Interval > 36500 {
			t.Fatalf("review %d: interval %d after %d", i+1, next.Interval, prev)
		}
		if next.NextReview.Year() > 9999 {
			t.Fatalf("review %d: next review %v out of range", i+1, next.NextReview)
		}
		prev = next.Interval
		card = next
		now = now.AddDate(0, 0, 1)
	}
	if card.Interval != 36500 {
		t.Errorf("Interval = %d, want cap reached", card.Interval)
	}
}

func TestPostponeCappedAtMax(t *testing.T) {
	s := NewScheduler(nil)
	limit := baseTime.AddDate(0, 0, 36500)

	next, err := s.Postpone(freshCard(), 3000000, baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.NextReview.Equal(limit) {
		t.Errorf("NextReview = %v, want %v", next.NextReview, limit)
	}

	card := freshCard()
	card.NextReview = baseTime.AddDate(0, 0, 36000)
	next, err = s.Postpone(card, 1000, baseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.NextReview.Equal(limit) {
		t.Errorf("NextReview = %v, want %v", next.NextReview, limit)
	}

	if _, err := s.Postpone(freshCard(), math.MaxInt, baseTime); err != nil {
		t.Errorf("huge postpone should clamp, got %v", err)
	}
}
