package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultEaseFactor is the ease factor every new card starts with.
const DefaultEaseFactor = 2.5

var (
	// ErrInvalidCard is returned when a card fails validation.
	ErrInvalidCard = errors.New("invalid card")

	// ErrInvalidTag is returned when a string does not name a known Tag.
	ErrInvalidTag = errors.New("invalid tag")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("storable", storableTime); err != nil {
		panic(err)
	}
	return v
}

// storableTime accepts the zero time and instants whose UTC year has four
// digits, the range the card store can read back.
func storableTime(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	if t.IsZero() {
		return true
	}
	year := t.UTC().Year()
	return year >= 1 && year <= 9999
}

// Tag is the part-of-speech classification of a card.
type Tag string

const (
	TagVerb         Tag = "Verb"
	TagNoun         Tag = "Noun"
	TagAdjective    Tag = "Adjective"
	TagAdverb       Tag = "Adverb"
	TagPronoun      Tag = "Pronoun"
	TagPreposition  Tag = "Preposition"
	TagConjunction  Tag = "Conjunction"
	TagInterjection Tag = "Interjection"
	TagArticle      Tag = "Article"
	TagNumber       Tag = "Number"
	TagPunctuation  Tag = "Punctuation"
	TagOther        Tag = "Other"
)

// Tags lists every valid Tag in display order.
var Tags = []Tag{
	TagVerb, TagNoun, TagAdjective, TagAdverb, TagPronoun, TagPreposition,
	TagConjunction, TagInterjection, TagArticle, TagNumber, TagPunctuation, TagOther,
}

// ParseTag matches s against the known tags, ignoring case.
// An empty string yields TagOther.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TagOther, nil
	}
	for _, t := range Tags {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTag, s)
}

// Card is a single translation flashcard together with its scheduling state.
//
// The scheduling fields (ReviewCount, EaseFactor, Interval, LastReviewed,
// NextReview) are owned by the scheduler. A zero NextReview means the card
// has never been reviewed and is due immediately.
type Card struct {
	ID             uuid.UUID `json:"id" validate:"required"`
	OriginalText   string    `json:"original_text" validate:"required"`
	TranslatedText string    `json:"translated_text" validate:"required"`
	Tag            Tag       `json:"tag" validate:"required,oneof=Verb Noun Adjective Adverb Pronoun Preposition Conjunction Interjection Article Number Punctuation Other"`
	CollectionID   int64     `json:"collection_id,omitempty" validate:"gte=0"`
	CreatedAt      time.Time `json:"created_at" validate:"required,storable"`

	ReviewCount  int       `json:"review_count" validate:"gte=0"`
	EaseFactor   float64   `json:"ease_factor" validate:"gte=0"`
	Interval     int       `json:"interval" validate:"gte=0"`
	LastReviewed time.Time `json:"last_reviewed,omitzero" validate:"storable"`
	NextReview   time.Time `json:"next_review,omitzero" validate:"storable"`
}

// NewCard creates a card with default scheduling state.
// An empty tag defaults to TagOther.
func NewCard(original, translated string, tag Tag, collectionID int64, now time.Time) (Card, error) {
	if tag == "" {
		tag = TagOther
	}
	c := Card{
		ID:             uuid.New(),
		OriginalText:   original,
		TranslatedText: translated,
		Tag:            tag,
		CollectionID:   collectionID,
		CreatedAt:      now.UTC(),
		EaseFactor:     DefaultEaseFactor,
	}
	if err := c.Validate(); err != nil {
		return Card{}, err
	}
	return c, nil
}

// Validate checks the card's fields against their constraints.
func (c Card) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return nil
}

// Edit returns a copy of c with new text and tag. Identity, collection and
// scheduling state are kept. An empty tag keeps the current one.
func (c Card) Edit(original, translated string, tag Tag) (Card, error) {
	next := c
	next.OriginalText = original
	next.TranslatedText = translated
	if tag != "" {
		next.Tag = tag
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// Reviewed reports whether the card has been reviewed at least once.
func (c Card) Reviewed() bool {
	return !c.NextReview.IsZero()
}

// IsDue reports whether the card should be reviewed at now.
func (c Card) IsDue(now time.Time) bool {
	return c.NextReview.IsZero() || !c.NextReview.After(now)
}

// Collection groups cards. Cards only hold a weak reference to it.
type Collection struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the collection's fields against their constraints.
func (c Collection) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid collection: %w", err)
	}
	return nil
}

// ReviewStatus summarises a set of cards for display.
// A zero NextReviewDate means no card is scheduled in the future.
type ReviewStatus struct {
	TotalCards     int       `json:"total_cards"`
	DueCards       int       `json:"due_cards"`
	NextReviewDate time.Time `json:"next_review_date,omitzero"`
}

// ReviewLog records a single review event for a card.
type ReviewLog struct {
	CardID     uuid.UUID
	ReviewedAt time.Time
	Correct    bool
	Interval   int
	EaseFactor float64
}
