package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GrammarConcept is a study note about a grammar point, optionally filed
// under a collection. Concepts are not scheduled.
type GrammarConcept struct {
	ID           uuid.UUID `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description"`
	Summary      string    `json:"summary"`
	CollectionID int64     `json:"collection_id,omitempty" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at" validate:"required,storable"`
}

// NewGrammarConcept creates a concept with a fresh ID.
func NewGrammarConcept(name, description, summary string, collectionID int64, now time.Time) (GrammarConcept, error) {
	g := GrammarConcept{
		ID:           uuid.New(),
		Name:         name,
		Description:  description,
		Summary:      summary,
		CollectionID: collectionID,
		CreatedAt:    now.UTC(),
	}
	if err := g.Validate(); err != nil {
		return GrammarConcept{}, err
	}
	return g, nil
}

// Validate checks the concept's fields against their constraints.
func (g GrammarConcept) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid grammar concept: %w", err)
	}
	return nil
}
