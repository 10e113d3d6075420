package ops

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/algenova/internal/db"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/solver"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Type   string `json:"type,omitempty" validate:"omitempty,formulatype"`
	Limit  int    `json:"limit,omitempty"`  // default: 20, max: 100
	Offset int    `json:"offset,omitempty"` // default: 0
}

// SolutionSummary is a history entry without steps or verification.
type SolutionSummary struct {
	ID               string        `json:"id"`
	OriginalFormula  string        `json:"original_formula"`
	CanonicalFormula string        `json:"canonical_formula"`
	Type             string        `json:"type"`
	Answer           solver.Answer `json:"answer"`
	IsValid          bool          `json:"is_valid"`
	CreatedAt        int64         `json:"created_at"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []SolutionSummary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List retrieves solution summaries, newest first, with pagination.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	records, total, err := db.List(database, db.ListFilter{Type: input.Type, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	items := make([]SolutionSummary, 0, len(records))
	for _, r := range records {
		s := SolutionSummary{
			ID:               r.ID,
			OriginalFormula:  r.OriginalFormula,
			CanonicalFormula: r.CanonicalFormula,
			Type:             r.Type,
			IsValid:          r.IsValid,
			CreatedAt:        r.CreatedAt,
		}
		if err := json.Unmarshal([]byte(r.AnswerJSON), &s.Answer); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, s)
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
