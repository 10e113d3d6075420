package ops

import (
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/algenova/internal/db"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/solver"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string `json:"id" validate:"required"`
}

// FetchOutput is a stored solution with its history metadata.
type FetchOutput struct {
	ID            string `json:"id"`
	CreatedAt     int64  `json:"created_at"`
	solver.Result        // embedded (copy, not pointer)
}

// Fetch retrieves a stored solution by ID.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	r, err := db.GetByID(database, input.ID)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{ID: r.ID, CreatedAt: r.CreatedAt}
	if err := json.Unmarshal([]byte(r.ResultJSON), &output.Result); err != nil {
		return nil, errors.NewInternal(err)
	}
	return output, nil
}
