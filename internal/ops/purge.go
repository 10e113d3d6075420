package ops

import (
	"database/sql"
	"fmt"

	"github.com/hpungsan/algenova/internal/db"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Type          *string `json:"type,omitempty" validate:"omitempty,formulatype"`
	OlderThanDays *int    `json:"older_than_days,omitempty" validate:"omitempty,gte=0"`
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes stored solutions, optionally only those of one
// type or older than a number of days.
func Purge(database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	days, typ := 0, ""
	if input.OlderThanDays != nil {
		days = *input.OlderThanDays
	}
	if input.Type != nil {
		typ = *input.Type
	}

	count, err := db.Purge(database, days, typ)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.Type, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, typ *string, olderThanDays *int) string {
	if count == 0 {
		return "No solutions to purge"
	}

	word := "solution"
	if count > 1 {
		word = "solutions"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)

	if typ != nil {
		msg += fmt.Sprintf(" of type %q", *typ)
	}

	if olderThanDays != nil {
		msg += fmt.Sprintf(" (created more than %d days ago)", *olderThanDays)
	}

	return msg
}
