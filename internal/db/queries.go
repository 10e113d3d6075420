package db

import (
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hpungsan/algenova/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.NovaError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// Record is one stored solution. AnswerJSON and ResultJSON hold the encoded
// answer and full solution result; the store never decodes them.
type Record struct {
	ID               string
	OriginalFormula  string
	CanonicalFormula string
	Type             string
	AnswerJSON       string
	ResultJSON       string
	IsValid          bool
	CreatedAt        int64
}

// ListFilter narrows List. An empty Type matches every formula type.
type ListFilter struct {
	Type   string
	Limit  int
	Offset int
}

const recordColumns = `id, original_formula, canonical_formula, type,
	answer_json, result_json, is_valid, created_at`

// Insert stores a new solution record.
func Insert(db *sql.DB, r *Record) error {
	query := `INSERT INTO solutions (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Exec(query,
		r.ID, r.OriginalFormula, r.CanonicalFormula, r.Type,
		r.AnswerJSON, r.ResultJSON, boolToInt(r.IsValid), r.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a solution by its ULID.
func GetByID(db *sql.DB, id string) (*Record, error) {
	row := db.QueryRow(`SELECT `+recordColumns+` FROM solutions WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(id)
		}
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// List returns solutions newest first along with the total matching count.
func List(db *sql.DB, f ListFilter) ([]Record, int, error) {
	where := ""
	var args []any
	if f.Type != "" {
		where = " WHERE type = ?"
		args = append(args, f.Type)
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM solutions`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + recordColumns + ` FROM solutions` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.Query(query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// Purge permanently deletes solutions. olderThanDays > 0 keeps anything newer
// than that many days; formulaType narrows the purge to one type.
func Purge(db *sql.DB, olderThanDays int, formulaType string) (int, error) {
	query := `DELETE FROM solutions WHERE 1 = 1`
	var args []any
	if olderThanDays > 0 {
		cutoff := time.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour).Unix()
		query += ` AND created_at < ?`
		args = append(args, cutoff)
	}
	if formulaType != "" {
		query += ` AND type = ?`
		args = append(args, formulaType)
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record.
func scanRecord(row scanner) (*Record, error) {
	var (
		r     Record
		valid int
	)
	err := row.Scan(
		&r.ID, &r.OriginalFormula, &r.CanonicalFormula, &r.Type,
		&r.AnswerJSON, &r.ResultJSON, &valid, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.IsValid = valid != 0
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
