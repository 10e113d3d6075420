package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/db"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/metrics"
	"github.com/hpungsan/algenova/internal/solver"
)

// SolveInput contains parameters for the Solve operation.
type SolveInput struct {
	Formula string `json:"formula"`
}

// SolveOutput is a solution result plus the history id it was stored under.
// ID is empty when history is disabled.
type SolveOutput struct {
	ID string `json:"id,omitempty"`
	*solver.Result
}

// Solve runs the pipeline on input.Formula and records the result.
// A nil database skips persistence.
func Solve(ctx context.Context, database *sql.DB, s *solver.Solver, cfg *config.Config, input SolveInput) (*SolveOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if strings.TrimSpace(input.Formula) == "" {
		return nil, errors.NewMissingFormula()
	}
	if n := utf8.RuneCountInString(input.Formula); cfg.FormulaMaxChars > 0 && n > cfg.FormulaMaxChars {
		return nil, errors.NewFormulaTooLarge(cfg.FormulaMaxChars, n)
	}

	if cfg.SolveTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.SolveTimeoutSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := s.Solve(ctx, input.Formula)
	if err != nil {
		label := string(formula.Classify(formula.Normalize(input.Formula)))
		metrics.SolveTotal.WithLabelValues(label, metrics.OutcomeFailed).Inc()
		return nil, errors.NewUnsupportedFormula(input.Formula, err)
	}

	outcome := metrics.OutcomeSolved
	if res.Answer.IsSentinel() {
		outcome = metrics.OutcomeRecovered
	}
	metrics.SolveTotal.WithLabelValues(string(res.Type), outcome).Inc()
	metrics.SolveDuration.WithLabelValues(string(res.Type)).Observe(time.Since(start).Seconds())

	out := &SolveOutput{Result: res}
	if database == nil || cfg.DisableHistory {
		return out, nil
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	answerJSON, err := json.Marshal(res.Answer)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.Insert(database, &db.Record{
		ID:               id,
		OriginalFormula:  res.OriginalFormula,
		CanonicalFormula: res.CanonicalFormula,
		Type:             string(res.Type),
		AnswerJSON:       string(answerJSON),
		ResultJSON:       string(resultJSON),
		IsValid:          res.Lint.Valid,
		CreatedAt:        time.Now().Unix(),
	}); err != nil {
		return nil, err
	}
	out.ID = id
	return out, nil
}
