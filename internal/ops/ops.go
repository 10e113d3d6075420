// Package ops implements the operations shared by the CLI, the HTTP API and
// the MCP server: solving, history lookup and maintenance.
package ops

import (
	"crypto/rand"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/formula"
	"github.com/hpungsan/algenova/internal/oracle"
	"github.com/hpungsan/algenova/internal/solver"
	"github.com/hpungsan/algenova/internal/typeset"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("formulatype", func(fl validator.FieldLevel) bool {
		return formula.Type(fl.Field().String()).Valid()
	})
}

// validateInput runs struct tag validation and reports the first failing
// field as an INVALID_REQUEST error.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		return errors.NewInvalidRequest(fieldMessage(fieldErrs[0]))
	}
	return errors.NewInvalidRequest(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "formulatype":
		return name + " must be one of equation, expression, derivative, integral, special"
	case "gte":
		return name + " must be >= " + fe.Param()
	case "required":
		return name + " is required"
	default:
		return name + " is invalid"
	}
}

// NewSolver builds a solver from config: parameter samples, and LaTeX
// markup unless disabled.
func NewSolver(cfg *config.Config, logger *zap.Logger) *solver.Solver {
	opts := solver.Options{Logger: logger}
	if cfg != nil {
		opts.Samples = cfg.ParameterSamples
		if !cfg.DisableMarkup {
			opts.Formatter = typeset.New()
		}
	}
	return solver.New(oracle.NewEngine(), opts)
}

// newID returns a fresh ULID string.
func newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}
