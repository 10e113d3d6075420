package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/algenova/internal/errors"
)

// decode maps tool arguments onto T. A mistyped field is reported as
// INVALID_REQUEST naming the argument.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInternal(fmt.Errorf("marshal args: %w", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return result, errors.NewInvalidRequest(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()))
		}
		return result, errors.NewInvalidRequest("invalid arguments: " + err.Error())
	}
	return result, nil
}

// decodeFormula returns the formula argument, or a missing-formula error when it is
// absent, blank or not a string.
func decodeFormula(req mcp.CallToolRequest) (string, error) {
	input, err := decode[FormulaRequest](req)
	if err != nil || strings.TrimSpace(input.Formula) == "" {
		return "", errors.NewMissingFormula()
	}
	return input.Formula, nil
}
