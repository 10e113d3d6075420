package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/ops"
	"github.com/hpungsan/algenova/internal/solver"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	solver *solver.Solver
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, solver: ops.NewSolver(cfg, logger), logger: logger}
}

// Request types for each tool

// FormulaRequest represents the arguments for solve, normalize and classify.
type FormulaRequest struct {
	Formula string `json:"formula"`
}

// HistoryRequest represents the arguments for history.
type HistoryRequest struct {
	Type   string `json:"type,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// FetchRequest represents the arguments for fetch.
type FetchRequest struct {
	ID       string `json:"id"`
	Markdown bool   `json:"markdown,omitempty"`
}

// PurgeRequest represents the arguments for purge.
type PurgeRequest struct {
	Type          *string `json:"type,omitempty"`
	OlderThanDays *int    `json:"older_than_days,omitempty"`
}

// Handler implementations

// HandleSolve handles the solve tool call.
func (h *Handlers) HandleSolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formula, err := decodeFormula(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Solve(ctx, h.db, h.solver, h.cfg, ops.SolveInput{Formula: formula})
	if err != nil {
		h.logger.Debug("solve failed", zap.String("formula", formula), zap.Error(err))
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleNormalize handles the normalize tool call.
func (h *Handlers) HandleNormalize(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formula, err := decodeFormula(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Normalize(formula)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClassify handles the classify tool call.
func (h *Handlers) HandleClassify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formula, err := decodeFormula(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Classify(formula)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleHistory handles the history tool call.
func (h *Handlers) HandleHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(h.db, ops.ListInput{
		Type:   input.Type,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the fetch tool call.
func (h *Handlers) HandleFetch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(h.db, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}
	if input.Markdown {
		return mcp.NewToolResultText(ops.Markdown(result)), nil
	}
	return successResult(result)
}

// HandlePurge handles the purge tool call.
func (h *Handlers) HandlePurge(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Purge(h.db, ops.PurgeInput{
		Type:          input.Type,
		OlderThanDays: input.OlderThanDays,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var nErr *errors.NovaError
	if stderrors.As(err, &nErr) {
		errorObj := map[string]any{
			"code":    nErr.Code,
			"message": nErr.Message,
			"status":  nErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if nErr.Code != errors.ErrInternal && nErr.Details != nil {
			errorObj["details"] = nErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
