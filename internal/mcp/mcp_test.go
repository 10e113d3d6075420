package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/db"
	"github.com/hpungsan/algenova/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, func()) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	cleanup := func() {
		database.Close()
	}

	return database, config.DefaultConfig(), cleanup
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleSolve(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, nil)
	ctx := context.Background()

	result, err := h.HandleSolve(ctx, makeRequest(map[string]any{"formula": "x^2 - 4 = 0"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	if output["type"] != "equation" {
		t.Errorf("type = %v, want equation", output["type"])
	}
	if id, _ := output["id"].(string); id == "" {
		t.Error("id is empty, want stored solution")
	}
	answer, _ := output["answer"].([]any)
	if len(answer) != 2 {
		t.Errorf("answer = %v, want two roots", output["answer"])
	}

	t.Run("missing formula", func(t *testing.T) {
		result, _ := h.HandleSolve(ctx, makeRequest(map[string]any{}))
		assertErrorCode(t, result, string(errors.ErrInvalidRequest))
	})

	t.Run("non-string formula", func(t *testing.T) {
		result, _ := h.HandleSolve(ctx, makeRequest(map[string]any{"formula": 42}))
		assertErrorCode(t, result, string(errors.ErrInvalidRequest))
	})

	t.Run("unsupported formula", func(t *testing.T) {
		result, _ := h.HandleSolve(ctx, makeRequest(map[string]any{"formula": "2 + y"}))
		assertErrorCode(t, result, string(errors.ErrUnsupportedFormula))
	})
}

func TestHandleNormalize(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, nil)

	result, err := h.HandleNormalize(context.Background(), makeRequest(map[string]any{"formula": "two plus three"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	if output["canonical"] != "2+3" {
		t.Errorf("canonical = %v, want 2+3", output["canonical"])
	}
	lint, _ := output["lint"].(map[string]any)
	if lint["is_valid"] != true {
		t.Errorf("lint = %v, want valid", lint)
	}
}

func TestHandleClassify(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, nil)
	ctx := context.Background()

	tests := []struct {
		formula  string
		wantType string
		wantVar  string
	}{
		{"3y - 2 = 7", "equation", "y"},
		{"2 + 3", "expression", "x"},
		{"derivative of t^3 with respect to t", "derivative", "t"},
		{"∫x^2 dx", "integral", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			result, err := h.HandleClassify(ctx, makeRequest(map[string]any{"formula": tt.formula}))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			output := parseOutput(t, result)
			if output["type"] != tt.wantType || output["variable"] != tt.wantVar {
				t.Errorf("classify = %v/%v, want %s/%s", output["type"], output["variable"], tt.wantType, tt.wantVar)
			}
		})
	}

	t.Run("special", func(t *testing.T) {
		result, _ := h.HandleClassify(ctx, makeRequest(map[string]any{"formula": "quadratic formula"}))
		output := parseOutput(t, result)
		special, _ := output["special"].(map[string]any)
		if output["type"] != "special" || special["name"] != "Quadratic formula" {
			t.Errorf("output = %v", output)
		}
	})
}

func TestHandleHistoryFetchPurge(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg, nil)
	ctx := context.Background()

	var ids []string
	for _, f := range []string{"1 + 1", "x + 1 = 3", "d/dx(x^2)"} {
		output := parseOutput(t, mustCall(t, h.HandleSolve, map[string]any{"formula": f}))
		ids = append(ids, output["id"].(string))
	}

	// History with a type filter
	output := parseOutput(t, mustCall(t, h.HandleHistory, map[string]any{"type": "equation", "limit": 10}))
	items, _ := output["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["id"] != ids[1] {
		t.Errorf("items = %v", items)
	}

	// Invalid type
	result, _ := h.HandleHistory(ctx, makeRequest(map[string]any{"type": "matrix"}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))

	// Fetch as JSON and as markdown
	output = parseOutput(t, mustCall(t, h.HandleFetch, map[string]any{"id": ids[2]}))
	if output["answer"] != "2*x" {
		t.Errorf("answer = %v, want 2*x", output["answer"])
	}
	md := mustCall(t, h.HandleFetch, map[string]any{"id": ids[2], "markdown": true})
	text := md.Content[0].(mcp.TextContent).Text
	if !strings.HasPrefix(text, "# `d/dx(x^2)`") {
		t.Errorf("markdown = %q", text)
	}

	// Purge one type, then everything
	output = parseOutput(t, mustCall(t, h.HandlePurge, map[string]any{"type": "expression"}))
	if output["purged"] != float64(1) {
		t.Errorf("purged = %v, want 1", output["purged"])
	}
	output = parseOutput(t, mustCall(t, h.HandlePurge, map[string]any{}))
	if output["purged"] != float64(2) {
		t.Errorf("purged = %v, want 2", output["purged"])
	}

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": ids[0]}))
	assertErrorCode(t, result, string(errors.ErrNotFound))
}

func TestServerRegistration(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	s := NewServer(database, cfg, nil, "test")
	tools := s.ListTools()

	expectedTools := []string{
		"math_solve",
		"math_normalize",
		"math_classify",
		"math_history",
		"math_fetch",
		"math_purge",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"math_purge", "math_purge", "not_a_tool"}
	s := NewServer(database, cfg, nil, "test")
	tools := s.ListTools()

	if len(tools) != 5 {
		t.Errorf("registered tool count = %d, want 5", len(tools))
	}
	if _, ok := tools["math_purge"]; ok {
		t.Error("disabled tool math_purge should not be registered")
	}
}

func TestServerRegistration_DisabledType(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTypes = []string{"math"}
	s := NewServer(database, cfg, nil, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0", len(tools))
	}
}

func TestValidateDisabled(t *testing.T) {
	if unknown := ValidateDisabledTools([]string{"math_solve", "notes_store"}); len(unknown) != 1 || unknown[0] != "notes_store" {
		t.Errorf("ValidateDisabledTools = %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"math", "notes"}); len(unknown) != 1 || unknown[0] != "notes" {
		t.Errorf("ValidateDisabledTypes = %v", unknown)
	}
	if len(AllToolNames()) != len(toolRegistry) {
		t.Error("AllToolNames does not cover the registry")
	}
	if got := GetTypeForTool("math_solve"); got != "math" {
		t.Errorf("GetTypeForTool = %q", got)
	}
	if got := GetTypeForTool("solve"); got != "" {
		t.Errorf("GetTypeForTool(solve) = %q, want empty", got)
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	nErr := errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied"))
	nErr.Details = map[string]any{"path": "/tmp/secret.db"}
	r := errorResult(nErr)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("solve: %w", errors.NewNotFound("abc")))

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func mustCall(t *testing.T, handler toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if result == nil || !result.IsError {
		t.Errorf("expected error result with code %s", expectedCode)
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
