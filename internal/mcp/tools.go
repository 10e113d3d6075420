package mcp

import "github.com/mark3labs/mcp-go/mcp"

var solveToolDef = mcp.NewTool("math_solve",
	mcp.WithDescription("Solve a math problem given as plain text, LaTeX or words. "+
		"Returns the canonical form, classified type, numbered steps, the answer and "+
		"numeric verification of each candidate solution. The result is saved to history."),
	mcp.WithString("formula",
		mcp.Required(),
		mcp.Description(`The problem, e.g. "2x + 5 = 13", "d/dx(x^2 + 3x)" or "integral of x from 0 to 2"`),
	),
)

var normalizeToolDef = mcp.NewTool("math_normalize",
	mcp.WithDescription("Rewrite free-form math input into canonical infix syntax and lint the result, without solving."),
	mcp.WithString("formula", mcp.Required(), mcp.Description("Raw math input")),
)

var classifyToolDef = mcp.NewTool("math_classify",
	mcp.WithDescription("Report how a formula would be handled: its type (equation, expression, derivative, "+
		"integral or special) and its main variable."),
	mcp.WithString("formula", mcp.Required(), mcp.Description("Raw math input")),
)

var historyToolDef = mcp.NewTool("math_history",
	mcp.WithDescription("List previously solved problems, newest first."),
	mcp.WithString("type",
		mcp.Description("Only list one formula type"),
		mcp.Enum("equation", "expression", "derivative", "integral", "special"),
	),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var fetchToolDef = mcp.NewTool("math_fetch",
	mcp.WithDescription("Fetch a stored solution by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Solution id from math_solve or math_history")),
	mcp.WithBoolean("markdown", mcp.Description("Return a markdown transcript instead of JSON")),
)

var purgeToolDef = mcp.NewTool("math_purge",
	mcp.WithDescription("Permanently delete stored solutions."),
	mcp.WithString("type",
		mcp.Description("Only purge one formula type"),
		mcp.Enum("equation", "expression", "derivative", "integral", "special"),
	),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge solutions older than this many days")),
)
