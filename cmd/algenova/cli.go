package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/logging"
	"github.com/hpungsan/algenova/internal/ops"
	"github.com/hpungsan/algenova/internal/web"
)

// maxStdinBytes bounds formula input read from stdin.
const maxStdinBytes = 1 << 20

// deps are shared by every command. The logger may be replaced by --verbose
// before a command runs.
type deps struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *deps) *cli.App {
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	app := &cli.App{
		Name:    "algenova",
		Usage:   "Step-by-step math solver",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug output to stderr"},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("verbose") {
				return nil
			}
			logger, err := logging.New(d.cfg.LogLevel, true)
			if err != nil {
				return err
			}
			d.logger = logger
			return nil
		},
		Commands: []*cli.Command{
			solveCmd(d),
			normalizeCmd(),
			classifyCmd(),
			historyCmd(d),
			showCmd(d),
			purgeCmd(d),
			catalogCmd(),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// solveCmd creates the solve command.
func solveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "Solve a formula (argument or stdin) and store the result",
		ArgsUsage: "[formula]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print a markdown transcript instead of JSON"},
			&cli.BoolFlag{Name: "no-history", Usage: "Do not store the result"},
		},
		Action: func(c *cli.Context) error {
			raw, err := formulaArg(c)
			if err != nil {
				return outputError(err)
			}

			cfg := *d.cfg
			if c.Bool("no-history") {
				cfg.DisableHistory = true
			}

			output, err := ops.Solve(context.Background(), d.db, ops.NewSolver(&cfg, d.logger), &cfg, ops.SolveInput{Formula: raw})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("markdown") {
				return outputText(ops.Markdown(&ops.FetchOutput{ID: output.ID, Result: *output.Result}))
			}
			return outputJSON(output)
		},
	}
}

// normalizeCmd creates the normalize command.
func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Print the canonical form of a formula and its lint report",
		ArgsUsage: "[formula]",
		Action: func(c *cli.Context) error {
			raw, err := formulaArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Normalize(raw)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// classifyCmd creates the classify command.
func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the type and main variable of a formula",
		ArgsUsage: "[formula]",
		Action: func(c *cli.Context) error {
			raw, err := formulaArg(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Classify(raw)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List stored solutions, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Filter by formula type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Number of items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(d.db, ops.ListInput{
				Type:   c.String("type"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stored solution",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Print a markdown transcript instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(d.db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("markdown") {
				return outputText(ops.Markdown(output))
			}
			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete stored solutions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Only purge one formula type"},
			&cli.StringFlag{Name: "older-than", Usage: "Only purge solutions older than N days (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if typ := c.String("type"); typ != "" {
				input.Type = &typ
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(d.db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// catalogCmd creates the catalog command.
func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List supported operations, examples and recognized formulas",
		Action: func(_ *cli.Context) error {
			return outputJSON(ops.Catalog())
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := d.cfg.HTTPBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := d.cfg.HTTPPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(d.db, d.cfg, d.logger, Version, bind, port)
			if err != nil {
				return outputError(err)
			}
			return web.Run(srv, d.logger)
		},
	}
}

// Helper functions

// formulaArg joins positional arguments into a formula, falling back to stdin.
func formulaArg(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if !stdinHasData() {
		return "", errors.NewMissingFormula()
	}
	text, err := readStdin(maxStdinBytes)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.NewMissingFormula()
	}
	return text, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputText writes plain text to stdout.
func outputText(s string) error {
	_, err := io.WriteString(os.Stdout, s)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	var nErr *errors.NovaError
	if stderrors.As(err, &nErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", nErr.Code, nErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, failing past maxBytes.
func readStdin(maxBytes int) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, int64(maxBytes)+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if len(data) > maxBytes {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", maxBytes))
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
