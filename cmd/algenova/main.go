package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/db"
	"github.com/hpungsan/algenova/internal/logging"
	"github.com/hpungsan/algenova/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"solve": true, "normalize": true, "classify": true,
	"history": true, "show": true, "purge": true,
	"catalog": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	switch arg {
	case "--help", "-h", "--version", "-v", "--verbose":
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
      _    _            _   _
     / \  | | __ _  ___| \ | | _____   ____ _
    / _ \ | |/ _' |/ _ \  \| |/ _ \ \ / / _' |
   / ___ \| | (_| |  __/ |\  | (_) \ V / (_| |
  /_/   \_\_|\__, |\___|_| \_|\___/ \_/ \__,_|
             |___/

  Step-by-step math solver

  Usage: algenova <command> [options]
         algenova --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(&deps{cfg: config.DefaultConfig()})
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".algenova")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	d := &deps{db: database, cfg: cfg, logger: logger}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(d)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'algenova --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, logger, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		database.Close()
		os.Exit(1)
	}
}
