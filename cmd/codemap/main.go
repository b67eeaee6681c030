// codemap: context retrieval MCP server.
//
// Serves a hand-curated index of subsystems and specialized agents over MCP
// (stdio transport), so an AI coding assistant can discover which parts of
// a codebase and which agent are relevant to a task.
//
// Usage:
//
//	codemap serve [-config codemap.yaml]   # Start MCP server
//	codemap version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mapache-labs/codemap/internal/config"
	cmserver "github.com/mapache-labs/codemap/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("codemap v%s\n", cmserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultFile, "path to the index configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	s, cleanup, err := cmserver.New(cfg, repoRoot, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

// newLogger builds a zap logger writing to stderr; stdout belongs to the
// MCP stdio transport.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("CODEMAP_ENV") == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `codemap - context retrieval MCP server

Usage:
  codemap serve [-config codemap.yaml]   Start the MCP server (stdio)
  codemap version                        Print the version

The config file defines the subsystem index, the agent registry, and the
drift checker options. See codemap.example.yaml.
`)
}
