// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads the configuration, builds the
// immutable index tables, and injects them into the tools, prompts, and
// resources. No business logic lives here, only wiring.
package server

import (
	"github.com/mapache-labs/codemap/internal/config"
	"github.com/mapache-labs/codemap/internal/drift"
	"github.com/mapache-labs/codemap/internal/index"
	"github.com/mapache-labs/codemap/internal/prompts"
	"github.com/mapache-labs/codemap/internal/resources"
	"github.com/mapache-labs/codemap/internal/retrieval"
	"github.com/mapache-labs/codemap/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts, and
// resources registered. repoRoot is the directory drift checks run in
// (normally the working directory).
//
// The returned cleanup function closes the drift state database and must be
// called on shutdown. It is always non-nil and safe to call even if drift
// init failed.
func New(cfg *config.Config, repoRoot string, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Build the immutable tables ---

	idx := index.New(cfg)
	reg := index.NewRegistry(cfg)

	scorer := retrieval.NewScorer(idx)
	suggester := retrieval.NewSuggester(reg)
	docSearch := retrieval.NewDocSearch(idx, cfg.DocsDir, cfg.Docs)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"codemap",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register query tools ---

	listSubsystems := tools.NewListSubsystemsTool(idx)
	s.AddTool(listSubsystems.Definition(), listSubsystems.Handle)

	subsystemFiles := tools.NewSubsystemFilesTool(idx)
	s.AddTool(subsystemFiles.Definition(), subsystemFiles.Handle)

	relevantContext := tools.NewRelevantContextTool(scorer)
	s.AddTool(relevantContext.Definition(), relevantContext.Handle)

	contextFiles := tools.NewContextFilesTool(docSearch)
	s.AddTool(contextFiles.Definition(), contextFiles.Handle)

	searchDocs := tools.NewSearchDocsTool(docSearch)
	s.AddTool(searchDocs.Definition(), searchDocs.Handle)

	suggestAgent := tools.NewSuggestAgentTool(suggester)
	s.AddTool(suggestAgent.Definition(), suggestAgent.Handle)

	listAgents := tools.NewListAgentsTool(reg)
	s.AddTool(listAgents.Definition(), listAgents.Handle)

	// --- Register the drift checker ---
	//
	// Drift is an independent subsystem: if its state store fails to open,
	// the checker still runs, it just cannot persist the dismiss counter.
	// The query tools are unaffected either way.

	cleanup := noop
	stateStore, err := drift.OpenStateStore(cfg.Drift.StateDir)
	if err != nil {
		logger.Warn("drift state store disabled", zap.Error(err))
		stateStore = nil
	} else {
		cleanup = func() {
			if err := stateStore.Close(); err != nil {
				logger.Warn("drift state store close", zap.Error(err))
			}
		}
	}

	checker := drift.NewChecker(idx, cfg.Drift, stateStore, repoRoot, logger)
	driftCheck := tools.NewDriftCheckTool(checker)
	s.AddTool(driftCheck.Definition(), driftCheck.Handle)

	// --- Register prompts ---

	orient := prompts.NewOrientPrompt()
	s.AddPrompt(orient.Definition(), orient.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(idx, cfg.DocsDir)
	s.AddResource(resourceHandler.ArchitectureResource(), resourceHandler.HandleArchitecture)
	s.AddResource(resourceHandler.FileMapResource(), resourceHandler.HandleFileMap)

	logger.Info("codemap server ready",
		zap.Int("subsystems", idx.Len()),
		zap.Int("agents", reg.Len()),
	)

	return s, cleanup, nil
}

// noop is the default cleanup when the drift state store is disabled.
func noop() {}

// serverInstructions tells the AI how to use codemap effectively.
func serverInstructions() string {
	return `You have access to codemap, a context retrieval server for this codebase.

## WHEN TO USE codemap

At the START of every task, before reading or writing code:
1. Call find_relevant_context with the task description. It returns the
   subsystems the task touches and up to 10 files worth reading first.
2. Call suggest_agent with the same description. If confidence is "high" or
   "medium" (should_invoke=true), delegate to the recommended agent. If the
   result carries a disambiguation note, decide using the files you're
   modifying instead of picking arbitrarily.

During a task:
- search_context_documents finds where a term or pattern is documented,
  with surrounding lines for context.
- get_files_for_subsystem gives the full file list for one subsystem. If
  you pass an unknown key, the error lists every valid key; pick from it.
- list_subsystems / list_agents enumerate everything that is indexed.

At session start:
- Call context_drift_check. It compares recent commits against the
  documentation index and flags subsystems whose code changed without a doc
  update. Empty output means all clear. Pass dismiss=true only when the
  user says the warnings are noise.

## HOW SCORING WORKS (so you can phrase queries well)

find_relevant_context matches subsystem keywords as substrings of your
task description: use concrete nouns from the codebase, not generic verbs.
suggest_agent matches trigger words exactly (single words) or phrases
verbatim (multi-word), and rarer triggers count more. Mention the specific
feature area and the results sharpen considerably.

codemap is read-only: no tool mutates the index or the codebase.`
}
