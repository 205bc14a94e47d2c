// Package mcp implements the Model Context Protocol server for relgraph.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/relgraph/internal/discovery"
	"github.com/ajitpratap0/relgraph/internal/explicit"
	"github.com/ajitpratap0/relgraph/internal/graphpattern"
	"github.com/ajitpratap0/relgraph/internal/models"
	"github.com/ajitpratap0/relgraph/internal/semantic"
)

// Server wraps an MCPServer with relgraph dependencies.
type Server struct {
	mcp        *mcpserver.MCPServer
	engine     *discovery.Engine
	recognizer *graphpattern.Recognizer
	miner      *semantic.Miner
	rules      []explicit.Rule
	logger     *slog.Logger
}

// NewServer creates a new MCP server. If engine, recognizer, or miner
// are nil, the corresponding tool calls return an error response
// instead of panicking.
func NewServer(engine *discovery.Engine, rec *graphpattern.Recognizer, miner *semantic.Miner, rules []explicit.Rule, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:     engine,
		recognizer: rec,
		miner:      miner,
		rules:      rules,
		logger:     logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"relgraph",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildDiscoverTool(), s.handleDiscover)
	mcpSrv.AddTool(buildMineTool(), s.handleMine)
	mcpSrv.AddTool(buildPatternsTool(), s.handlePatterns)
	mcpSrv.AddTool(buildRulesTool(), s.handleRules)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleDiscover is the exported handler for the "discover_relationships"
// tool. It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleDiscover(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleDiscover(ctx, req)
}

// HandleMine is the exported handler for the "mine_text" tool.
func (s *Server) HandleMine(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleMine(ctx, req)
}

// HandlePatterns is the exported handler for the "recognize_patterns" tool.
func (s *Server) HandlePatterns(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handlePatterns(ctx, req)
}

// HandleRules is the exported handler for the "list_rules" tool.
func (s *Server) HandleRules(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRules(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildDiscoverTool() mcpgo.Tool {
	return mcpgo.NewTool("discover_relationships",
		mcpgo.WithDescription("Discover typed relationships between business entities using explicit rules, multi-hop path search, temporal correlation, and semantic text mining."),
		mcpgo.WithString("entities",
			mcpgo.Required(),
			mcpgo.Description("JSON array of entities: [{id, type, attributes, aliases}]"),
		),
		mcpgo.WithString("events",
			mcpgo.Description("Optional JSON array of events: [{entity_id, event_type, timestamp, value}]"),
		),
		mcpgo.WithString("documents",
			mcpgo.Description("Optional JSON array of documents: [{id, text, metadata}]"),
		),
		mcpgo.WithNumber("min_confidence",
			mcpgo.Description("Discard relationships below this confidence (default: 0)"),
		),
	)
}

func buildMineTool() mcpgo.Tool {
	return mcpgo.NewTool("mine_text",
		mcpgo.WithDescription("Mine relationships from unstructured text via entity mention detection and verb patterns."),
		mcpgo.WithString("text",
			mcpgo.Required(),
			mcpgo.Description("The text to mine"),
		),
		mcpgo.WithString("entities",
			mcpgo.Required(),
			mcpgo.Description("JSON array of entities to look for in the text"),
		),
	)
}

func buildPatternsTool() mcpgo.Tool {
	return mcpgo.NewTool("recognize_patterns",
		mcpgo.WithDescription("Recognize structural graph patterns (hubs, triangles, communities) over a relationship set."),
		mcpgo.WithString("entities",
			mcpgo.Required(),
			mcpgo.Description("JSON array of entities"),
		),
		mcpgo.WithString("relationships",
			mcpgo.Required(),
			mcpgo.Description("JSON array of relationships to analyze"),
		),
	)
}

func buildRulesTool() mcpgo.Tool {
	return mcpgo.NewTool("list_rules",
		mcpgo.WithDescription("List the explicit relationship rules the discovery engine applies."),
	)
}

// --- tool handlers ---

// handleDiscover parses the input snapshot and runs a full discovery pass.
func (s *Server) handleDiscover(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.engine == nil {
		return mcpgo.NewToolResultError("discovery engine is unavailable"), nil
	}

	var entities []models.Entity
	if err := parseJSONArg(req, "entities", &entities); err != nil {
		return mcpgo.NewToolResultErrorf("invalid entities: %s", err.Error()), nil
	}
	if len(entities) == 0 {
		return mcpgo.NewToolResultError("entities are required and must not be empty"), nil
	}

	var events []models.Event
	if raw := req.GetString("events", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &events); err != nil {
			return mcpgo.NewToolResultErrorf("invalid events: %s", err.Error()), nil
		}
	}

	var documents []semantic.Document
	if raw := req.GetString("documents", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &documents); err != nil {
			return mcpgo.NewToolResultErrorf("invalid documents: %s", err.Error()), nil
		}
	}

	minConfidence := req.GetFloat("min_confidence", 0)
	if minConfidence < 0 || minConfidence > 1 {
		return mcpgo.NewToolResultError("min_confidence must be between 0.0 and 1.0"), nil
	}

	result, err := s.engine.Discover(ctx, discovery.Input{
		Entities:  entities,
		Events:    events,
		Documents: documents,
	}, models.DiscoveryContext{MinConfidence: minConfidence})
	if err != nil {
		return mcpgo.NewToolResultErrorf("discovery failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: discover completed",
		"entities", len(entities), "relationships", len(result.Relationships))
	return toolResultJSON(result)
}

// handleMine mines a single text for relationships.
func (s *Server) handleMine(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.miner == nil {
		return mcpgo.NewToolResultError("miner is unavailable"), nil
	}

	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcpgo.NewToolResultError("text is required and must not be empty"), nil
	}

	var entities []models.Entity
	if err := parseJSONArg(req, "entities", &entities); err != nil {
		return mcpgo.NewToolResultErrorf("invalid entities: %s", err.Error()), nil
	}

	rels := s.miner.Mine(text, entities, nil)

	s.logger.Info("mcp: mine completed", "relationships", len(rels))
	return toolResultJSON(map[string]any{"relationships": rels})
}

// handlePatterns runs structural pattern recognition.
func (s *Server) handlePatterns(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.recognizer == nil {
		return mcpgo.NewToolResultError("recognizer is unavailable"), nil
	}

	var entities []models.Entity
	if err := parseJSONArg(req, "entities", &entities); err != nil {
		return mcpgo.NewToolResultErrorf("invalid entities: %s", err.Error()), nil
	}

	var rels []models.Relationship
	if err := parseJSONArg(req, "relationships", &rels); err != nil {
		return mcpgo.NewToolResultErrorf("invalid relationships: %s", err.Error()), nil
	}

	result := map[string]any{
		"patterns":       s.recognizer.Recognize(entities, rels),
		"collaborations": s.recognizer.Collaborations(entities, rels),
	}
	return toolResultJSON(result)
}

// handleRules returns the explicit rule set.
func (s *Server) handleRules(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return toolResultJSON(map[string]any{"rules": s.rules})
}

// parseJSONArg unmarshals a required string argument carrying JSON.
func parseJSONArg(req mcpgo.CallToolRequest, name string, v any) error {
	raw := req.GetString(name, "")
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return json.Unmarshal([]byte(raw), v)
}
