package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"panquiz-swarm/internal/app/swarm"
)

// mcpOwner scopes MCP-created sessions and searches; tool callers share one
// owner the way HTTP callers share a client IP.
const mcpOwner = "mcp"

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"validate_pin",
			mcp.WithDescription("Check whether a game PIN identifies a joinable quiz"),
			mcp.WithString("pin_code", mcp.Required(), mcp.Description("Numeric game PIN, up to 6 digits")),
		),
		s.handleValidatePin,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_game",
			mcp.WithDescription("Join a quiz as a headless player"),
			mcp.WithString("pin_code", mcp.Required(), mcp.Description("Numeric game PIN")),
			mcp.WithString("player_name", mcp.Required(), mcp.Description("Display name shown to the host")),
			mcp.WithBoolean("auto_answer", mcp.Description("Answer questions automatically, default true")),
		),
		s.handleJoinGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_sessions",
			mcp.WithDescription("List live sessions"),
			mcp.WithString("game_id", mcp.Description("Filter by game id")),
		),
		s.handleListSessions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_session",
			mcp.WithDescription("Get one session snapshot"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetSession,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_pin_search",
			mcp.WithDescription("Start a background search of the PIN space for a joinable game"),
			mcp.WithNumber("start_pin", mcp.Description("First candidate, default 0, max 999999")),
		),
		s.handleStartPinSearch,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"pin_search_status",
			mcp.WithDescription("Get the running search's status and log tail"),
		),
		s.handlePinSearchStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"stop_pin_search",
			mcp.WithDescription("Stop the running PIN search"),
		),
		s.handleStopPinSearch,
	)
}

func (s *Server) handleValidatePin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pin, err := request.RequireString("pin_code")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	v, svcErr := s.swarmSvc.ValidatePin(ctx, pin)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(map[string]any{
		"pin_code": pin,
		"joinable": v.Joinable(),
		"play_id":  v.PlayID,
	}), nil
}

func (s *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pin, err := request.RequireString("pin_code")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	name, err := request.RequireString("player_name")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	snap, svcErr := s.swarmSvc.Join(ctx, swarm.JoinRequest{
		PinCode:    pin,
		PlayerName: name,
		Owner:      mcpOwner,
		AutoAnswer: request.GetBool("auto_answer", true),
	})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(snap), nil
}

func (s *Server) handleListSessions(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.swarmSvc.List(request.GetString("game_id", ""), "")), nil
}

func (s *Server) handleGetSession(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	snap, svcErr := s.swarmSvc.Get(id)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(snap), nil
}

func (s *Server) handleStartPinSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := s.searchSvc.Start(request.GetInt("start_pin", 0), mcpOwner)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"job_id": jobID}), nil
}

func (s *Server) handlePinSearchStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.searchSvc.Status(mcpOwner)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(snap), nil
}

func (s *Server) handleStopPinSearch(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.searchSvc.Stop(mcpOwner); err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{"ok": true}), nil
}
