package mcpserver

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/app/swarm"
	"panquiz-swarm/internal/panquiz"
	"panquiz-swarm/internal/prober"
	"panquiz-swarm/internal/session"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	var te *panquiz.TransportError
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, swarm.ErrInvalidRequest), errors.Is(err, prober.ErrInvalidStart):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, swarm.ErrSessionNotFound):
		return toolError("session_not_found", err.Error())
	case errors.Is(err, swarm.ErrPinRejected):
		return toolError("pin_rejected", err.Error())
	case errors.Is(err, swarm.ErrOwnerBanned), errors.Is(err, search.ErrOwnerBanned):
		return toolError("owner_banned", err.Error())
	case errors.Is(err, search.ErrNoSearch), errors.Is(err, prober.ErrJobNotFound):
		return toolError("search_not_found", err.Error())
	case errors.Is(err, prober.ErrAlreadyRunning):
		return toolError("search_already_running", err.Error())
	case errors.Is(err, session.ErrNoQuestion):
		return toolError("no_pending_question", err.Error())
	case errors.Is(err, session.ErrNotConnected):
		return toolError("not_connected", err.Error())
	case errors.Is(err, panquiz.ErrNoAccessToken), errors.Is(err, panquiz.ErrNoConnectionToken):
		return toolError("negotiate_failed", err.Error())
	case errors.As(err, &te):
		return toolError("upstream_error", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
