// Package mcpserver exposes the swarm over MCP so agent tooling can join
// games and drive PIN searches through tool calls.
package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"panquiz-swarm/internal/app/search"
	"panquiz-swarm/internal/app/swarm"
)

type Server struct {
	swarmSvc  *swarm.Service
	searchSvc *search.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(swarmSvc *swarm.Service, searchSvc *search.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"panquiz-swarm",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		swarmSvc:   swarmSvc,
		searchSvc:  searchSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
