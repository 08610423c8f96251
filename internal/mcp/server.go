// ABOUTME: MCP server setup for the calorie balance engine.
// ABOUTME: Wraps MCP server with engine and storage Repository connections.
package mcp

import (
	"context"

	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with engine access.
type Server struct {
	mcpServer   *mcp.Server
	engine      *engine.Engine
	repo        storage.Repository
	defaultUser string
}

// NewServer creates a new MCP server over the given storage.
func NewServer(repo storage.Repository, defaultUser string) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "calbal",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer:   mcpServer,
		engine:      engine.New(repo),
		repo:        repo,
		defaultUser: defaultUser,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// user resolves the effective user ID for a tool call.
func (s *Server) user(id string) string {
	if id != "" {
		return id
	}
	return s.defaultUser
}
