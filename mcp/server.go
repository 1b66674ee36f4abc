// Package mcp exposes passage search to AI assistants over the Model
// Context Protocol.
package mcp

import (
	"context"
	"net/http"

	"github.com/fwojciec/passage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for passage search.
type Server struct {
	search passage.SearchService
	status passage.StatusService
	server *mcp.Server
}

// NewServer creates a new MCP server. The status service is optional;
// without it the status resource is not registered.
func NewServer(search passage.SearchService, status passage.StatusService) (*Server, error) {
	if search == nil {
		return nil, passage.Errorf(passage.EINVALID, "mcp: search service is required")
	}

	s := &Server{
		search: search,
		status: status,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "passage",
			Version: Version,
		}, nil),
	}

	s.registerTools()
	if status != nil {
		s.registerResources()
	}

	return s, nil
}

// Run serves MCP over stdio. It blocks until the context is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler serving this server, for
// mounting under an HTTP route.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}
