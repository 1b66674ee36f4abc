package mcp

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/passage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusURI identifies the corpus status resource.
const StatusURI = "passage://status"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         StatusURI,
		Name:        "status",
		Description: "Size and age of the live corpus snapshot",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(s.status.Status())
	if err != nil {
		return nil, passage.Errorf(passage.EINTERNAL, "marshal status: %v", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
