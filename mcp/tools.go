package mcp

import (
	"context"

	"github.com/fwojciec/passage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string   `json:"query" jsonschema:"natural-language question to find passages for"`
	TopK   int      `json:"top_k,omitempty" jsonschema:"maximum number of passages, 1 to 20 (default 12)"`
	Lambda *float64 `json:"lambda,omitempty" jsonschema:"relevance weight from 0 (diverse) to 1 (relevant only), default 0.5"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []*passage.Result `json:"results"`
	Count   int               `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find diverse, relevant passages in the documentation corpus. Each result carries the page url, a title and a snippet.",
	}, s.handleSearch)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := passage.DefaultSearchOptions()
	if input.TopK != 0 {
		opts.TopK = input.TopK
	}
	if input.Lambda != nil {
		opts.Lambda = *input.Lambda
	}

	results, err := s.search.Search(ctx, input.Query, opts.Normalize())
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []*passage.Result{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}
