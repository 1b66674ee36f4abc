package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/mock"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_handleSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		t.Parallel()

		search := &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
				return []*passage.Result{{
					URL:     "https://example.com/webhooks",
					Title:   "Webhooks › Retry policy",
					Snippet: "Failed deliveries are retried three times.",
				}}, nil
			},
		}
		server, err := NewServer(search, nil)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "retries"})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "https://example.com/webhooks", output.Results[0].URL)
		assert.Equal(t, "Webhooks › Retry policy", output.Results[0].Title)
	})

	t.Run("applies defaults when options are omitted", func(t *testing.T) {
		t.Parallel()

		var got passage.SearchOptions
		search := &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
				got = opts
				return nil, nil
			},
		}
		server, err := NewServer(search, nil)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, passage.DefaultSearchOptions(), got)
		assert.NotNil(t, output.Results)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("clamps options and honours an explicit zero lambda", func(t *testing.T) {
		t.Parallel()

		var got passage.SearchOptions
		search := &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
				got = opts
				return nil, nil
			},
		}
		server, err := NewServer(search, nil)
		require.NoError(t, err)

		lambda := 0.0
		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q", TopK: 99, Lambda: &lambda})

		require.NoError(t, err)
		assert.Equal(t, passage.MaxTopK, got.TopK)
		assert.Equal(t, 0.0, got.Lambda)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		t.Parallel()

		search := &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
				return nil, passage.Errorf(passage.EINVALID, "query required")
			},
		}
		server, err := NewServer(search, nil)
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{})

		require.Error(t, err)
		assert.Equal(t, "query required", passage.ErrorMessage(err))
	})
}

func TestServer_Session(t *testing.T) {
	t.Parallel()

	search := &mock.SearchService{
		SearchFn: func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
			if query == "fail" {
				return nil, errors.New("index unavailable")
			}
			return []*passage.Result{{URL: "https://example.com/a", Title: "A", Snippet: query}}, nil
		},
	}
	status := &mock.StatusService{
		StatusFn: func() passage.Status {
			return passage.Status{Pages: 3, Chunks: 9}
		},
	}
	server, err := NewServer(search, status)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	t.Run("calls the search tool", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "search",
			Arguments: map[string]any{"query": "webhooks", "top_k": 3},
		})

		require.NoError(t, err)
		assert.False(t, res.IsError)
		require.Len(t, res.Content, 1)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)

		var out SearchOutput
		require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "webhooks", out.Results[0].Snippet)
	})

	t.Run("reports search failures as tool errors", func(t *testing.T) {
		res, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "search",
			Arguments: map[string]any{"query": "fail"},
		})

		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("reads the status resource", func(t *testing.T) {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: StatusURI})

		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.JSONEq(t, `{"pages":3,"chunks":9,"refreshed_at":"0001-01-01T00:00:00Z"}`, res.Contents[0].Text)
	})
}
