package main

import (
	"fmt"

	"github.com/fwojciec/passage"
	passagehttp "github.com/fwojciec/passage/http"
	passagemcp "github.com/fwojciec/passage/mcp"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies, cli *CLI) error {
	if c.Warm && deps.Warm != nil {
		// A cold start is not fatal; queries keep retrying the refresh.
		if err := deps.Warm(deps.Ctx); err != nil {
			deps.Logger.Warn("initial corpus load failed", "err", err)
		}
	}

	s := passagehttp.NewServer()
	s.Addr = c.Addr
	s.Token = c.Token
	s.SearchService = deps.Search
	s.StatusService = deps.Status
	s.Logger = deps.Logger

	if !c.NoMCP {
		mcpServer, err := passagemcp.NewServer(deps.Search, deps.Status)
		if err != nil {
			return err
		}
		s.MCPHandler = mcpServer.Handler()
	}

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", s.URL())
	deps.Logger.Info("server started", "addr", s.Addr, "source", cli.Describe())

	<-deps.Ctx.Done()

	return s.Close()
}
