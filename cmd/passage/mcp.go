package main

import (
	passagemcp "github.com/fwojciec/passage/mcp"
)

// Run executes the mcp command, serving until stdin closes or the context
// is cancelled.
func (c *MCPCmd) Run(deps *Dependencies) error {
	s, err := passagemcp.NewServer(deps.Search, deps.Status)
	if err != nil {
		return err
	}
	return s.Run(deps.Ctx)
}
