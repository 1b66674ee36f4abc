package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/passage"
	passagehttp "github.com/fwojciec/passage/http"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	opts := passage.SearchOptions{TopK: c.TopK, Lambda: c.Lambda}.Normalize()

	results, err := deps.Search.Search(deps.Ctx, c.Query, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}
	if results == nil {
		results = []*passage.Result{}
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(passagehttp.SearchResponse{Results: results})
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No passages found.")
		return nil
	}
	fmt.Fprintln(deps.Stdout, passage.FormatResults(results))
	return nil
}
