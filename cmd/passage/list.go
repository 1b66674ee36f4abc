package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/passage"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	collections, err := deps.Pages.FindCollections(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}

	if len(collections) == 0 {
		fmt.Fprintln(deps.Stdout, "No collections found. Use 'passage import' to create one.")
		return nil
	}

	for _, coll := range collections {
		fmt.Fprintf(deps.Stdout, "%s  %d pages  %s  %s\n",
			coll.Name, coll.Pages, coll.UpdatedAt.Format(time.DateTime), coll.SourceURL)
	}

	return nil
}
