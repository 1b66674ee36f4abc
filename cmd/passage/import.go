package main

import (
	"fmt"

	"github.com/fwojciec/passage"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies, cli *CLI) error {
	pages, err := deps.Source.LoadPages(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}
	if len(pages) == 0 {
		fmt.Fprintln(deps.Stderr, "error: feed has no usable records")
		return passage.Errorf(passage.ENOTFOUND, "feed has no usable records")
	}

	coll := &passage.Collection{Name: cli.Collection, SourceURL: cli.Describe()}
	if err := deps.Pages.ReplacePages(deps.Ctx, coll, pages); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d pages into collection %q (%d changed)\n", coll.Pages, coll.Name, coll.Changed)
	return nil
}
