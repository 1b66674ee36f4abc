package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/passage"
	passagefs "github.com/fwojciec/passage/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies, cli *CLI) error {
	name := cli.Collection
	pages, err := deps.Pages.FindPages(deps.Ctx, passage.PageFilter{Collection: &name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}
	if len(pages) == 0 {
		fmt.Fprintf(deps.Stderr, "error: collection %q has no pages. Use 'passage list' to see available collections.\n", name)
		return passage.Errorf(passage.ENOTFOUND, "collection %q has no pages", name)
	}

	if err := passagefs.NewExporter(c.Dir, name).Export(deps.Ctx, pages); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d pages to %s\n", len(pages), filepath.Join(c.Dir, name))
	return nil
}
