package main

import (
	"fmt"

	"github.com/fwojciec/passage"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return passage.Errorf(passage.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Pages.DeleteCollection(deps.Ctx, c.Name); err != nil {
		if passage.ErrorCode(err) == passage.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: collection %q not found. Use 'passage list' to see available collections.\n", c.Name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", passage.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted collection %q\n", c.Name)
	return nil
}
