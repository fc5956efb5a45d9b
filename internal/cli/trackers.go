package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plansync-dev/plansync/internal/planner"
)

func RunTrackers(cmd *cobra.Command, args []string) error {
	doc, err := planner.Load(args[0])
	if err != nil {
		return err
	}

	specs := doc.Trackers()
	if len(specs) == 0 {
		fmt.Println("no trackers declared")
		return nil
	}
	for _, spec := range specs {
		fmt.Printf("%s\t%s:%s\n", spec.Prefix, spec.SCM, spec.FullName())
	}
	return nil
}
