package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rigrun/rigrun/internal/feeds"
	"github.com/spf13/cobra"
)

func newIndexCmd(exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>",
		Short: "List the packages in a feeds index file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packages, err := feeds.ParseFile(args[0])
			if err != nil {
				*exitCode = 1
				fmt.Fprintf(os.Stderr, "rigrun: %v\n", err)

				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, pkg := range packages {
				fmt.Fprintf(w, "%s\t%s\t%s\n", pkg.Name(), pkg.Version(), pkg.Filename())
			}

			return w.Flush()
		},
	}
}
