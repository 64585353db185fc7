package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"SessionScreener/internal/activation"
	"SessionScreener/internal/catalog"
)

func newConditionsCmd(root *rootOptions) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "List the condition catalog with the current activation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			act, err := newActivation(root.cfg, catalog.Default())
			if err != nil {
				return err
			}
			return printConditions(cmd, catalog.Default(), act.Snapshot(), activeOnly)
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list active conditions")
	return cmd
}

func printConditions(cmd *cobra.Command, cat *catalog.Catalog, set activation.Set, activeOnly bool) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCMP\tINV\tMODE\tDESCRIPTION")
	for _, d := range cat.List() {
		mode := set.Mode(d.ID)
		if activeOnly && mode == activation.Inactive {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Comparator, d.Inverse(), mode, d.Description)
	}
	return w.Flush()
}
