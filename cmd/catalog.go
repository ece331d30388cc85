package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Wartori54/Hydrogen/engine/optimize"
)

var (
	catalogLevel    int
	catalogOnlyPure bool
)

// catalogCmd lists the optimization units and which a level would activate
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List optimization units",
	Run: func(cmd *cobra.Command, args []string) {
		printCatalog(cmd.OutOrStdout(), optimize.Catalog(), catalogLevel, catalogOnlyPure)
	},
}

func printCatalog(out io.Writer, catalog []optimize.Optimization, level int, onlyPure bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLEVEL\tPURE\tACTIVE")
	for _, o := range catalog {
		fmt.Fprintf(w, "%s\t%d\t%v\t%v\n", o.Name(), o.Level(), o.Pure(), optimize.Wants(o, level, onlyPure))
	}
	_ = w.Flush()
}

func init() {
	catalogCmd.Flags().IntVar(&catalogLevel, "level", optimize.MaxLevel(optimize.Catalog()), "Level to evaluate")
	catalogCmd.Flags().BoolVar(&catalogOnlyPure, "only-pure", false, "Evaluate with only pure units allowed")
}
