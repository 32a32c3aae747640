package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/julz808/educoach-prep-portal-sub001/internal/catalog"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a catalog file, or the built-in catalog when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tNAME\tWRITING MAX\tSECTIONS")
		for _, p := range cat.Products() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.ID, p.Name, p.WritingMaxPoints, len(p.Sections))
		}
		return w.Flush()
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}
