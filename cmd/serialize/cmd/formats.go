/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the formats in the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tBITS\tFIELDS\tDESCRIPTION")
			for _, def := range a.cfg.Formats {
				f := def.Codec()
				bits := fmt.Sprint(f.Bits())
				for _, fld := range f {
					if fld.IsVariable() {
						bits += "+"
						break
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Name, bits, f, def.Description)
			}
			return tw.Flush()
		},
	}
}
