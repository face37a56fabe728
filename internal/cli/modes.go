package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

func newModesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "Compare the operating modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := policy.DescribeAll()
			if format == "json" {
				data, err := sonic.ConfigStd.MarshalIndent(infos, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tSTRATEGY\tSEARCH\tZOOM")
			for _, m := range policy.Modes() {
				p := policy.Lookup(m)
				def := ""
				if m == policy.DefaultMode {
					def = " (default)"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%t\t%t\n", m.ID(), def, m.Label(), p.Strategy, p.Search, p.Zoom)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text|json)")
	return cmd
}
