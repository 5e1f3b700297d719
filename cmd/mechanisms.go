package saslcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gfx.cafe/gfx/saslplug/lib/plugin"
)

var mechanismsCmd = &cobra.Command{
	Use:   "mechanisms",
	Short: "List the supported mechanisms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := plugin.New(plugin.WithLogger(logger))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "type: %s\n", p.Type())
		for _, mechanism := range p.Mechanisms() {
			fmt.Fprintln(out, mechanism)
		}
		return nil
	},
}
