package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/Serdar715/xssctx/internal/xsscontext"
	"github.com/spf13/cobra"
)

func newContextsCmd() *cobra.Command {
	var scriptNeedBreak bool

	cmd := &cobra.Command{
		Use:   "contexts",
		Short: "List the contexts in classification order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := xsscontext.Policy{ScriptTextExecutable: !scriptNeedBreak}
			engine := newEngine(scriptNeedBreak)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONTEXT\tREGION\tQUOTE\tNEED_BREAK")
			for _, v := range xsscontext.Catalog() {
				needBreak, err := engine.NeedBreak(v.Name(), "")
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", v.Name(), v.Region(), xsscontext.QuoteName(v.Quote()), needBreak)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if policy.ScriptTextExecutable {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSCRIPT_TEXT reflections run as script; use --script-text-needs-break to require a breakout.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&scriptNeedBreak, "script-text-needs-break", false, "Treat plain script text as inert until broken out of")
	return cmd
}
