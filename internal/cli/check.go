package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		contextName     string
		payload         string
		documentFile    string
		asJSON          bool
		scriptNeedBreak bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a payload can escape a context",
		Example: `  xssctx check -c ATTR_DOUBLE_QUOTE -p '"><svg onload=alert(1)>'
  xssctx check -c SCRIPT_TEXT -p 'alert(1)' --script-text-needs-break`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			document := ""
			if documentFile != "" {
				var err error
				if document, err = readDocument(cmd, documentFile); err != nil {
					return err
				}
			}

			engine := newEngine(scriptNeedBreak)
			canBreak, err := engine.CanBreak(contextName, payload)
			if err != nil {
				return err
			}
			needBreak, err := engine.NeedBreak(contextName, document)
			if err != nil {
				return err
			}

			res := struct {
				Context     string `json:"context"`
				CanBreak    bool   `json:"can_break"`
				NeedBreak   bool   `json:"need_break"`
				Exploitable bool   `json:"exploitable"`
			}{contextName, canBreak, needBreak, !needBreak || canBreak}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(res)
			}
			fmt.Fprintf(out, "context:     %s\n", res.Context)
			fmt.Fprintf(out, "can_break:   %v\n", res.CanBreak)
			fmt.Fprintf(out, "need_break:  %v\n", res.NeedBreak)
			fmt.Fprintf(out, "exploitable: %v\n", res.Exploitable)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextName, "context", "c", "", "Context name (see 'xssctx contexts')")
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "Payload to test")
	cmd.Flags().StringVarP(&documentFile, "document", "d", "", "Document the context was found in (file or -)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&scriptNeedBreak, "script-text-needs-break", false, "Treat plain script text as inert until broken out of")
	_ = cmd.MarkFlagRequired("context")
	return cmd
}
