package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Serdar715/xssctx/internal/xsscontext"
	"github.com/spf13/cobra"
)

// matchView is the JSON shape of one classified occurrence.
type matchView struct {
	Occurrence int    `json:"occurrence"`
	Offset     int    `json:"offset"`
	Context    string `json:"context"`
	Region     string `json:"region"`
	Attribute  string `json:"attribute,omitempty"`
	NeedBreak  bool   `json:"need_break"`
	Executable bool   `json:"executable"`
}

func newClassifyCmd() *cobra.Command {
	var (
		marker          string
		asJSON          bool
		scriptNeedBreak bool
	)

	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Classify every reflection of a marker in a document",
		Example: `  # Classify a saved response
  xssctx classify response.html -m xsc123

  # From a pipe, as JSON
  curl -s "https://example.com/?q=xsc123" | xssctx classify -m xsc123 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if marker == "" {
				return fmt.Errorf("a marker is required (-m)")
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			document, err := readDocument(cmd, path)
			if err != nil {
				return err
			}

			engine := newEngine(scriptNeedBreak)
			views := make([]matchView, 0)
			for _, m := range engine.Classify(document, marker) {
				needBreak, _ := engine.NeedBreak(m.Name(), document)
				views = append(views, matchView{
					Occurrence: m.Occurrence,
					Offset:     m.Offset,
					Context:    m.Name(),
					Region:     m.Variant.Region().String(),
					Attribute:  m.Attribute,
					NeedBreak:  needBreak,
					Executable: engine.Executable(m, document),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			if len(views) == 0 {
				fmt.Fprintf(out, "marker %q not found\n", marker)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OCCURRENCE\tOFFSET\tCONTEXT\tREGION\tATTRIBUTE\tEXECUTABLE")
			for _, v := range views {
				attr := v.Attribute
				if attr == "" {
					attr = "-"
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%v\n", v.Occurrence, v.Offset, v.Context, v.Region, attr, v.Executable)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&marker, "marker", "m", "", "Marker whose reflections are classified")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print matches as JSON")
	cmd.Flags().BoolVar(&scriptNeedBreak, "script-text-needs-break", false, "Treat plain script text as inert until broken out of")
	return cmd
}

// readDocument reads path, or the command's stdin for "-".
func readDocument(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

func newEngine(scriptNeedBreak bool) *xsscontext.Engine {
	return xsscontext.New(xsscontext.WithPolicy(xsscontext.Policy{
		ScriptTextExecutable: !scriptNeedBreak,
	}))
}
