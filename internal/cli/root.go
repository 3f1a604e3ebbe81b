package cli

import (
	"os"

	"github.com/Serdar715/xssctx/internal/banner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Execute runs the xssctx command tree.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "xssctx",
		Short:   "XSS context analysis and audit tool",
		Version: banner.Version,
		Long: banner.GetBanner() + `
xssctx finds where a reflected value lands in an HTML document (tag,
attribute, comment, script string, style block...) and decides whether a
payload can escape that context.

Commands:
  classify   classify every reflection of a marker in a document
  check      test a payload against one context
  contexts   list the known contexts
  scan       audit a URL for reflected and stored XSS
`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newClassifyCmd(),
		newCheckCmd(),
		newContextsCmd(),
		newScanCmd(),
	)
	return rootCmd
}

func init() {
	// Disable color if not a terminal
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}
