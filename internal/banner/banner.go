package banner

import (
	"fmt"

	"github.com/fatih/color"
)

// Version is the release shown in the banner and by --version.
const Version = "1.0.0"

// GetBanner returns the coloured start-up banner.
func GetBanner() string {
	cyan := color.New(color.FgCyan).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	return "\n" + cyan(`
 __  _____ ___  ___ ___  _  __
 \ \/ / __/ __|/ __| _ \| |/ /__  __
  >  <\__ \__ \ (__|   /  ' <\ \/ /
 /_/\_\___/___/\___|_|_\_|\_\/_/\_\
`) + fmt.Sprintf("\n     %s\n", red("xssctx v"+Version+" - XSS context analysis")) +
		"            " + yellow("by @Serdar715") + "\n\n" +
		cyan("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━") + "\n" +
		"  " + yellow("Contexts:") + " html, attributes, comments, script, style\n" +
		"  " + yellow("Checks:") + "   reflected, stored, browser-verified\n" +
		cyan("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━") + "\n"
}
