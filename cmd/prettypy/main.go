package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"prettypy/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "prettypy",
	Short: "Check and fix python source file headers and style",
	Long: `prettypy scans directories of python scripts and checks or fixes
the shebang line, the coding declaration, and PEP8 style (via autopep8).`,
}

// main registers subcommands and persistent flags, then executes the root
// command. Exits with status 1 when command execution returns an error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(installDepsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the persistent --color flag and configures fatih/color.
func useColor(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	var enabled bool
	switch mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		enabled = isTerminal(os.Stdout)
	}
	color.NoColor = !enabled
	return enabled
}
