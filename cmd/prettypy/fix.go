package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prettypy/internal/driver"
	"prettypy/internal/observ"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [directory...]",
	Short: "Rewrite files so they conform to the requested rules",
	Long: `Walk the given directories (default ".") and fix every non-conformant
file in place. Header fixes touch only the offending line; style fixes are
delegated to the external formatter.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().String("rule", "all", "rule to fix (shebang|coding|pep8|all)")
	fixCmd.Flags().Bool("no-progress", false, "disable the progress display")
}

type fixOp struct {
	rule driver.Rule
	run  func(context.Context, []string, *driver.Options) (*driver.FixResult, error)
}

func selectFixOps(rule string) ([]fixOp, error) {
	all := []fixOp{
		{rule: driver.RuleShebang, run: driver.FixShebang},
		{rule: driver.RuleCoding, run: driver.FixCoding},
		{rule: driver.RulePEP8, run: driver.FixPEP8},
	}
	if rule == "all" {
		return all, nil
	}
	for _, op := range all {
		if string(op.rule) == rule {
			return []fixOp{op}, nil
		}
	}
	return nil, fmt.Errorf("unknown rule %q (must be shebang, coding, pep8 or all)", rule)
}

func runFix(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	rule, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	ops, err := selectFixOps(rule)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd)
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	colored := useColor(cmd)
	withUI := colored && !noProgress && !quiet && isTerminal(os.Stdout)
	timer := observ.NewTimer()

	failed := 0
	for _, op := range ops {
		phase := timer.Begin("fix " + string(op.rule))
		var res *driver.FixResult
		if withUI {
			res, err = runFixWithUI(cmd.Context(), dirs, opts, op)
		} else {
			res, err = op.run(cmd.Context(), dirs, opts)
		}
		if err != nil {
			timer.End(phase, "aborted")
			return fmt.Errorf("fix %s: %w", op.rule, err)
		}
		timer.End(phase, fmt.Sprintf("%d files", res.Files))

		failed += res.Failed
		if !quiet {
			renderFixResult(os.Stdout, op.rule, res)
		}
	}

	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if failed > 0 {
		return fmt.Errorf("fix: %d file(s) could not be fixed", failed)
	}
	return nil
}

// renderFixResult prints a short per-rule summary in the spirit of a build
// tool report: what changed, what was skipped and why.
func renderFixResult(w *os.File, rule driver.Rule, res *driver.FixResult) {
	heading := color.New(color.Bold)
	dim := color.New(color.Faint)

	switch {
	case rule == driver.RulePEP8:
		if len(res.StyleFixed) == 0 {
			heading.Fprintf(w, "pep8: nothing to reformat (%d files)\n", res.Files)
			return
		}
		heading.Fprintf(w, "pep8: reformatted %d file(s)\n", len(res.StyleFixed))
		for _, path := range res.StyleFixed {
			fmt.Fprintf(w, "  %s\n", path)
		}
	case res.Applied == nil || len(res.Applied.FileChanges) == 0:
		heading.Fprintf(w, "%s: nothing to fix (%d files)\n", rule, res.Files)
	default:
		heading.Fprintf(w, "%s: fixed %d file(s)\n", rule, len(res.Applied.FileChanges))
		for _, change := range res.Applied.FileChanges {
			fmt.Fprintf(w, "  %s (%d edit(s))\n", change.Path, change.EditCount)
		}
	}

	if res.Applied != nil {
		for _, skipped := range res.Applied.Skipped {
			dim.Fprintf(w, "  skipped %s: %s\n", skipped.Title, skipped.Reason)
		}
	}
	if res.Skipped > 0 {
		dim.Fprintf(w, "  %d binary file(s) skipped\n", res.Skipped)
	}
	if res.Failed > 0 {
		color.New(color.FgRed).Fprintf(w, "  %d file(s) failed\n", res.Failed)
	}
}
