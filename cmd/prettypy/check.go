package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prettypy/internal/diag"
	"prettypy/internal/diagfmt"
	"prettypy/internal/driver"
	"prettypy/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [directory...]",
	Short: "Check shebang, coding and style conformance without modifying anything",
	Long: `Walk the given directories (default ".") and report every file that does
not conform to the requested rules. Exits non-zero when any file fails.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("rule", "all", "rule to check (shebang|coding|pep8|all)")
	checkCmd.Flags().String("format", "text", "output format (text|json)")
	checkCmd.Flags().Bool("fixes", false, "show available fixes for each finding")
}

type checkOp struct {
	rule string
	run  func(context.Context, []string, *driver.Options) (*driver.CheckResult, error)
}

func selectCheckOps(rule string) ([]checkOp, error) {
	all := []checkOp{
		{rule: "shebang", run: driver.CheckShebang},
		{rule: "coding", run: driver.CheckCoding},
		{rule: "pep8", run: driver.CheckPEP8},
	}
	if rule == "all" {
		return all, nil
	}
	for _, op := range all {
		if op.rule == rule {
			return []checkOp{op}, nil
		}
	}
	return nil, fmt.Errorf("unknown rule %q (must be shebang, coding, pep8 or all)", rule)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	rule, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	showFixes, err := cmd.Flags().GetBool("fixes")
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

	ops, err := selectCheckOps(rule)
	if err != nil {
		return err
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("check: unsupported output format %q", outputFormat)
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
	timer := observ.NewTimer()

	type ruleReport struct {
		Rule    string          `json:"rule"`
		OK      bool            `json:"ok"`
		Details json.RawMessage `json:"details"`
	}
	reports := make([]ruleReport, 0, len(ops))

	failures := 0
	for _, op := range ops {
		phase := timer.Begin("check " + op.rule)
		res, err := op.run(cmd.Context(), dirs, opts)
		if err != nil {
			timer.End(phase, "aborted")
			return fmt.Errorf("check %s: %w", op.rule, err)
		}
		timer.End(phase, fmt.Sprintf("%d files", res.Files))

		res.Bag.Sort()
		res.Bag.Dedup()
		if !res.OK {
			ruleFailures := 0
			for _, d := range res.Bag.Items() {
				if d.Severity >= diag.SevError {
					ruleFailures++
				}
			}
			if ruleFailures == 0 {
				ruleFailures = 1 // unreadable subtrees fail without findings
			}
			failures += ruleFailures
		}

		switch outputFormat {
		case "text":
			if !quiet {
				diagfmt.Pretty(os.Stdout, res.Bag, res.FileSet, diagfmt.PrettyOpts{
					Color:       colored,
					ShowContext: true,
					ShowFixes:   showFixes,
				})
			}
		case "json":
			var buf bytes.Buffer
			err := diagfmt.JSON(&buf, res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeFixes:     showFixes,
				Max:              int(res.Bag.Cap()),
			})
			if err != nil {
				return err
			}
			reports = append(reports, ruleReport{Rule: op.rule, OK: res.OK, Details: buf.Bytes()})
		}
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	}

	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if failures > 0 {
		cmd.SilenceErrors = outputFormat == "json" || quiet
		return fmt.Errorf("check: %d problem(s) found", failures)
	}
	if !quiet && outputFormat == "text" {
		fmt.Fprintln(os.Stdout, "all files conform")
	}
	return nil
}
