package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prettypy/internal/style"
)

var installDepsCmd = &cobra.Command{
	Use:   "install-deps",
	Short: "Install or upgrade the external style formatter via pip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		useColor(cmd)

		if err := style.Install(cmd.Context()); err != nil {
			if errors.Is(err, style.ErrToolNotFound) {
				return fmt.Errorf("install-deps: no python interpreter on PATH: %w", err)
			}
			return fmt.Errorf("install-deps: %w", err)
		}

		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			color.New(color.FgGreen).Fprintln(os.Stdout, "autopep8 installed")
		}
		return nil
	},
}
