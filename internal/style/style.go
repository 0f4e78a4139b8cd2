// Package style is the boundary to the external formatter. The tool is
// injected as an interface so the orchestrator and tests never hard-code a
// subprocess call.
package style

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrToolNotFound reports that the external formatter is not installed.
// Distinct from a style violation: callers must abort style operations on it
// instead of treating the file as non-conforming.
var ErrToolNotFound = errors.New("external formatter not found")

// Tool checks and rewrites the style of one path. Check reports whether the
// path already conforms; Fix rewrites files in place. Both treat the tool's
// exit status as the source of truth and never inspect rewritten content.
type Tool interface {
	Name() string
	Check(ctx context.Context, path string) (clean bool, diff []byte, err error)
	Fix(ctx context.Context, path string) error
}

// Autopep8 runs the autopep8 formatter as a subprocess.
type Autopep8 struct {
	Executable    string // formatter binary, default "autopep8"
	MaxLineLength int    // default 99
	ExtraArgs     []string
}

// NewAutopep8 returns an Autopep8 with the default invocation.
func NewAutopep8() *Autopep8 {
	return &Autopep8{Executable: "autopep8", MaxLineLength: 99}
}

func (a *Autopep8) Name() string {
	if a.Executable != "" {
		return a.Executable
	}
	return "autopep8"
}

func (a *Autopep8) commonArgs() []string {
	maxLen := a.MaxLineLength
	if maxLen <= 0 {
		maxLen = 99
	}
	args := []string{"--recursive", "--aggressive", "--aggressive", "--max-line-length", strconv.Itoa(maxLen)}
	return append(args, a.ExtraArgs...)
}

func (a *Autopep8) lookup() (string, error) {
	exe, err := exec.LookPath(a.Name())
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.Name(), ErrToolNotFound)
	}
	return exe, nil
}

// Check runs the formatter in diff mode. A zero exit status with empty
// output means the path conforms; any produced diff means it does not.
func (a *Autopep8) Check(ctx context.Context, path string) (bool, []byte, error) {
	exe, err := a.lookup()
	if err != nil {
		return false, nil, err
	}
	args := append(a.commonArgs(), "--diff", path)
	cmd := exec.CommandContext(ctx, exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return false, nil, fmt.Errorf("%s --diff %s: %w: %s", a.Name(), path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	diff := stdout.Bytes()
	return len(bytes.TrimSpace(diff)) == 0, diff, nil
}

// Fix runs the formatter in in-place mode and trusts its exit status.
func (a *Autopep8) Fix(ctx context.Context, path string) error {
	exe, err := a.lookup()
	if err != nil {
		return err
	}
	args := append(a.commonArgs(), "--in-place", path)
	cmd := exec.CommandContext(ctx, exe, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s --in-place %s: %w: %s", a.Name(), path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// Install upgrades the formatter through pip. Kept beside the tool it
// installs; the CLI's install-deps command is the only caller.
func Install(ctx context.Context) error {
	python, err := exec.LookPath("python")
	if err != nil {
		if python, err = exec.LookPath("python3"); err != nil {
			return fmt.Errorf("python: %w", ErrToolNotFound)
		}
	}
	cmd := exec.CommandContext(ctx, python, "-m", "pip", "install", "--upgrade", "autopep8")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pip install autopep8: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
