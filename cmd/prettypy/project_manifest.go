package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"prettypy/internal/driver"
	"prettypy/internal/header"
	"prettypy/internal/style"
	"prettypy/internal/walker"
)

// projectManifest is an optional prettypy.toml discovered by walking up from
// the working directory. Every section and key is optional; absent values
// fall back to the canonical python defaults.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Header headerConfig `toml:"header"`
	Files  filesConfig  `toml:"files"`
	Style  styleConfig  `toml:"style"`
}

type headerConfig struct {
	Shebang string `toml:"shebang"`
	Coding  string `toml:"coding"`
}

type filesConfig struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
}

type styleConfig struct {
	Tool          string   `toml:"tool"`
	MaxLineLength int      `toml:"max_line_length"`
	ExtraArgs     []string `toml:"extra_args"`
}

func findPrettypyToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "prettypy.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findPrettypyToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// buildOptions turns the manifest plus persistent flags into driver options.
func buildOptions(cmd *cobra.Command) (*driver.Options, error) {
	manifest, found, err := loadProjectManifest(".")
	if err != nil {
		return nil, err
	}

	opts := &driver.Options{Stderr: cmd.ErrOrStderr()}

	if maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err == nil {
		opts.MaxDiagnostics = maxDiags
	}

	if !found {
		return opts, nil
	}

	shebang := strings.TrimSpace(manifest.Config.Header.Shebang)
	coding := strings.TrimSpace(manifest.Config.Header.Coding)
	if shebang != "" || coding != "" {
		if shebang == "" {
			shebang = header.CanonicalShebang
		}
		if coding == "" {
			coding = header.CanonicalCodingToken
		}
		profile, err := header.NewProfile(shebang, coding)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		opts.Profile = &profile
	}

	if files := manifest.Config.Files; len(files.Extensions) > 0 || len(files.Exclude) > 0 {
		opts.Predicate = filePredicate(files.Extensions, files.Exclude)
	}

	tool := style.NewAutopep8()
	if name := strings.TrimSpace(manifest.Config.Style.Tool); name != "" {
		tool.Executable = name
	}
	if n := manifest.Config.Style.MaxLineLength; n > 0 {
		tool.MaxLineLength = n
	}
	tool.ExtraArgs = manifest.Config.Style.ExtraArgs
	opts.Tool = tool

	return opts, nil
}

// filePredicate builds the candidate predicate from manifest settings.
// Extensions default to .py; exclude entries are glob patterns matched
// against the basename.
func filePredicate(exts, exclude []string) walker.Predicate {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		normalized = []string{".py"}
	}
	return func(path string) bool {
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") {
			return false
		}
		for _, pattern := range exclude {
			if ok, err := filepath.Match(pattern, base); err == nil && ok {
				return false
			}
		}
		for _, ext := range normalized {
			if strings.EqualFold(filepath.Ext(base), ext) {
				return true
			}
		}
		return false
	}
}
