// Package prettypy checks and fixes the headers and style of python source
// files. Three rule families are covered: the shebang line, the coding
// declaration, and PEP8 style delegated to an external formatter.
//
// The functions here are thin wrappers over internal/driver with canonical
// defaults: the "#!/usr/bin/env python" shebang, the utf-8 coding token,
// .py files, and autopep8. Callers that need custom profiles or tools
// should use the prettypy command instead.
package prettypy

import (
	"context"
	"fmt"

	"prettypy/internal/driver"
	"prettypy/internal/style"
)

// CheckShebang reports whether every python file under dirs starts with the
// canonical shebang line. One non-conformant or unreadable file makes the
// result false; the remaining files are still inspected.
func CheckShebang(dirs ...string) (bool, error) {
	res, err := driver.CheckShebang(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// CheckCoding reports whether every python file under dirs declares the
// canonical coding on one of its first two lines.
func CheckCoding(dirs ...string) (bool, error) {
	res, err := driver.CheckCoding(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// CheckPEP8 reports whether every python file under dirs is clean according
// to the external formatter. It returns an error when the formatter is not
// installed; a style violation alone is not an error.
func CheckPEP8(dirs ...string) (bool, error) {
	res, err := driver.CheckPEP8(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return false, err
	}
	return res.OK, nil
}

// FixShebang rewrites or inserts the shebang line in every non-conformant
// python file under dirs. Bytes outside the first line are left untouched.
func FixShebang(dirs ...string) error {
	res, err := driver.FixShebang(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return err
	}
	return failedErr(res)
}

// FixCoding rewrites or inserts the coding declaration in every
// non-conformant python file under dirs.
func FixCoding(dirs ...string) error {
	res, err := driver.FixCoding(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return err
	}
	return failedErr(res)
}

// FixPEP8 reformats every python file under dirs in place through the
// external formatter. It returns an error when the formatter is not
// installed.
func FixPEP8(dirs ...string) error {
	res, err := driver.FixPEP8(context.Background(), defaultDirs(dirs), nil)
	if err != nil {
		return err
	}
	return failedErr(res)
}

// InstallDeps installs or upgrades the external formatter through pip.
func InstallDeps(ctx context.Context) error {
	return style.Install(ctx)
}

func defaultDirs(dirs []string) []string {
	if len(dirs) == 0 {
		return []string{"."}
	}
	return dirs
}

func failedErr(res *driver.FixResult) error {
	if res.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be fixed", res.Failed)
	}
	return nil
}
