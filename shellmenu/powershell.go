package shellmenu

import (
	"context"
	"fmt"
	"strings"

	"github.com/byte4ever/digest_tool/exec"
)

// notFoundExit is the exit status the delete script uses to signal an
// absent key.
const notFoundExit = 3

// PowerShell is a Namespace that edits the registry by running
// powershell.exe cmdlets against the HKCU: drive.
type PowerShell struct {
	// Binary is the PowerShell executable.
	Binary string

	// Root is the provider path that namespace paths are appended to.
	Root string

	// Run executes Binary. Defaults to exec.Ex.
	Run exec.Runner
}

// NewPowerShell returns a PowerShell namespace rooted at the per-user
// file context menu.
func NewPowerShell() *PowerShell {
	return &PowerShell{
		Binary: "powershell.exe",
		Root:   `HKCU:\` + RootPath,
		Run:    exec.Ex,
	}
}

// quote renders s as a single-quoted PowerShell literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (ps *PowerShell) full(path string) string {
	return ps.Root + Sep + path
}

func (ps *PowerShell) invoke(ctx context.Context, script string) error {
	run := ps.Run
	if run == nil {
		run = exec.Ex
	}

	out, err := run(
		ctx,
		ps.Binary,
		"-NoProfile",
		"-NonInteractive",
		"-Command",
		"$ErrorActionPreference = 'Stop'; "+script,
	)
	if err != nil {
		if code, ok := exec.ExitCode(err); ok && code == notFoundExit {
			return ErrKeyNotFound
		}

		return fmt.Errorf("%w: %s", err, strings.TrimSpace(out))
	}

	return nil
}

// CreateKey runs New-Item -Force, which also creates missing parents.
func (ps *PowerShell) CreateKey(ctx context.Context, path string) error {
	const errCtx = "creating key"

	script := fmt.Sprintf(
		"New-Item -Path %s -Force | Out-Null", quote(ps.full(path)),
	)

	if err := ps.invoke(ctx, script); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	return nil
}

// DeleteKeyRecursive runs Remove-Item -Recurse when the key exists and
// reports ErrKeyNotFound otherwise.
func (ps *PowerShell) DeleteKeyRecursive(ctx context.Context, path string) error {
	const errCtx = "deleting key"

	lit := quote(ps.full(path))
	script := fmt.Sprintf(
		"if (Test-Path -LiteralPath %s) "+
			"{ Remove-Item -LiteralPath %s -Recurse -Force } "+
			"else { exit %d }",
		lit, lit, notFoundExit,
	)

	if err := ps.invoke(ctx, script); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, path, err)
	}

	return nil
}

// SetProperty runs New-ItemProperty -Force. DefaultValue maps to the
// "(default)" property.
func (ps *PowerShell) SetProperty(
	ctx context.Context,
	path string,
	name string,
	value string,
) error {
	const errCtx = "setting property"

	if name == DefaultValue {
		name = "(default)"
	}

	script := fmt.Sprintf(
		"New-ItemProperty -LiteralPath %s -Name %s -Value %s -Force | Out-Null",
		quote(ps.full(path)), quote(name), quote(value),
	)

	if err := ps.invoke(ctx, script); err != nil {
		return fmt.Errorf("%s %q on %s: %w", errCtx, name, path, err)
	}

	return nil
}
