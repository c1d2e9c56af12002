// Package exec runs external commands and captures their
// combined output. It backs the shell-out namespace
// backend.
package exec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	oe "os/exec"
	"strings"
)

// Runner runs the named command and returns its combined
// stdout+stderr output.
type Runner func(
	ctx context.Context,
	name string,
	arg ...string,
) (string, error)

// Ex executes the named command and returns combined
// stdout+stderr output. A non-zero exit is reported as an
// error wrapping *os/exec.ExitError; use ExitCode to read
// the status.
func Ex(
	ctx context.Context,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := oe.CommandContext(ctx, name, arg...)

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s: %w",
			errCtx, name, err,
		)
	}

	return string(by), nil
}

// ExitCode extracts the process exit status from an error
// returned by Ex. It reports false when err does not carry
// one, e.g. when the binary could not be started.
func ExitCode(err error) (int, bool) {
	var ee *oe.ExitError
	if !errors.As(err, &ee) {
		return 0, false
	}

	return ee.ExitCode(), true
}
