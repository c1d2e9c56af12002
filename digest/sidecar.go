package digest

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoSidecar is returned by VerifySidecar when no sidecar file exists.
var ErrNoSidecar = errors.New("no sidecar digest")

// SidecarPath returns the companion file that stores the alg digest of
// path, e.g. "image.iso.sha2_256".
func SidecarPath(path string, alg Algorithm) string {
	return path + "." + alg.String()
}

// SaveSidecar writes the hex digest of res to the sidecar file of path.
func SaveSidecar(path string, alg Algorithm, res Result) error {
	const errCtx = "saving sidecar digest"

	sp := SidecarPath(path, alg)

	if err := os.WriteFile(sp, []byte(res.Hex()), 0o600); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// VerifySidecar compares res against the stored sidecar digest of path.
// Case and surrounding whitespace in the stored value are ignored.
func VerifySidecar(path string, alg Algorithm, res Result) (bool, error) {
	const errCtx = "verifying sidecar digest"

	sp := SidecarPath(path, alg)

	stored, err := os.ReadFile(sp) //nolint:gosec // caller-provided path
	if errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("%s: %w: %s", errCtx, ErrNoSidecar, sp)
	}

	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.EqualFold(
		strings.TrimSpace(string(stored)), res.Hex(),
	), nil
}
