package shellmenu

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrKeyNotFound is returned by a Namespace when the addressed key
	// does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrUnsupportedPlatform is returned when the native registry is not
	// available on the running OS.
	ErrUnsupportedPlatform = errors.New("shell menu registry not supported on this platform")
)

// RootPath is the per-user file context-menu root. Namespace paths are
// relative to it.
const RootPath = `Software\Classes\*\shell`

// Sep separates path segments.
const Sep = `\`

// DefaultValue is the property name of a key's unnamed default value.
const DefaultValue = ""

// Pattern: Strategy -- swap the key-value backend without
// changing the registration sequence.

// Namespace is a hierarchical key-value store such as the Windows
// registry. Paths are Sep-separated and relative to RootPath.
type Namespace interface {
	// CreateKey creates path and any missing parents. Creating an
	// existing key succeeds.
	CreateKey(ctx context.Context, path string) error

	// DeleteKeyRecursive removes path and every key below it. It
	// returns an error wrapping ErrKeyNotFound when path is absent.
	DeleteKeyRecursive(ctx context.Context, path string) error

	// SetProperty stores a string value under name on path, replacing
	// any previous value. DefaultValue addresses the unnamed value.
	SetProperty(ctx context.Context, path, name, value string) error
}

// JoinPath joins path segments with Sep.
func JoinPath(parts ...string) string {
	return strings.Join(parts, Sep)
}
