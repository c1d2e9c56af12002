package digesttool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/byte4ever/digest_tool/digest"
)

var (
	// ErrConflictingModes is returned when setup and clean-up are both
	// requested.
	ErrConflictingModes = errors.New("setup and clean up are mutually exclusive")

	// ErrMissingSource is returned when digest mode has no input file.
	ErrMissingSource = errors.New("no input file given")
)

// Mode is the single action of an invocation.
type Mode int

// Modes.
const (
	ModeDigest Mode = iota
	ModeSetup
	ModeCleanup
)

func (m Mode) String() string {
	switch m {
	case ModeDigest:
		return "digest"
	case ModeSetup:
		return "setup"
	case ModeCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText renders the mode name in JSON reports.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Options are the raw command-line inputs.
type Options struct {
	// InputFile is the -i value; empty when absent.
	InputFile string

	// Digest is the -d value, meaningful only when DigestSet.
	Digest string

	// DigestSet reports whether -d (or a settings default) was given.
	DigestSet bool

	// Setup requests registration of the menu entries.
	Setup bool

	// CleanUp requests removal of the menu entries.
	CleanUp bool
}

// Config is a resolved invocation.
type Config struct {
	// Source is the file to digest; empty when absent.
	Source string

	// Algorithm selects the hash function.
	Algorithm digest.Algorithm

	// Mode is the action to run.
	Mode Mode
}

// Resolve validates opts and derives the Config. Conflicting modes are
// rejected before anything else is looked at.
func Resolve(opts Options) (Config, error) {
	const errCtx = "resolving configuration"

	if opts.Setup && opts.CleanUp {
		return Config{}, fmt.Errorf("%s: %w", errCtx, ErrConflictingModes)
	}

	alg, err := digest.Resolve(opts.Digest, opts.DigestSet)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg := Config{
		Source:    opts.InputFile,
		Algorithm: alg,
		Mode:      ModeDigest,
	}

	switch {
	case opts.Setup:
		cfg.Mode = ModeSetup
	case opts.CleanUp:
		cfg.Mode = ModeCleanup
	}

	if cfg.Mode != ModeDigest && cfg.Source != "" {
		slog.Warn(
			"input file ignored",
			"mode", cfg.Mode.String(),
			"input_file", cfg.Source,
		)
	}

	return cfg, nil
}
