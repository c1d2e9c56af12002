// Package settings loads the optional YAML settings file that supplies
// defaults for flags not given on the command line.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/digest_tool/digest"
	"github.com/byte4ever/digest_tool/shellmenu"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Backend names accepted by Settings.Backend.
const (
	BackendRegistry   = "registry"
	BackendPowerShell = "powershell"
)

// Output formats accepted by Settings.Output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Settings mirrors the settings file.
type Settings struct {
	// Algorithm is the selector used when -d is absent. Empty keeps
	// the built-in default.
	Algorithm string `yaml:"algorithm"`

	// ChunkSize is the read buffer size in bytes; 0 selects the
	// engine default.
	ChunkSize int `yaml:"chunk_size"`

	// Output is the report format: text or json.
	Output string `yaml:"output"`

	// Progress enables the progress display.
	Progress bool `yaml:"progress"`

	// Wait pauses for Enter before exiting.
	Wait bool `yaml:"wait"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Menu configures the context-menu registration.
	Menu Menu `yaml:"menu"`
}

// Menu holds the registration settings.
type Menu struct {
	// Verb is the parent entry name.
	Verb string `yaml:"verb"`

	// Backend selects the namespace: registry or powershell.
	Backend string `yaml:"backend"`

	// CommandTemplate renders each entry's command line.
	CommandTemplate string `yaml:"command_template"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Output:   OutputText,
		Progress: true,
		LogLevel: "info",
		Menu: Menu{
			Verb:            shellmenu.DefaultVerb,
			Backend:         BackendRegistry,
			CommandTemplate: shellmenu.DefaultTemplate,
		},
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating settings: %w", err)
	}

	return filepath.Join(dir, "digest_tool", "config.yaml"), nil
}

// Load reads path over Default and validates the result. When optional
// is true a missing file yields the defaults.
func Load(path string, optional bool) (Settings, error) {
	const errCtx = "loading settings"

	st := Default()

	raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if optional && errors.Is(err, os.ErrNotExist) {
		return st, nil
	}

	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		raw, &st, yaml.DisallowUnknownField(),
	); err != nil {
		return Settings{}, fmt.Errorf(
			"%s: %w: %s: %w", errCtx, ErrInvalidSettings, path, err,
		)
	}

	st.fillDefaults()

	if err := st.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return st, nil
}

// fillDefaults restores the defaults of string fields left empty.
func (st *Settings) fillDefaults() {
	def := Default()

	if st.Output == "" {
		st.Output = def.Output
	}

	if st.LogLevel == "" {
		st.LogLevel = def.LogLevel
	}

	if st.Menu.Verb == "" {
		st.Menu.Verb = def.Menu.Verb
	}

	if st.Menu.Backend == "" {
		st.Menu.Backend = def.Menu.Backend
	}

	if st.Menu.CommandTemplate == "" {
		st.Menu.CommandTemplate = def.Menu.CommandTemplate
	}
}

// Validate checks every field against its allowed values.
func (st Settings) Validate() error {
	if st.Algorithm != "" {
		if _, err := digest.ParseAlgorithm(st.Algorithm); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}

	if st.ChunkSize < 0 {
		return fmt.Errorf(
			"%w: chunk_size must be non-negative, got %d",
			ErrInvalidSettings, st.ChunkSize,
		)
	}

	switch st.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf(
			"%w: unknown output %q", ErrInvalidSettings, st.Output,
		)
	}

	switch st.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf(
			"%w: unknown log_level %q", ErrInvalidSettings, st.LogLevel,
		)
	}

	switch st.Menu.Backend {
	case BackendRegistry, BackendPowerShell:
	default:
		return fmt.Errorf(
			"%w: unknown menu.backend %q", ErrInvalidSettings, st.Menu.Backend,
		)
	}

	if st.Menu.Verb == "" {
		return fmt.Errorf("%w: menu.verb is empty", ErrInvalidSettings)
	}

	return nil
}
