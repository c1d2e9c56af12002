package shellmenu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/byte4ever/digest_tool/digest"
)

// ErrRegistration is matched by every error returned from Register and
// Unregister.
var ErrRegistration = errors.New("shell menu registration failed")

// DefaultVerb is the name of the parent menu entry.
const DefaultVerb = "DigestTool"

// Entry describes one child verb of the menu.
type Entry struct {
	// VerbID is the key name under <verb>\shell, the algorithm token.
	VerbID string

	// DisplayLabel is the text shown in the menu.
	DisplayLabel string

	// CommandLine is what the shell runs for the clicked file.
	CommandLine string
}

// StepError reports the step at which a registration sequence stopped.
// Steps before it remain applied.
type StepError struct {
	Step string
	Err  error
}

func (se *StepError) Error() string {
	return fmt.Sprintf("%v: step %q: %v", ErrRegistration, se.Step, se.Err)
}

// Unwrap exposes both ErrRegistration and the backend error.
func (se *StepError) Unwrap() []error {
	return []error{ErrRegistration, se.Err}
}

// Step is one named namespace primitive.
type Step struct {
	// Name identifies the step, e.g. "create-key DigestTool".
	Name string

	run func(ctx context.Context) error
}

// Manager builds and applies the menu tree on a Namespace.
type Manager struct {
	// Namespace receives the primitives.
	Namespace Namespace

	// Verb is the parent key name. Defaults to DefaultVerb.
	Verb string

	// Executable is the binary the entries launch, used verbatim.
	// Defaults to the absolute path of the running executable.
	Executable string

	// Target is the shell placeholder for the clicked file. Defaults
	// to DefaultTarget.
	Target string

	// Template renders each command line. Defaults to
	// DefaultTemplate.
	Template string
}

func (m *Manager) verb() string {
	if m.Verb == "" {
		return DefaultVerb
	}

	return m.Verb
}

func (m *Manager) executable() (string, error) {
	if m.Executable != "" {
		return m.Executable, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}

	return filepath.Abs(exe)
}

// Entries returns one Entry per algorithm in declaration order.
func (m *Manager) Entries() ([]Entry, error) {
	const errCtx = "building entries"

	exe, err := m.executable()
	if err != nil {
		return nil, fmt.Errorf("%s: resolving executable: %w", errCtx, err)
	}

	tpl := m.Template
	if tpl == "" {
		tpl = DefaultTemplate
	}

	target := m.Target
	if target == "" {
		target = DefaultTarget
	}

	algs := digest.Algorithms()
	out := make([]Entry, 0, len(algs))

	for _, alg := range algs {
		out = append(out, Entry{
			VerbID:       alg.String(),
			DisplayLabel: alg.Label(),
			CommandLine:  CommandLine(tpl, exe, target, alg),
		})
	}

	return out, nil
}

func (m *Manager) createKey(path string) Step {
	return Step{
		Name: "create-key " + path,
		run: func(ctx context.Context) error {
			return m.Namespace.CreateKey(ctx, path)
		},
	}
}

func (m *Manager) setProperty(path, name, value string) Step {
	label := name
	if label == DefaultValue {
		label = "(default)"
	}

	return Step{
		Name: "set-property " + path + " " + label,
		run: func(ctx context.Context) error {
			return m.Namespace.SetProperty(ctx, path, name, value)
		},
	}
}

// removeTree deletes the parent key. An absent key counts as removed.
func (m *Manager) removeTree() Step {
	path := m.verb()

	return Step{
		Name: "delete-key-recursive " + path,
		run: func(ctx context.Context) error {
			err := m.Namespace.DeleteKeyRecursive(ctx, path)
			if errors.Is(err, ErrKeyNotFound) {
				slog.Debug("nothing to remove", "path", path)

				return nil
			}

			return err
		},
	}
}

// RegisterPlan returns the ordered steps Register applies: remove the
// parent, create the parent and every child command key, set the parent
// metadata, then each child's label and command line.
func (m *Manager) RegisterPlan() ([]Step, error) {
	const errCtx = "planning registration"

	entries, err := m.Entries()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	verb := m.verb()
	steps := []Step{
		m.removeTree(),
		m.createKey(verb),
	}

	for _, en := range entries {
		steps = append(
			steps, m.createKey(JoinPath(verb, "shell", en.VerbID, "command")),
		)
	}

	steps = append(
		steps,
		m.setProperty(verb, "MUIVerb", verb),
		m.setProperty(verb, "SubCommands", ""),
	)

	for _, en := range entries {
		child := JoinPath(verb, "shell", en.VerbID)

		steps = append(
			steps,
			m.setProperty(child, DefaultValue, en.DisplayLabel),
			m.setProperty(JoinPath(child, "command"), DefaultValue, en.CommandLine),
		)
	}

	return steps, nil
}

// UnregisterPlan returns the single step Unregister applies.
func (m *Manager) UnregisterPlan() []Step {
	return []Step{m.removeTree()}
}

// Register rebuilds the menu tree from a clean slate. It is idempotent.
// Registration is not transactional: on failure the returned *StepError
// names the failed step and every earlier step stays applied.
func (m *Manager) Register(ctx context.Context) error {
	steps, err := m.RegisterPlan()
	if err != nil {
		return &StepError{Step: "plan", Err: err}
	}

	return m.apply(ctx, steps)
}

// Unregister removes the menu tree. Removing an absent tree succeeds.
func (m *Manager) Unregister(ctx context.Context) error {
	return m.apply(ctx, m.UnregisterPlan())
}

func (m *Manager) apply(ctx context.Context, steps []Step) error {
	if m.Namespace == nil {
		return &StepError{Step: "init", Err: errors.New("no namespace configured")}
	}

	for _, st := range steps {
		slog.Debug("applying", "step", st.Name)

		if err := st.run(ctx); err != nil {
			slog.Error("step failed", "step", st.Name, "error", err)

			return &StepError{Step: st.Name, Err: err}
		}
	}

	return nil
}
