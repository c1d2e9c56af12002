package digesttool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/byte4ever/digest_tool/digest"
	"github.com/byte4ever/digest_tool/progress"
	"github.com/byte4ever/digest_tool/shellmenu"
)

// ErrDigestMismatch is returned when the computed digest differs from the
// stored sidecar digest.
var ErrDigestMismatch = errors.New("digest does not match sidecar")

// ErrSaveAndVerify is returned when a run asks to both write and check
// the sidecar; saving first would overwrite the digest under test.
var ErrSaveAndVerify = errors.New("save and verify are mutually exclusive")

// ProgressFactory builds the progress sink for a source of size bytes.
type ProgressFactory func(size int64, description string) progress.Sink

// Runner executes a resolved Config.
type Runner struct {
	// Engine streams the source. The zero value uses the default chunk
	// size.
	Engine digest.Engine

	// Manager registers and removes the menu entries. Required for the
	// setup and clean-up modes.
	Manager *shellmenu.Manager

	// Progress builds the progress sink. Nil disables progress.
	Progress ProgressFactory

	// Now is the clock used for the elapsed time. Defaults to time.Now.
	Now func() time.Time

	// Save writes the sidecar digest file after a digest run.
	Save bool

	// Verify compares the result against the sidecar digest file.
	Verify bool

	// DryRun applies the menu steps to a scratch in-memory namespace
	// instead of Manager.Namespace.
	DryRun bool
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}

// Run executes cfg and returns its Report. A sidecar mismatch returns the
// full report together with an error wrapping ErrDigestMismatch; every
// other failure returns a zero Report.
func (r *Runner) Run(ctx context.Context, cfg Config) (Report, error) {
	switch cfg.Mode {
	case ModeDigest:
		return r.runDigest(cfg)
	case ModeSetup, ModeCleanup:
		return r.runMenu(ctx, cfg.Mode)
	default:
		return Report{}, fmt.Errorf("running: unknown mode %s", cfg.Mode)
	}
}

type noopSink struct{}

func (noopSink) Update(uint64) {}
func (noopSink) Finish()       {}

func (r *Runner) sink(size int64, cfg Config) progress.Sink {
	if r.Progress == nil {
		return noopSink{}
	}

	return r.Progress(size, cfg.Algorithm.String())
}

func (r *Runner) runDigest(cfg Config) (rep Report, err error) {
	const errCtx = "digesting"

	if r.Save && r.Verify {
		return Report{}, fmt.Errorf("%s: %w", errCtx, ErrSaveAndVerify)
	}

	if cfg.Source == "" {
		return Report{}, fmt.Errorf("%s: %w", errCtx, ErrMissingSource)
	}

	start := r.now()

	fi, err := os.Open(cfg.Source) //nolint:gosec // path from CLI flag
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w: %w", errCtx, digest.ErrIO, err)
	}

	defer func() {
		if cErr := fi.Close(); cErr != nil && err == nil {
			rep = Report{}
			err = fmt.Errorf("%s: %w: %w", errCtx, digest.ErrIO, cErr)
		}
	}()

	st, err := fi.Stat()
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w: %w", errCtx, digest.ErrIO, err)
	}

	slog.Debug(
		"digesting",
		"source", cfg.Source,
		"algorithm", cfg.Algorithm.String(),
		"size", st.Size(),
	)

	sk := r.sink(st.Size(), cfg)

	res, err := r.Engine.Compute(fi, cfg.Algorithm.New(), sk.Update)

	sk.Finish()

	if err != nil {
		return Report{}, fmt.Errorf("%s: %s: %w", errCtx, cfg.Source, err)
	}

	rep = Report{
		Mode:      ModeDigest,
		Source:    cfg.Source,
		Algorithm: cfg.Algorithm.String(),
		ByteCount: res.ByteCount,
		Digest:    res.Digest,
		Elapsed:   r.now().Sub(start),
	}

	if r.Save {
		if err := digest.SaveSidecar(cfg.Source, cfg.Algorithm, res); err != nil {
			return Report{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		rep.Sidecar = digest.SidecarPath(cfg.Source, cfg.Algorithm)
	}

	if r.Verify {
		ok, err := digest.VerifySidecar(cfg.Source, cfg.Algorithm, res)
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		rep.Sidecar = digest.SidecarPath(cfg.Source, cfg.Algorithm)
		rep.Verified = &ok

		if !ok {
			return rep, fmt.Errorf(
				"%s: %w: %s", errCtx, ErrDigestMismatch, rep.Sidecar,
			)
		}
	}

	return rep, nil
}

func (r *Runner) runMenu(ctx context.Context, mode Mode) (Report, error) {
	errCtx := "running " + mode.String()

	if r.Manager == nil {
		return Report{}, fmt.Errorf("%s: no menu manager configured", errCtx)
	}

	if r.DryRun {
		return r.dryRunMenu(ctx, mode)
	}

	rep := Report{Mode: mode}

	if mode == ModeSetup {
		if err := r.Manager.Register(ctx); err != nil {
			return Report{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		rep.Message = "Context menu entries registered."

		return rep, nil
	}

	if err := r.Manager.Unregister(ctx); err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	rep.Message = "Context menu entries removed."

	return rep, nil
}

// dryRunMenu runs the plan for mode on a copy of the manager bound to an
// empty in-memory namespace and lists the applied steps.
func (r *Runner) dryRunMenu(ctx context.Context, mode Mode) (Report, error) {
	errCtx := "dry-running " + mode.String()

	mem := shellmenu.NewMemory()
	sim := *r.Manager
	sim.Namespace = mem

	var (
		steps []shellmenu.Step
		err   error
	)

	if mode == ModeSetup {
		steps, err = sim.RegisterPlan()
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		err = sim.Register(ctx)
	} else {
		steps = sim.UnregisterPlan()
		err = sim.Unregister(ctx)
	}

	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	rep := Report{
		Mode:    mode,
		Steps:   make([]string, len(steps)),
		Message: fmt.Sprintf("Dry run: %d keys in the simulated tree.", len(mem.Keys())),
	}

	for i, st := range steps {
		rep.Steps[i] = st.Name
	}

	return rep, nil
}
