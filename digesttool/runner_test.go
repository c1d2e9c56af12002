package digesttool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/digest_tool/digest"
	"github.com/byte4ever/digest_tool/digesttool"
	"github.com/byte4ever/digest_tool/progress"
	"github.com/byte4ever/digest_tool/shellmenu"
)

const (
	abcSha256   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	emptySha256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(tb testing.TB, content string) string {
	tb.Helper()

	pa := filepath.Join(tb.TempDir(), "input.bin")
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return func() time.Time {
		cur := now
		now = now.Add(step)

		return cur
	}
}

type recordSink struct {
	totals   []uint64
	finished int
}

func (rs *recordSink) Update(total uint64) { rs.totals = append(rs.totals, total) }
func (rs *recordSink) Finish()             { rs.finished++ }

func digestCfg(source string) digesttool.Config {
	return digesttool.Config{
		Source:    source,
		Algorithm: digest.Sha2_256,
		Mode:      digesttool.ModeDigest,
	}
}

func TestRunner_digest(t *testing.T) {
	t.Parallel()

	var (
		sink     recordSink
		gotSize  int64
		gotLabel string
	)

	rn := &digesttool.Runner{
		Engine: digest.Engine{ChunkSize: 1},
		Now:    stepClock(1500 * time.Millisecond),
		Progress: func(size int64, description string) progress.Sink {
			gotSize, gotLabel = size, description

			return &sink
		},
	}

	rep, err := rn.Run(context.Background(), digestCfg(writeTemp(t, "abc")))

	require.NoError(t, err)
	assert.Equal(t, digesttool.ModeDigest, rep.Mode)
	assert.Equal(t, "sha2_256", rep.Algorithm)
	assert.Equal(t, uint64(3), rep.ByteCount)
	assert.Equal(t, uint64(0), rep.SizeMB())
	assert.Equal(t, abcSha256, digest.Result{Digest: rep.Digest}.Hex())
	assert.Equal(t, 1500*time.Millisecond, rep.Elapsed)
	assert.Empty(t, rep.Sidecar)
	assert.Nil(t, rep.Verified)

	assert.Equal(t, int64(3), gotSize)
	assert.Equal(t, "sha2_256", gotLabel)
	assert.Equal(t, []uint64{1, 2, 3}, sink.totals)
	assert.Equal(t, 1, sink.finished)
}

func TestRunner_digest_empty_file(t *testing.T) {
	t.Parallel()

	var sink recordSink

	rn := &digesttool.Runner{
		Progress: func(int64, string) progress.Sink { return &sink },
	}

	rep, err := rn.Run(context.Background(), digestCfg(writeTemp(t, "")))

	require.NoError(t, err)
	assert.Equal(t, uint64(0), rep.ByteCount)
	assert.Equal(t, emptySha256, digest.Result{Digest: rep.Digest}.Hex())
	assert.Equal(t, []uint64{0}, sink.totals)
}

func TestRunner_digest_without_progress(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{}

	rep, err := rn.Run(context.Background(), digestCfg(writeTemp(t, "abc")))

	require.NoError(t, err)
	assert.Equal(t, abcSha256, digest.Result{Digest: rep.Digest}.Hex())
}

func TestRunner_digest_missing_source(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{}

	_, err := rn.Run(context.Background(), digestCfg(""))

	assert.ErrorIs(t, err, digesttool.ErrMissingSource)
}

func TestRunner_digest_unreadable_source(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{}

	rep, err := rn.Run(
		context.Background(),
		digestCfg(filepath.Join(t.TempDir(), "missing.bin")),
	)

	require.ErrorIs(t, err, digest.ErrIO)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, digesttool.Report{}, rep)
}

func TestRunner_digest_save_then_verify(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "abc")

	saver := &digesttool.Runner{Save: true}

	rep, err := saver.Run(context.Background(), digestCfg(src))

	require.NoError(t, err)
	assert.Equal(t, src+".sha2_256", rep.Sidecar)

	stored, err := os.ReadFile(rep.Sidecar)
	require.NoError(t, err)
	assert.Equal(t, abcSha256, string(stored))

	verifier := &digesttool.Runner{Verify: true}

	rep, err = verifier.Run(context.Background(), digestCfg(src))

	require.NoError(t, err)
	require.NotNil(t, rep.Verified)
	assert.True(t, *rep.Verified)
}

func TestRunner_digest_verify_mismatch_keeps_report(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "abc")
	require.NoError(t, os.WriteFile(src+".sha2_256", []byte(emptySha256), 0o600))

	rn := &digesttool.Runner{Verify: true}

	rep, err := rn.Run(context.Background(), digestCfg(src))

	require.ErrorIs(t, err, digesttool.ErrDigestMismatch)
	require.NotNil(t, rep.Verified)
	assert.False(t, *rep.Verified)
	assert.Equal(t, uint64(3), rep.ByteCount)
}

func TestRunner_digest_verify_without_sidecar(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{Verify: true}

	_, err := rn.Run(context.Background(), digestCfg(writeTemp(t, "abc")))

	assert.ErrorIs(t, err, digest.ErrNoSidecar)
}

func TestRunner_setup_then_cleanup(t *testing.T) {
	t.Parallel()

	mem := shellmenu.NewMemory()
	rn := &digesttool.Runner{
		Manager: &shellmenu.Manager{
			Namespace:  mem,
			Executable: `C:\Tools\digest_tool.exe`,
		},
	}

	rep, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeSetup},
	)

	require.NoError(t, err)
	assert.Equal(t, "Context menu entries registered.", rep.Message)

	verb, ok := mem.Property(shellmenu.DefaultVerb, "MUIVerb")
	require.True(t, ok)
	assert.Equal(t, shellmenu.DefaultVerb, verb)
	assert.Len(t, mem.Children(shellmenu.JoinPath(shellmenu.DefaultVerb, "shell")), 4)

	rep, err = rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeCleanup},
	)

	require.NoError(t, err)
	assert.Equal(t, "Context menu entries removed.", rep.Message)
	assert.Empty(t, mem.Keys())
}

func TestRunner_cleanup_without_entries_succeeds(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{
		Manager: &shellmenu.Manager{Namespace: shellmenu.NewMemory()},
	}

	_, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeCleanup},
	)

	assert.NoError(t, err)
}

func TestRunner_setup_without_namespace(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{Manager: &shellmenu.Manager{}}

	_, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeSetup},
	)

	var se *shellmenu.StepError

	require.ErrorAs(t, err, &se)
	assert.Equal(t, "init", se.Step)
	assert.ErrorIs(t, err, shellmenu.ErrRegistration)
}

func TestRunner_menu_without_manager(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{}

	_, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeSetup},
	)

	assert.Error(t, err)
}

func TestRunner_dry_run_lists_steps_without_applying(t *testing.T) {
	t.Parallel()

	mem := shellmenu.NewMemory()
	rn := &digesttool.Runner{
		DryRun: true,
		Manager: &shellmenu.Manager{
			Namespace:  mem,
			Executable: `C:\Tools\digest_tool.exe`,
		},
	}

	rep, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeSetup},
	)

	require.NoError(t, err)
	require.Len(t, rep.Steps, 16)
	assert.Equal(t, "delete-key-recursive DigestTool", rep.Steps[0])
	assert.Equal(t, "Dry run: 10 keys in the simulated tree.", rep.Message)
	assert.Empty(t, mem.Keys())

	rep, err = rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeCleanup},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"delete-key-recursive DigestTool"}, rep.Steps)
	assert.Equal(t, "Dry run: 0 keys in the simulated tree.", rep.Message)
}

func TestRunner_dry_run_needs_no_namespace(t *testing.T) {
	t.Parallel()

	rn := &digesttool.Runner{
		DryRun: true,
		Manager: &shellmenu.Manager{
			Verb:       "Hashes",
			Executable: `C:\Tools\digest_tool.exe`,
		},
	}

	rep, err := rn.Run(
		context.Background(),
		digesttool.Config{Mode: digesttool.ModeSetup},
	)

	require.NoError(t, err)
	require.Len(t, rep.Steps, 16)
	assert.Equal(t, "set-property Hashes MUIVerb", rep.Steps[6])
}

func TestRunner_digest_save_with_verify_keeps_sidecar(t *testing.T) {
	t.Parallel()

	src := writeTemp(t, "abc")
	require.NoError(t, os.WriteFile(src+".sha2_256", []byte(emptySha256), 0o600))

	rn := &digesttool.Runner{Save: true, Verify: true}

	rep, err := rn.Run(context.Background(), digestCfg(src))

	require.ErrorIs(t, err, digesttool.ErrSaveAndVerify)
	assert.Equal(t, digesttool.Report{}, rep)

	stored, err := os.ReadFile(src + ".sha2_256")
	require.NoError(t, err)
	assert.Equal(t, emptySha256, string(stored))
}
