package progress_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/digest_tool/progress"
)

func TestSampler_emits_once_per_bucket(t *testing.T) {
	t.Parallel()

	sa := progress.NewSampler(10)

	var emitted []float64

	for _, pct := range []float64{0, 1, 9.9, 10, 15, 20, 20, 99, 100, 100} {
		if sa.ShouldLog(pct) {
			emitted = append(emitted, pct)
		}
	}

	assert.Equal(t, []float64{0, 10, 20, 99, 100}, emitted)
}

func TestSampler_unknown_total_logs_first_only(t *testing.T) {
	t.Parallel()

	sa := progress.NewSampler(0)

	assert.True(t, sa.ShouldLog(-1))
	assert.False(t, sa.ShouldLog(-1))
	assert.False(t, sa.ShouldLog(-1))
}

func TestSampler_nil_always_logs(t *testing.T) {
	t.Parallel()

	var sa *progress.Sampler

	assert.True(t, sa.ShouldLog(42))
}

func TestIsTerminal_non_file_writer(t *testing.T) {
	t.Parallel()

	assert.False(t, progress.IsTerminal(&bytes.Buffer{}))
}

func TestIsTerminal_regular_file(t *testing.T) {
	t.Parallel()

	fi, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	defer func() { _ = fi.Close() }()

	assert.False(t, progress.IsTerminal(fi))
}

func TestNew_non_terminal_does_not_write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := progress.New(&buf, 100, "hashing")
	sink.Update(50)
	sink.Update(100)
	sink.Finish()

	assert.Empty(t, buf.String())
}

func TestNewBar_accepts_updates_past_size(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	assert.NotPanics(t, func() {
		sink := progress.NewBar(&buf, 10, "hashing")
		sink.Update(5)
		sink.Update(20)
		sink.Finish()
	})
}
