package digest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/digest_tool/digest"
)

func TestSidecarPath(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t,
		"/data/image.iso.sha3_512",
		digest.SidecarPath("/data/image.iso", digest.Sha3_512),
	)
}

func TestSaveSidecar_and_VerifySidecar_roundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(pa, []byte("content"), 0o600))

	res, err := digest.ComputeFile(pa, digest.Sha2_512, 0, nil)
	require.NoError(t, err)

	require.NoError(t, digest.SaveSidecar(pa, digest.Sha2_512, res))

	ok, err := digest.VerifySidecar(pa, digest.Sha2_512, res)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySidecar_tampered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(pa, []byte("content"), 0o600))

	res, err := digest.ComputeFile(pa, digest.Sha2_256, 0, nil)
	require.NoError(t, err)
	require.NoError(t, digest.SaveSidecar(pa, digest.Sha2_256, res))

	require.NoError(t, os.WriteFile(pa, []byte("tampered"), 0o600))

	res, err = digest.ComputeFile(pa, digest.Sha2_256, 0, nil)
	require.NoError(t, err)

	ok, err := digest.VerifySidecar(pa, digest.Sha2_256, res)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySidecar_ignores_case_and_whitespace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "data.bin")
	res := digest.Result{Digest: []byte{0xab, 0xcd}}

	require.NoError(t, os.WriteFile(
		digest.SidecarPath(pa, digest.Sha2_256), []byte("ABCD\n"), 0o600,
	))

	ok, err := digest.VerifySidecar(pa, digest.Sha2_256, res)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifySidecar_missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := digest.VerifySidecar(
		filepath.Join(dir, "none.bin"), digest.Sha2_256, digest.Result{},
	)

	assert.ErrorIs(t, err, digest.ErrNoSidecar)
}
