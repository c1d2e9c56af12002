package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrIO marks failures to open, stat or read the digest source.
var ErrIO = errors.New("i/o failure")

// DefaultChunkSize is the read buffer size used when Engine.ChunkSize is
// zero.
const DefaultChunkSize = 1 << 20

// ProgressFunc receives the cumulative number of bytes consumed so far.
type ProgressFunc func(total uint64)

// Result is the outcome of a successful digest computation.
type Result struct {
	// ByteCount is the number of bytes read from the source.
	ByteCount uint64

	// Digest holds the raw hash bytes.
	Digest []byte
}

// Hex returns the digest as contiguous lowercase hex.
func (r Result) Hex() string {
	return hex.EncodeToString(r.Digest)
}

// HexBytes returns the digest as comma-separated two-digit hex bytes,
// e.g. "ba, 78, 16".
func (r Result) HexBytes() string {
	parts := make([]string, len(r.Digest))
	for i, by := range r.Digest {
		parts[i] = fmt.Sprintf("%02x", by)
	}

	return strings.Join(parts, ", ")
}

// Engine streams sources through a Hasher. The zero value is ready to
// use.
type Engine struct {
	// ChunkSize is the read buffer size in bytes. Zero selects
	// DefaultChunkSize.
	ChunkSize int
}

func (en *Engine) chunkSize() (int, error) {
	switch {
	case en == nil || en.ChunkSize == 0:
		return DefaultChunkSize, nil
	case en.ChunkSize < 0:
		return 0, fmt.Errorf(
			"chunk size must be non-negative, got %d", en.ChunkSize,
		)
	default:
		return en.ChunkSize, nil
	}
}

// Compute reads src to exhaustion, feeding every chunk to h and reporting
// the running byte count to sink after each one. The last value passed to
// sink always equals the returned ByteCount; an empty source reports 0
// once. On a read error nothing is finalized and a zero Result is
// returned with an error wrapping ErrIO.
func (en *Engine) Compute(
	src io.Reader,
	h Hasher,
	sink ProgressFunc,
) (Result, error) {
	const errCtx = "computing digest"

	size, err := en.chunkSize()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if sink == nil {
		sink = func(uint64) {}
	}

	var (
		buf      = make([]byte, size)
		total    uint64
		reported bool
	)

	for {
		n, rerr := src.Read(buf)

		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return Result{}, fmt.Errorf(
				"%s: %w: %w", errCtx, ErrIO, rerr,
			)
		}

		if n > 0 {
			h.Update(buf[:n])
			total += uint64(n)

			sink(total)

			reported = true
		}

		if rerr != nil {
			break
		}
	}

	if !reported {
		sink(total)
	}

	return Result{ByteCount: total, Digest: h.Finalize()}, nil
}

// ComputeFile opens path and runs Compute over it with a new hasher for
// alg. The file is closed before ComputeFile returns.
func ComputeFile(
	path string,
	alg Algorithm,
	chunkSize int,
	sink ProgressFunc,
) (result Result, retErr error) {
	const errCtx = "computing file digest"

	fi, err := os.Open(path) //nolint:gosec // caller-provided path
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w: %w", errCtx, ErrIO, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			result = Result{}
			retErr = fmt.Errorf("%s: %w: %w", errCtx, ErrIO, closeErr)
		}
	}()

	en := Engine{ChunkSize: chunkSize}

	res, err := en.Compute(fi, alg.New(), sink)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return res, nil
}
