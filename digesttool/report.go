package digesttool

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/digest_tool/digest"
)

// bytesPerMB is the decimal megabyte used for the size line.
const bytesPerMB = 1_000_000

// Report is the user-facing outcome of a Run.
type Report struct {
	Mode Mode

	// Digest mode.
	Source    string
	Algorithm string
	ByteCount uint64
	Digest    []byte
	Elapsed   time.Duration

	// Sidecar is the sidecar file written or checked, if any.
	Sidecar string

	// Verified is set when a sidecar was checked.
	Verified *bool

	// Steps lists the planned steps of a dry run.
	Steps []string

	// Message summarizes setup and clean-up outcomes.
	Message string
}

// SizeMB returns the source size in whole decimal megabytes.
func (rp Report) SizeMB() uint64 {
	return rp.ByteCount / bytesPerMB
}

func (rp Report) result() digest.Result {
	return digest.Result{ByteCount: rp.ByteCount, Digest: rp.Digest}
}

// WriteText renders the report for the console. Digest bytes are
// printed as zero-padded two-digit hex ("0a", not "a") separated by
// ", ".
func (rp Report) WriteText(w io.Writer) error {
	const errCtx = "writing report"

	var sb strings.Builder

	if rp.Mode == ModeDigest {
		fmt.Fprintf(&sb, "File size: %dMB\n", rp.SizeMB())
		fmt.Fprintf(&sb, "Digest (%s): %s\n", rp.Algorithm, rp.result().HexBytes())
		fmt.Fprintf(&sb, "Elapsed: %s\n", rp.Elapsed)

		switch {
		case rp.Verified != nil && *rp.Verified:
			fmt.Fprintf(&sb, "Verified: OK (%s)\n", rp.Sidecar)
		case rp.Verified != nil:
			fmt.Fprintf(&sb, "Verified: MISMATCH (%s)\n", rp.Sidecar)
		case rp.Sidecar != "":
			fmt.Fprintf(&sb, "Saved: %s\n", rp.Sidecar)
		}
	}

	for _, st := range rp.Steps {
		fmt.Fprintf(&sb, "would apply: %s\n", st)
	}

	if rp.Message != "" {
		sb.WriteString(rp.Message)
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

type jsonReport struct {
	Mode      Mode     `json:"mode"`
	Source    string   `json:"source,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
	ByteCount *uint64  `json:"byte_count,omitempty"`
	SizeMB    *uint64  `json:"size_mb,omitempty"`
	Digest    string   `json:"digest,omitempty"`
	ElapsedMS *int64   `json:"elapsed_ms,omitempty"`
	Sidecar   string   `json:"sidecar,omitempty"`
	Verified  *bool    `json:"verified,omitempty"`
	Steps     []string `json:"steps,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// WriteJSON renders the report as an indented JSON object. Digest
// reports always carry byte_count, size_mb and elapsed_ms, even when
// zero; digest is contiguous lowercase hex.
func (rp Report) WriteJSON(w io.Writer) error {
	const errCtx = "writing json report"

	jr := jsonReport{
		Mode:      rp.Mode,
		Source:    rp.Source,
		Algorithm: rp.Algorithm,
		Sidecar:   rp.Sidecar,
		Verified:  rp.Verified,
		Steps:     rp.Steps,
		Message:   rp.Message,
	}

	if rp.Mode == ModeDigest {
		count, size, ms := rp.ByteCount, rp.SizeMB(), rp.Elapsed.Milliseconds()

		jr.ByteCount, jr.SizeMB, jr.ElapsedMS = &count, &size, &ms
		jr.Digest = rp.result().Hex()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(jr); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
