package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidAlgorithm is returned when a selector does not name one of
// the supported algorithms.
var ErrInvalidAlgorithm = errors.New("invalid algorithm")

// Algorithm identifies one of the supported hash functions.
type Algorithm int

// Supported algorithms. Sha2_256 is the default.
const (
	Sha2_256 Algorithm = iota
	Sha2_512
	Sha3_256
	Sha3_512
)

// Default is the algorithm used when no selector is given.
const Default = Sha2_256

type algorithmInfo struct {
	token string
	label string
	size  int
	newFn func() hash.Hash
}

var algorithms = [...]algorithmInfo{
	Sha2_256: {"sha2_256", "Sha2_256", sha256.Size, sha256.New},
	Sha2_512: {"sha2_512", "Sha2_512", sha512.Size, sha512.New},
	Sha3_256: {"sha3_256", "Sha3_256", 32, func() hash.Hash { return sha3.New256() }},
	Sha3_512: {"sha3_512", "Sha3_512", 64, func() hash.Hash { return sha3.New512() }},
}

// Algorithms returns every supported algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{Sha2_256, Sha2_512, Sha3_256, Sha3_512}
}

// Tokens returns the selector tokens accepted by ParseAlgorithm.
func Tokens() []string {
	out := make([]string, 0, len(algorithms))
	for _, in := range algorithms {
		out = append(out, in.token)
	}

	return out
}

func (a Algorithm) valid() bool {
	return a >= Sha2_256 && int(a) < len(algorithms)
}

// String returns the selector token, e.g. "sha3_256".
func (a Algorithm) String() string {
	if !a.valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}

	return algorithms[a].token
}

// Label returns the human readable name used in menus.
func (a Algorithm) Label() string {
	if !a.valid() {
		return a.String()
	}

	return algorithms[a].label
}

// Size returns the digest length in bytes: 32 or 64.
func (a Algorithm) Size() int {
	if !a.valid() {
		return 0
	}

	return algorithms[a].size
}

// New returns a fresh Hasher for the algorithm. It panics on a value
// outside the declared set.
func (a Algorithm) New() Hasher {
	if !a.valid() {
		panic(fmt.Sprintf("digest: unknown %s", a))
	}

	info := algorithms[a]

	return &hashState{h: info.newFn(), size: info.size}
}

// ParseAlgorithm maps a selector token to its Algorithm. Matching is exact
// and case-sensitive.
func ParseAlgorithm(token string) (Algorithm, error) {
	for i, in := range algorithms {
		if in.token == token {
			return Algorithm(i), nil
		}
	}

	return 0, fmt.Errorf(
		"%w: %q (expected one of %s)",
		ErrInvalidAlgorithm, token, strings.Join(Tokens(), ", "),
	)
}

// Resolve returns Default when present is false and otherwise parses
// selector strictly. An unknown selector never falls back to the default.
func Resolve(selector string, present bool) (Algorithm, error) {
	if !present {
		return Default, nil
	}

	return ParseAlgorithm(selector)
}

// Hasher is the incremental hash capability consumed by Engine.
type Hasher interface {
	// Update feeds p into the hash state.
	Update(p []byte)

	// Finalize returns the digest. It must be called at most once.
	Finalize() []byte

	// OutputLength returns the digest length in bytes.
	OutputLength() int
}

type hashState struct {
	h         hash.Hash
	size      int
	finalized bool
}

func (hs *hashState) Update(p []byte) {
	if hs.finalized {
		panic("digest: Update after Finalize")
	}

	_, _ = hs.h.Write(p) //nolint:errcheck // hash.Hash.Write never fails
}

func (hs *hashState) Finalize() []byte {
	if hs.finalized {
		panic("digest: Finalize called twice")
	}

	hs.finalized = true

	return hs.h.Sum(nil)
}

func (hs *hashState) OutputLength() int {
	return hs.size
}
