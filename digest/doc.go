// Package digest computes content digests of byte streams. Algorithm is a
// closed set of four hash functions (SHA-2 and SHA-3, 256 and 512 bits);
// each hands out a Hasher through New. Engine streams a reader through a
// Hasher in bounded chunks and reports cumulative progress after every
// chunk. Sidecar helpers store a computed digest next to the original file
// and verify it later.
package digest
