// Package board implements the deterministic board shuffle for the
// memory-match engine.
package board

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

const (
	// Size is the number of card positions on a board.
	Size = 12
	// SymbolKinds is the number of distinct card symbols. Each symbol
	// appears exactly twice on a board.
	SymbolKinds = 6
)

// Symbol identifies one of the six card symbols. The zero value means
// "no symbol" and never appears on a board.
type Symbol uint8

// SymbolNone is the sentinel for "no symbol".
const SymbolNone Symbol = 0

// Board is the fixed-at-creation layout of symbols for a session.
type Board [Size]Symbol

// Shuffle produces the board layout for a seed.
//
// # Determinism
//
// Shuffle is a pure function of seed. Given the same seed it always
// produces the same Board, across calls and across processes. The
// entire seed domain is valid; zero and negative seeds are not special.
//
// # Algorithm
//
// The ordered multiset [1,1,2,2,...,6,6] is permuted with a
// Fisher-Yates pass from index 11 down to 1. The swap target for
// index i is drawn from Keccak-256 over the 8-byte big-endian seed
// followed by the 8-byte big-endian index: the first 8 digest bytes,
// read big-endian, reduced modulo i+1. Any client that reproduces
// this draw reproduces the board bit for bit.
func Shuffle(seed int64) Board {
	var b Board
	for i := 0; i < Size; i++ {
		b[i] = Symbol(i/2 + 1)
	}
	for i := Size - 1; i >= 1; i-- {
		j := draw(seed, i) % uint64(i+1)
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// draw hashes (seed, index) into a uniform 64-bit value.
func draw(seed int64, index int) uint64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(seed))
	binary.BigEndian.PutUint64(buf[8:], uint64(index))

	h := sha3.NewLegacyKeccak256()
	h.Write(buf[:])
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}
