package statsdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// ErrInvalidID is returned for malformed position identifiers.
var ErrInvalidID = errors.New("invalid position id")

// Key is the 16-byte little-endian position identifier stored in the
// database: the low 8 bytes hold the Polyglot hash of the position, the high
// 8 bytes the rating bucket.
type Key [16]byte

// PositionKey derives the key for a FEN at a rating bucket.
func PositionKey(fen string, rating int64) (Key, error) {
	hashStr, err := chess.NewZobristHasher().HashPosition(fen)
	if err != nil {
		return Key{}, fmt.Errorf("failed to hash fen: %w", err)
	}
	var k Key
	binary.LittleEndian.PutUint64(k[:8], chess.ZobristHashToUint64(hashStr))
	binary.LittleEndian.PutUint64(k[8:], uint64(rating))
	return k, nil
}

// ParseRating validates an opaque rating path segment.
func ParseRating(s string) (int64, error) {
	r, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || r < 0 {
		return 0, fmt.Errorf("invalid rating %q", s)
	}
	return r, nil
}

// ParseID decodes the decimal form of a key.
func ParseID(s string) (Key, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 128 {
		return Key{}, fmt.Errorf("%q: %w", s, ErrInvalidID)
	}
	var be [16]byte
	n.FillBytes(be[:])
	var k Key
	for i := range be {
		k[i] = be[15-i]
	}
	return k, nil
}

// String returns the decimal form of the key as a little-endian integer.
func (k Key) String() string {
	var be [16]byte
	for i := range k {
		be[i] = k[15-i]
	}
	return new(big.Int).SetBytes(be[:]).String()
}

// Rating returns the rating bucket stored in the high half.
func (k Key) Rating() int64 {
	return int64(binary.LittleEndian.Uint64(k[8:]))
}
