// Package ulid mints and validates document identifiers. ULIDs sort
// by creation time, which keeps listings and logs in creation order
// without a separate counter.
package ulid

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     io.Reader

	// mock, when set, replaces minting entirely. Tests pin it so
	// snapshots with embedded identifiers stay comparable.
	mock func() string
)

func monotonicEntropy() io.Reader {
	entropyOnce.Do(func() {
		seed := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(seed, 0),
		}
	})
	return entropy
}

// GenerateID mints a new document identifier.
func GenerateID() string {
	if mock != nil {
		return mock()
	}
	return ulid.MustNew(ulid.Timestamp(time.Now()), monotonicEntropy()).String()
}

// ValidID reports whether id is a canonical document identifier: a
// ULID in its 26-character uppercase Crockford Base32 form. Snapshot
// decoding keeps only ids that pass this check.
func ValidID(id string) bool {
	if len(id) != ulid.EncodedSize {
		return false
	}
	parsed, err := ulid.ParseStrict(id)
	return err == nil && parsed.String() == id
}

// MockGenerator pins GenerateID to a fixed value.
func MockGenerator(value string) {
	mock = func() string { return value }
}

// ResetGenerator restores real identifier minting.
func ResetGenerator() {
	mock = nil
}
