package plan

import (
	"fmt"
	"math/rand"

	"github.com/dchest/siphash"
)

// Task identities are opaque and must stay unique across reruns of the
// planner, so each plan gets a fresh nonce keying the hash.
func newNonce() uint64 {
	return rand.Uint64() | 1
}

func identity(nonce uint64, kind string, ordinal int, payload string) string {
	sum := siphash.Hash(nonce, uint64(ordinal), []byte(payload))
	return fmt.Sprintf("%s_%d_%016x", kind, ordinal, sum)
}
