package utils

import "hash/fnv"

// HashStringToUint64 drives deterministic choices (mock analyzer output,
// fabricated source rows) from input text.
func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
