package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// VersionedKey builds a derived cache key "{prefix}:v{N}:{hash}" where N is
// the current lookup version and the hash digests the query parameters.
// Because every derived key embeds the version, a single version bump
// invalidates all of them without enumeration.
func VersionedKey(prefix string, version int64, params ...string) string {
	h := fnv.New64a()
	// Parameters are length-prefixed so ("ab","c") and ("a","bc") hash apart.
	for _, p := range params {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%s:v%d:%016x", strings.TrimSuffix(prefix, ":"), version, h.Sum64())
}
