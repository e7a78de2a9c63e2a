package data

import (
	"strings"

	"github.com/google/uuid"
)

// hashSpace namespaces entry hashes so they never collide with other SHA-1 UUIDs.
var hashSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("beanreport.entry"))

// Hash returns a stable content hash of an entry. Metadata (source location
// included) does not take part, so moving an entry within a file keeps its hash.
func Hash(entry Entry) string {
	id := uuid.NewSHA1(hashSpace, []byte(string(entry.Kind())+"\n"+Format(entry)))
	return strings.ReplaceAll(id.String(), "-", "")
}

// HashIndex maps entry hashes to entries. The first entry wins on collision.
func HashIndex(entries []Entry) map[string]Entry {
	index := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		h := Hash(entry)
		if _, ok := index[h]; !ok {
			index[h] = entry
		}
	}
	return index
}
