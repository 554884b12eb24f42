package badger

import (
	"fmt"

	"github.com/poiesic/hobbyfind/core"
)

// Key prefixes for different data types
const (
	entryPrefix = "vecent"
)

// makeEntryKey generates a key for an index entry by id.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryPrefix, id))
}
