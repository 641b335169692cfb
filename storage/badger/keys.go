package badger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/docgen/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "docrec"
	documentIDSeq  = "docseq"
)

// makeDocumentKey generates a key for a document by sequence number.
// The number is zero-padded so keys sort in insertion order.
func makeDocumentKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s:%020d", documentPrefix, id))
}

// documentID renders a sequence number as a core.ID.
func documentID(id uint64) core.ID {
	return core.ID(strconv.FormatUint(id, 10))
}

// isDocumentKey reports whether key holds a document rather than an index
// or sequence entry.
func isDocumentKey(key []byte) bool {
	return strings.HasPrefix(string(key), documentPrefix+":")
}
