package store

import (
	"fmt"
	"sync"
	"time"
)

// Key prefixes.
const (
	importPrefix    = "import:"
	importLogPrefix = "importlog:"
)

//nolint:gochecknoglobals // shared buffer pool
var keyPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 128)
	},
}

// buildKey joins the parts into a pooled key buffer.
// Callers MUST call releaseKey when done with the key.
func buildKey(parts ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

// logStamp renders t so that lexical key order is chronological order.
func logStamp(t time.Time) string {
	return fmt.Sprintf("%020d", t.UTC().UnixNano())
}
