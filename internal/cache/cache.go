// Package cache stores extraction mapper responses so unchanged chunks are
// never sent to a model twice. Keys are content digests: same model, same
// allow-list, same chunk text means the same key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the minimal store interface; memory, disk and layered
// implementations are provided.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for one chunk mapping call. Any of the parts
// changing (model name, allow-list content, chunk text) changes the key.
func Key(mdl, allowDigest, chunkText string) string {
	h := sha256.New()
	h.Write([]byte(mdl))
	h.Write([]byte{0})
	h.Write([]byte(allowDigest))
	h.Write([]byte{0})
	h.Write([]byte(chunkText))
	return "featmerge-v1-" + hex.EncodeToString(h.Sum(nil))
}

// DigestStrings hashes an ordered string list, used to fingerprint the
// allow-list fed to the mapper.
func DigestStrings(items []string) string {
	h := sha256.New()
	for _, s := range items {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
