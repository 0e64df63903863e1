package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"sync"

	"mercator-hq/placement/pkg/config"
)

var (
	// ErrInvalidKey is returned for unknown keys.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyDisabled is returned for keys that are configured but disabled.
	ErrKeyDisabled = errors.New("API key disabled")

	// ErrMissingKey is returned when no configured source carries a key.
	ErrMissingKey = errors.New("no API key found")
)

type keyEntry struct {
	digest [sha256.Size]byte
	info   KeyInfo
}

// KeyRing validates admin keys. Keys are stored as SHA-256 digests and
// compared in constant time.
type KeyRing struct {
	mu      sync.RWMutex
	entries []keyEntry
}

// NewKeyRing builds a key ring from configured keys.
func NewKeyRing(keys []config.APIKeyConfig) *KeyRing {
	r := &KeyRing{}
	for _, k := range keys {
		r.Add(k.Key, KeyInfo{Name: k.Name, Enabled: !k.Disabled})
	}
	return r
}

// Add registers key, replacing an entry with the same key.
func (r *KeyRing) Add(key string, info KeyInfo) {
	digest := sha256.Sum256([]byte(key))

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].digest == digest {
			r.entries[i].info = info
			return
		}
	}
	r.entries = append(r.entries, keyEntry{digest: digest, info: info})
}

// Len returns the number of registered keys.
func (r *KeyRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Validate returns the info of key. Every entry is compared so the time
// taken does not depend on which key matched.
func (r *KeyRing) Validate(key string) (KeyInfo, error) {
	digest := sha256.Sum256([]byte(key))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found KeyInfo
		match bool
	)
	for _, e := range r.entries {
		if subtle.ConstantTimeCompare(e.digest[:], digest[:]) == 1 {
			found, match = e.info, true
		}
	}
	if !match {
		return KeyInfo{}, ErrInvalidKey
	}
	if !found.Enabled {
		return KeyInfo{}, ErrKeyDisabled
	}
	return found, nil
}

// SourcesFromConfig converts configured key sources.
func SourcesFromConfig(in []config.APIKeySource) []Source {
	out := make([]Source, len(in))
	for i, s := range in {
		out[i] = Source{Type: s.Type, Name: s.Name, Scheme: s.Scheme}
	}
	return out
}
