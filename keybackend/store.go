// Package keybackend holds the API keys accepted by the HTTP guard.
package keybackend

import (
	"crypto/subtle"
	"fmt"

	"github.com/sagarc03/fsgate"
)

// KeysConfig holds configuration for loading API keys.
type KeysConfig struct {
	Inline string // Key from config or the API_KEY environment variable
	File   string // Path to a key file; replaces Inline when set
}

// Store verifies presented keys against the configured ones.
type Store struct {
	keys [][]byte
}

// NewStore creates a Store from the given configuration. Keys from File
// take precedence over the inline key.
func NewStore(cfg KeysConfig) (*Store, error) {
	var keys []string

	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		keys = fileKeys
	} else if cfg.Inline != "" {
		keys = []string{cfg.Inline}
	}

	if len(keys) == 0 {
		return nil, ErrNoKeys
	}

	return NewStaticStore(keys...), nil
}

// NewStaticStore creates a Store accepting exactly the given keys.
// Empty keys are ignored.
func NewStaticStore(keys ...string) *Store {
	s := &Store{keys: make([][]byte, 0, len(keys))}
	for _, k := range keys {
		if k != "" {
			s.keys = append(s.keys, []byte(k))
		}
	}
	return s
}

// Verify returns nil when key matches one of the configured keys. Every
// configured key is compared so timing does not reveal which one matched.
func (s *Store) Verify(key string) error {
	presented := []byte(key)
	match := 0
	for _, k := range s.keys {
		match |= subtle.ConstantTimeCompare(presented, k)
	}

	if key == "" || match == 0 {
		return fmt.Errorf("api key mismatch: %w", fsgate.ErrUnauthorized)
	}
	return nil
}
