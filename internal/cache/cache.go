// Package cache memoizes per-file detection results so unchanged files skip
// signature scanning on repeat runs over the same tree.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/strata-dev/strata/internal/types"
)

// Entry memoizes one file's detection output against its content hash.
type Entry struct {
	Hash     string           `json:"hash"`
	Evidence []types.Evidence `json:"evidence"`
}

// DB is the on-disk cache. Registry is the signature-registry fingerprint
// the entries were computed with; a registry change invalidates everything.
type DB struct {
	Registry string           `json:"registry"`
	Entries  map[string]Entry `json:"entries"`
}

// Get returns the memoized evidence for path when the content hash matches.
func (db DB) Get(path, hash string) ([]types.Evidence, bool) {
	e, ok := db.Entries[path]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Evidence, true
}

// Put memoizes the evidence for path under the given content hash.
func (db DB) Put(path, hash string, evidence []types.Evidence) {
	if db.Entries == nil {
		return
	}
	db.Entries[path] = Entry{Hash: hash, Evidence: evidence}
}

func defaultPath(root string) string {
	// Prefer storing under .git to keep the cache out of commits.
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "strata-cache.json")
	}
	return filepath.Join(root, ".strata-cache.json")
}

// Load reads the cache for root. A missing or corrupt cache, or one built
// against a different registry fingerprint, yields an empty DB.
func Load(root, registryFingerprint string) DB {
	empty := DB{Registry: registryFingerprint, Entries: map[string]Entry{}}
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return empty
	}
	var db DB
	if err := json.Unmarshal(b, &db); err != nil {
		return empty
	}
	if db.Entries == nil || db.Registry != registryFingerprint {
		return empty
	}
	return db
}

// Save persists the cache for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0o644)
}

// Hash returns the content fingerprint used for cache entries.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
