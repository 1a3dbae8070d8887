// Package reconcile merges newly derived decisions into the persisted
// decision store without data loss.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/strata-dev/strata/internal/types"
)

const storeVersion = 1

// Store is the on-disk persisted decision set. It is shared across runs, so
// writes go through a temp file and rename; a run interrupted mid-write can
// never leave a partially written store behind.
type Store struct {
	Version   int                    `yaml:"version"`
	UpdatedAt time.Time              `yaml:"updated_at"`
	Decisions []types.DecisionRecord `yaml:"decisions"`
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (Store, error) {
	s := Store{Version: storeVersion}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("load decision store: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Store{Version: storeVersion}, fmt.Errorf("decision store %s is corrupt: %w", path, err)
	}
	return s, nil
}

// Save writes the store atomically: marshal, write to a temp file in the
// same directory, then rename over the destination.
func Save(path string, s Store) error {
	s.Version = storeVersion
	s.UpdatedAt = time.Now().UTC()
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal decision store: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".store-*.yaml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Fingerprint returns a short content hash of the decision set, recorded in
// the run audit log to correlate runs with store states.
func (s Store) Fingerprint() string {
	b, err := yaml.Marshal(s.Decisions)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Find returns the decision with the given cross-run identity, if present.
func (s Store) Find(category types.Category, tech string) (types.DecisionRecord, bool) {
	for _, d := range s.Decisions {
		if d.Category == category && d.TechnologyID == tech {
			return d, true
		}
	}
	return types.DecisionRecord{}, false
}
