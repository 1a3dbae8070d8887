// Package detect matches the classified file inventory against the
// technology-signature registry and emits Evidence records.
package detect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/strata-dev/strata/internal/cache"
	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/signature"
	"github.com/strata-dev/strata/internal/types"
)

// EvidenceCache memoizes per-file detection output keyed by content hash.
type EvidenceCache interface {
	Get(path, hash string) ([]types.Evidence, bool)
	Put(path, hash string, evidence []types.Evidence)
}

// Options bounds detection cost.
type Options struct {
	// MaxReadBytes caps how much of each file is scanned for content
	// patterns. Defaults to 512 KiB.
	MaxReadBytes int64
	// Cache, when set, skips signature scanning for files whose content
	// hash is unchanged since the previous run.
	Cache EvidenceCache
}

const defaultMaxReadBytes = 512 << 10

const (
	strengthContent  = 1.0
	strengthPathOnly = 0.5
)

// Run matches every inventory file against every signature and returns the
// deduplicated evidence list. A single file's read failure is logged and
// skipped; it never aborts detection for the rest of the tree.
func Run(inv inventory.Inventory, reg *signature.Registry, opts Options) []types.Evidence {
	if opts.MaxReadBytes <= 0 {
		opts.MaxReadBytes = defaultMaxReadBytes
	}

	// (technology_id, file_path) -> strongest evidence
	seen := map[string]types.Evidence{}
	for _, f := range inv.Files {
		for _, ev := range detectFile(f, inv, reg, opts) {
			key := ev.TechnologyID + "\x00" + ev.FilePath
			if prev, ok := seen[key]; !ok || ev.Strength > prev.Strength {
				seen[key] = ev
			}
		}
	}

	out := make([]types.Evidence, 0, len(seen))
	for _, ev := range seen {
		out = append(out, ev)
	}
	sortEvidence(out)
	return out
}

func detectFile(f inventory.File, inv inventory.Inventory, reg *signature.Registry, opts Options) []types.Evidence {
	var candidates []*signature.Signature
	needContent := false
	for _, sig := range reg.Signatures() {
		if !matchesPath(f.Path, sig.FilePatterns) {
			continue
		}
		candidates = append(candidates, sig)
		if len(sig.ContentRegexps()) > 0 || (sig.Disambiguator != nil && sig.Disambiguator.RequireToken != "") {
			needContent = true
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var data []byte
	var hash string
	if needContent {
		var err error
		data, err = readCapped(filepath.Join(inv.Root, f.Path), opts.MaxReadBytes)
		if err != nil {
			logging.L.Debugw("evidence read failed, skipping file",
				"path", f.Path,
				"err", fmt.Errorf("%w: %v", types.ErrEvidenceRead, err))
			return nil
		}
		hash = cache.Hash(data)
		if opts.Cache != nil {
			if cached, ok := opts.Cache.Get(f.Path, hash); ok {
				return cached
			}
		}
	}

	var out []types.Evidence
	for _, sig := range candidates {
		ev := types.Evidence{
			TechnologyID: sig.ID,
			Category:     sig.Category,
			FilePath:     f.Path,
			Strength:     strengthPathOnly,
		}
		if len(sig.ContentRegexps()) > 0 {
			line, ok := firstContentMatch(sig, data)
			if !ok {
				continue
			}
			ev.Line = line
			ev.Strength = strengthContent
			ev.ContentMatch = true
		}
		if sig.Disambiguator != nil && !disambiguated(sig.Disambiguator, data, inv) {
			continue
		}
		out = append(out, ev)
	}

	if needContent && opts.Cache != nil {
		opts.Cache.Put(f.Path, hash, out)
	}
	return out
}

func matchesPath(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func firstContentMatch(sig *signature.Signature, data []byte) (line int, ok bool) {
	for _, re := range sig.ContentRegexps() {
		loc := re.FindIndex(data)
		if loc == nil {
			continue
		}
		return lineAt(data, loc[0]), true
	}
	return 0, false
}

func lineAt(data []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
		}
	}
	return line
}

// disambiguated checks the signature's extra marker condition. require_token
// inspects the matched file's content; require_file demands some inventory
// path match the given glob.
func disambiguated(d *signature.Disambiguator, data []byte, inv inventory.Inventory) bool {
	if d.RequireToken != "" && !bytes.Contains(data, []byte(d.RequireToken)) {
		return false
	}
	if d.RequireFile != "" {
		found := false
		for _, f := range inv.Files {
			if ok, _ := doublestar.Match(d.RequireFile, f.Path); ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortEvidence(evs []types.Evidence) {
	sort.Slice(evs, func(i, j int) bool {
		if evs[i].TechnologyID != evs[j].TechnologyID {
			return evs[i].TechnologyID < evs[j].TechnologyID
		}
		return evs[i].FilePath < evs[j].FilePath
	})
}

func readCapped(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	n := st.Size()
	if n > max {
		n = max
	}
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && read == 0 {
		return nil, err
	}
	return buf[:read], nil
}
