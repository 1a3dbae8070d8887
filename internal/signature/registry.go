// Package signature holds the technology-signature registry. Signatures are
// data, not code: the detector iterates whatever the registry contains, so
// adding a technology is a registry change and never a new code path.
package signature

import (
	"fmt"
	"os"
	"regexp"

	xxhash "github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/strata-dev/strata/internal/types"
)

// Disambiguator resolves ambiguous matches (e.g. two technologies sharing a
// config filename) by requiring an additional marker. A signature carrying a
// disambiguator only yields evidence when the condition also holds.
type Disambiguator struct {
	// RequireFile is a glob that must match at least one path in the
	// scanned tree.
	RequireFile string `yaml:"require_file,omitempty"`
	// RequireToken is a literal token that must occur in the matched
	// file's content.
	RequireToken string `yaml:"require_token,omitempty"`
}

// Signature is one technology-registry entry.
type Signature struct {
	ID              string         `yaml:"id"`
	Category        types.Category `yaml:"category"`
	FilePatterns    []string       `yaml:"file_patterns"`
	ContentPatterns []string       `yaml:"content_patterns,omitempty"`
	Disambiguator   *Disambiguator `yaml:"disambiguator,omitempty"`

	compiled []*regexp.Regexp
}

// ContentRegexps returns the compiled content patterns.
func (s *Signature) ContentRegexps() []*regexp.Regexp { return s.compiled }

// Registry is an ordered set of signatures keyed by ID.
type Registry struct {
	sigs []*Signature
}

// Signatures returns the registry entries in registration order.
func (r *Registry) Signatures() []*Signature { return r.sigs }

// Len returns the number of registered signatures.
func (r *Registry) Len() int { return len(r.sigs) }

// Fingerprint hashes the registry definition. The detection cache stores it
// so any registry change invalidates memoized evidence.
func (r *Registry) Fingerprint() string {
	h := xxhash.New()
	for _, sig := range r.sigs {
		h.WriteString(sig.ID)
		h.WriteString(string(sig.Category))
		for _, p := range sig.FilePatterns {
			h.WriteString(p)
		}
		for _, p := range sig.ContentPatterns {
			h.WriteString(p)
		}
		if d := sig.Disambiguator; d != nil {
			h.WriteString(d.RequireFile)
			h.WriteString(d.RequireToken)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (r *Registry) add(sig Signature) error {
	sig.compiled = sig.compiled[:0]
	for _, p := range sig.ContentPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("signature %s: bad content pattern %q: %w", sig.ID, p, err)
		}
		sig.compiled = append(sig.compiled, re)
	}
	for i, existing := range r.sigs {
		if existing.ID == sig.ID {
			r.sigs[i] = &sig // later registrations override by ID
			return nil
		}
	}
	r.sigs = append(r.sigs, &sig)
	return nil
}

type registryFile struct {
	Signatures []Signature `yaml:"signatures"`
}

// LoadFile merges signatures from a YAML registry file over the current
// contents. Entries with an existing ID replace the built-in definition.
func (r *Registry) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("signature file %s: %w", path, err)
	}
	var rf registryFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return fmt.Errorf("signature file %s: %w", path, err)
	}
	for _, sig := range rf.Signatures {
		if sig.ID == "" || sig.Category == "" {
			return fmt.Errorf("signature file %s: entry missing id or category", path)
		}
		if err := r.add(sig); err != nil {
			return err
		}
	}
	return nil
}

// Builtin returns the built-in registry. It panics only on a malformed
// built-in pattern, which is a programming error caught by tests.
func Builtin() *Registry {
	r := &Registry{}
	for _, sig := range builtin {
		if err := r.add(sig); err != nil {
			panic(err)
		}
	}
	return r
}

// Load returns the built-in registry with any extension files merged in.
func Load(extensionFiles []string) (*Registry, error) {
	r := Builtin()
	for _, f := range extensionFiles {
		if err := r.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}
