// Package extract groups evidence into candidate decision records and
// synthesizes their rationale text.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// Options configures decision extraction.
type Options struct {
	// MinEvidence is the minimum evidence count for a technology before a
	// decision is synthesized. Defaults to 1.
	MinEvidence int
	// DisableNarrative forces deterministic template mode.
	DisableNarrative bool
	// Narrator elaborates rationale skeletons in narrative mode. Nil means
	// the built-in offline narrator.
	Narrator Narrator
}

// Run synthesizes one DecisionRecord per (category, technology) group whose
// evidence count meets the minimum. Record IDs are monotonic within the run
// and assignment order is deterministic.
func Run(evidence []types.Evidence, opts Options) []types.DecisionRecord {
	if opts.MinEvidence <= 0 {
		opts.MinEvidence = 1
	}
	narrator := opts.Narrator
	if narrator == nil {
		narrator = OfflineNarrator{}
	}

	groups := map[string][]types.Evidence{}
	for _, ev := range evidence {
		key := string(ev.Category) + "/" + ev.TechnologyID
		groups[key] = append(groups[key], ev)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []types.DecisionRecord
	seq := 0
	for _, k := range keys {
		evs := groups[k]
		if len(evs) < opts.MinEvidence {
			continue
		}
		sort.Slice(evs, func(i, j int) bool { return evs[i].FilePath < evs[j].FilePath })

		cat := evs[0].Category
		tech := evs[0].TechnologyID
		rationale := Skeleton(tech, cat, evs)
		narrated := false
		if !opts.DisableNarrative {
			elaboration, err := narrator.Elaborate(cat, tech, evs)
			if err != nil {
				logging.L.Warnw("narrative synthesis failed, using template mode",
					"technology", tech,
					"err", fmt.Errorf("%w: %v", types.ErrSynthesis, err))
			} else if elaboration != "" {
				// Narrative mode elaborates the fixed skeleton rather than
				// rephrasing it, so both modes stay lexically comparable
				// for the reconciler's similarity matching.
				rationale = rationale + " " + elaboration
				narrated = true
			}
		}

		seq++
		refs := make([]string, 0, len(evs))
		for _, ev := range evs {
			refs = append(refs, ev.Ref())
		}
		out = append(out, types.DecisionRecord{
			ID:           fmt.Sprintf("DEC-%03d", seq),
			Category:     cat,
			TechnologyID: tech,
			Rationale:    rationale,
			EvidenceRefs: refs,
			Status:       types.StatusNew,
			Narrated:     narrated,
		})
	}
	return out
}

const maxListedFiles = 5

// Skeleton renders the deterministic rationale template. Byte-for-byte
// identical output for identical evidence is a contract the reconciler's
// duplicate detection depends on.
func Skeleton(tech string, category types.Category, evs []types.Evidence) string {
	paths := make([]string, 0, len(evs))
	for _, ev := range evs {
		paths = append(paths, ev.FilePath)
	}
	sort.Strings(paths)

	listed := paths
	var more int
	if len(paths) > maxListedFiles {
		listed = paths[:maxListedFiles]
		more = len(paths) - maxListedFiles
	}
	list := strings.Join(listed, ", ")
	if more > 0 {
		list += fmt.Sprintf(" (and %d more)", more)
	}

	n := len(evs)
	return fmt.Sprintf(
		"%s was detected as the %s solution based on evidence in %d file(s): %s. %d reference(s) found, indicating it is the adopted technology for this concern.",
		tech, category, n, list, n)
}
