package reconcile

import (
	"sort"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// DefaultSimilarity is the rationale-similarity threshold for duplicate
// detection when no override is configured.
const DefaultSimilarity = 0.80

// Outcome is the result of reconciling one run's candidates against the
// persisted store.
type Outcome struct {
	// Candidates carries the run's records with Status classified.
	Candidates []types.DecisionRecord
	// Merged is the post-merge persisted set. It always contains every
	// pre-existing decision: reconciliation is evidence-additive and never
	// wholesale-replaces the store.
	Merged Store
	New    int
	Dups   int
	Enrich int
}

// Run classifies each candidate as NEW, DUPLICATE, or ENRICHMENT against the
// store. Identity is (category, technology_id) first, then rationale
// similarity for same-category candidates lacking an exact technology match.
// Persisted records are never edited in place and never dropped here; an
// enrichment extends the stored evidence list, nothing else.
func Run(store Store, candidates []types.DecisionRecord, similarityThreshold float64) Outcome {
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = DefaultSimilarity
	}

	merged := Store{Version: store.Version}
	merged.Decisions = append(merged.Decisions, store.Decisions...)

	index := map[string]int{} // identity key -> index in merged.Decisions
	for i, d := range merged.Decisions {
		index[d.Key()] = i
	}

	out := Outcome{}
	for _, cand := range candidates {
		switch {
		case classifyExact(&cand, merged.Decisions, index, similarityThreshold, &merged):
			// status set inside
		case classifyBySimilarity(&cand, merged.Decisions, similarityThreshold):
			// same-category rationale match, no exact technology match
		default:
			cand.Status = types.StatusNew
		}

		switch cand.Status {
		case types.StatusNew:
			out.New++
			merged.Decisions = append(merged.Decisions, cand)
			index[cand.Key()] = len(merged.Decisions) - 1
		case types.StatusDuplicate:
			out.Dups++
		case types.StatusEnrichment:
			out.Enrich++
		}
		out.Candidates = append(out.Candidates, cand)
	}

	logging.L.Debugw("reconciliation complete",
		"new", out.New, "duplicates", out.Dups, "enrichments", out.Enrich,
		"store_before", len(store.Decisions), "store_after", len(merged.Decisions))
	out.Merged = merged
	return out
}

// classifyExact handles (category, technology_id) identity matches. Returns
// false when no exact match exists.
func classifyExact(cand *types.DecisionRecord, decisions []types.DecisionRecord, index map[string]int, threshold float64, merged *Store) bool {
	i, ok := index[cand.Key()]
	if !ok {
		return false
	}
	persisted := &merged.Decisions[i]

	extra := missingRefs(persisted.EvidenceRefs, cand.EvidenceRefs)
	if len(extra) == 0 && Similarity(persisted.Rationale, cand.Rationale) >= threshold {
		// Materially identical: candidate discarded, persisted record
		// retained unchanged.
		cand.Status = types.StatusDuplicate
		return true
	}

	// Additional or different evidence: extend the persisted evidence list.
	// Existing refs are never removed.
	persisted.EvidenceRefs = append(persisted.EvidenceRefs, extra...)
	sort.Strings(persisted.EvidenceRefs)
	cand.Status = types.StatusEnrichment
	return true
}

// classifyBySimilarity marks same-category candidates whose rationale is
// near-identical to a persisted record for a different technology ID. This
// catches renamed signatures deriving the same underlying decision.
func classifyBySimilarity(cand *types.DecisionRecord, decisions []types.DecisionRecord, threshold float64) bool {
	for _, d := range decisions {
		if d.Category != cand.Category || d.TechnologyID == cand.TechnologyID {
			continue
		}
		if Similarity(d.Rationale, cand.Rationale) >= threshold {
			cand.Status = types.StatusDuplicate
			return true
		}
	}
	return false
}

func missingRefs(have, want []string) []string {
	set := make(map[string]bool, len(have))
	for _, r := range have {
		set[r] = true
	}
	var out []string
	for _, r := range want {
		if !set[r] {
			out = append(out, r)
		}
	}
	return out
}
