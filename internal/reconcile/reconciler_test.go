package reconcile

import (
	"testing"

	"github.com/strata-dev/strata/internal/types"
)

func persisted(tech string, cat types.Category, rationale string, refs ...string) types.DecisionRecord {
	return types.DecisionRecord{
		ID: "DEC-001", Category: cat, TechnologyID: tech,
		Rationale: rationale, EvidenceRefs: refs, Status: types.StatusAccepted,
	}
}

func candidate(tech string, cat types.Category, rationale string, refs ...string) types.DecisionRecord {
	return types.DecisionRecord{
		ID: "DEC-001", Category: cat, TechnologyID: tech,
		Rationale: rationale, EvidenceRefs: refs, Status: types.StatusNew,
	}
}

const pgRationale = "postgresql was detected as the database solution based on evidence in 1 file(s): config/database.yml. 1 reference(s) found, indicating it is the adopted technology for this concern."

func TestExactDuplicateLeavesStoreUnchanged(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
	}}
	out := Run(store, []types.DecisionRecord{
		candidate("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
	}, 0.80)

	if out.Dups != 1 || out.New != 0 || out.Enrich != 0 {
		t.Fatalf("expected pure duplicate, got new=%d dups=%d enrich=%d", out.New, out.Dups, out.Enrich)
	}
	if len(out.Merged.Decisions) != 1 {
		t.Fatalf("duplicate must not grow the store, got %d decisions", len(out.Merged.Decisions))
	}
	if out.Candidates[0].Status != types.StatusDuplicate {
		t.Fatalf("candidate status = %s", out.Candidates[0].Status)
	}
}

func TestEnrichmentExtendsEvidenceOnly(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
	}}
	out := Run(store, []types.DecisionRecord{
		candidate("postgresql", types.CatDatabase, pgRationale,
			"config/database.yml", "docker-compose.yml#12"),
	}, 0.80)

	if out.Enrich != 1 {
		t.Fatalf("expected enrichment, got new=%d dups=%d enrich=%d", out.New, out.Dups, out.Enrich)
	}
	got := out.Merged.Decisions[0]
	if len(got.EvidenceRefs) != 2 {
		t.Fatalf("expected 2 refs after enrichment, got %v", got.EvidenceRefs)
	}
	// Original rationale and identity stay untouched; only evidence grows.
	if got.Rationale != pgRationale {
		t.Fatal("enrichment must not rewrite the persisted rationale")
	}
	if got.ID != "DEC-001" || got.Status != types.StatusAccepted {
		t.Fatalf("enrichment must not alter persisted identity: %+v", got)
	}
}

func TestEnrichmentNeverRemovesRefs(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgresql", types.CatDatabase, pgRationale,
			"config/database.yml", "legacy/settings.py#3"),
	}}
	// Candidate no longer sees the legacy file but adds a new one.
	out := Run(store, []types.DecisionRecord{
		candidate("postgresql", types.CatDatabase, "different rationale text entirely now",
			"docker-compose.yml#12"),
	}, 0.80)

	refs := out.Merged.Decisions[0].EvidenceRefs
	if len(refs) != 3 {
		t.Fatalf("expected union of refs, got %v", refs)
	}
	for _, want := range []string{"config/database.yml", "legacy/settings.py#3", "docker-compose.yml#12"} {
		found := false
		for _, r := range refs {
			if r == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("ref %s lost during enrichment: %v", want, refs)
		}
	}
}

func TestSimilarDifferentTechIsDuplicate(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgres", types.CatDatabase, pgRationale, "config/database.yml"),
	}}
	// Renamed signature ID deriving a near-identical rationale.
	out := Run(store, []types.DecisionRecord{
		candidate("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
	}, 0.80)

	if out.Dups != 1 || out.New != 0 {
		t.Fatalf("expected similarity duplicate, got new=%d dups=%d", out.New, out.Dups)
	}
	if len(out.Merged.Decisions) != 1 {
		t.Fatal("similarity duplicate must not grow the store")
	}
}

func TestNewDecisionAppends(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
	}}
	out := Run(store, []types.DecisionRecord{
		candidate("redis", types.CatCaching, "redis was detected as the caching solution", "config/redis.rb"),
	}, 0.80)

	if out.New != 1 {
		t.Fatalf("expected one new decision, got %d", out.New)
	}
	if len(out.Merged.Decisions) != 2 {
		t.Fatalf("expected store to grow to 2, got %d", len(out.Merged.Decisions))
	}
}

func TestMergedAlwaysContainsEveryPersistedDecision(t *testing.T) {
	store := Store{Decisions: []types.DecisionRecord{
		persisted("postgresql", types.CatDatabase, pgRationale, "config/database.yml"),
		persisted("redis", types.CatCaching, "redis caching rationale", "config/redis.rb"),
	}}
	// Empty run: nothing detected, e.g. the tree shrank. The store must not.
	out := Run(store, nil, 0.80)
	if len(out.Merged.Decisions) != 2 {
		t.Fatalf("reconciliation must never shrink the store, got %d", len(out.Merged.Decisions))
	}
}

func TestSimilarityTokenJaccard(t *testing.T) {
	if s := Similarity("postgres is the database", "postgres is the database"); s != 1.0 {
		t.Fatalf("identical texts must score 1.0, got %f", s)
	}
	if s := Similarity("alpha beta gamma", "delta epsilon zeta"); s != 0.0 {
		t.Fatalf("disjoint texts must score 0.0, got %f", s)
	}
	a := "postgresql was detected as the database solution"
	b := "postgresql was detected as the primary database solution"
	if s := Similarity(a, b); s <= 0.7 || s >= 1.0 {
		t.Fatalf("near-identical texts should land high but below 1.0, got %f", s)
	}
}
