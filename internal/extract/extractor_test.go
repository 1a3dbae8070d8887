package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/strata-dev/strata/internal/types"
)

func ev(tech string, cat types.Category, path string) types.Evidence {
	return types.Evidence{TechnologyID: tech, Category: cat, FilePath: path, Strength: 1.0, ContentMatch: true}
}

func TestSkeletonDeterministic(t *testing.T) {
	evs := []types.Evidence{
		ev("postgresql", types.CatDatabase, "config/database.yml"),
		ev("postgresql", types.CatDatabase, "docker-compose.yml"),
	}
	a := Skeleton("postgresql", types.CatDatabase, evs)
	b := Skeleton("postgresql", types.CatDatabase, evs)
	if a != b {
		t.Fatalf("skeleton must be byte-identical across calls:\n%q\n%q", a, b)
	}
	want := "postgresql was detected as the database solution based on evidence in 2 file(s): config/database.yml, docker-compose.yml. 2 reference(s) found, indicating it is the adopted technology for this concern."
	if a != want {
		t.Fatalf("skeleton drifted:\n got %q\nwant %q", a, want)
	}
}

func TestSkeletonOrderIndependent(t *testing.T) {
	a := Skeleton("redis", types.CatCaching, []types.Evidence{
		ev("redis", types.CatCaching, "b.rb"),
		ev("redis", types.CatCaching, "a.rb"),
	})
	b := Skeleton("redis", types.CatCaching, []types.Evidence{
		ev("redis", types.CatCaching, "a.rb"),
		ev("redis", types.CatCaching, "b.rb"),
	})
	if a != b {
		t.Fatal("skeleton must not depend on evidence order")
	}
}

func TestSkeletonTruncatesFileList(t *testing.T) {
	var evs []types.Evidence
	for i := 0; i < 9; i++ {
		evs = append(evs, ev("rails", types.CatFramework, fmt.Sprintf("app/f%d.rb", i)))
	}
	s := Skeleton("rails", types.CatFramework, evs)
	if !strings.Contains(s, "(and 4 more)") {
		t.Fatalf("expected truncated file list, got %q", s)
	}
	if !strings.Contains(s, "9 file(s)") {
		t.Fatalf("count must reflect all evidence, got %q", s)
	}
}

func TestNarrativeElaboratesSkeleton(t *testing.T) {
	evs := []types.Evidence{ev("postgresql", types.CatDatabase, "config/database.yml")}
	template := Run(evs, Options{DisableNarrative: true})
	narrative := Run(evs, Options{})

	if len(template) != 1 || len(narrative) != 1 {
		t.Fatalf("expected one decision each, got %d and %d", len(template), len(narrative))
	}
	// Narrative mode appends to the skeleton; it never rephrases it. The two
	// rationales must share the full template as a prefix so duplicate
	// detection works across modes.
	if !strings.HasPrefix(narrative[0].Rationale, template[0].Rationale) {
		t.Fatalf("narrative rationale must extend the template:\n got %q\nbase %q",
			narrative[0].Rationale, template[0].Rationale)
	}
	if !narrative[0].Narrated {
		t.Fatal("narrative decision should be flagged as narrated")
	}
	if template[0].Narrated {
		t.Fatal("template decision must not be flagged as narrated")
	}
}

type failingNarrator struct{}

func (failingNarrator) Elaborate(types.Category, string, []types.Evidence) (string, error) {
	return "", errors.New("backend unavailable")
}

func TestNarratorFailureFallsBackToTemplate(t *testing.T) {
	evs := []types.Evidence{ev("postgresql", types.CatDatabase, "config/database.yml")}
	got := Run(evs, Options{Narrator: failingNarrator{}})
	want := Run(evs, Options{DisableNarrative: true})
	if got[0].Rationale != want[0].Rationale {
		t.Fatal("failed narrator must yield the exact template rationale")
	}
	if got[0].Narrated {
		t.Fatal("fallback records are not narrated")
	}
}

func TestMinEvidenceThreshold(t *testing.T) {
	evs := []types.Evidence{
		ev("postgresql", types.CatDatabase, "config/database.yml"),
		ev("redis", types.CatCaching, "a.rb"),
		ev("redis", types.CatCaching, "b.rb"),
	}
	got := Run(evs, Options{MinEvidence: 2, DisableNarrative: true})
	if len(got) != 1 {
		t.Fatalf("expected only redis to clear the threshold, got %d decisions", len(got))
	}
	if got[0].TechnologyID != "redis" {
		t.Fatalf("unexpected survivor: %s", got[0].TechnologyID)
	}
}

func TestDecisionIDsMonotonicAndOrderStable(t *testing.T) {
	evs := []types.Evidence{
		ev("redis", types.CatCaching, "a.rb"),
		ev("postgresql", types.CatDatabase, "db.yml"),
	}
	got := Run(evs, Options{DisableNarrative: true})
	if len(got) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(got))
	}
	// Groups are processed in sorted key order: caching/redis before
	// database/postgresql.
	if got[0].ID != "DEC-001" || got[1].ID != "DEC-002" {
		t.Fatalf("unexpected IDs: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].TechnologyID != "redis" {
		t.Fatalf("expected deterministic group order, first was %s", got[0].TechnologyID)
	}
}

func TestEvidenceRefsCarryLineNumbers(t *testing.T) {
	evs := []types.Evidence{{
		TechnologyID: "postgresql", Category: types.CatDatabase,
		FilePath: "config/database.yml", Line: 4, Strength: 1.0, ContentMatch: true,
	}}
	got := Run(evs, Options{DisableNarrative: true})
	if got[0].EvidenceRefs[0] != "config/database.yml#4" {
		t.Fatalf("unexpected ref: %s", got[0].EvidenceRefs[0])
	}
}
