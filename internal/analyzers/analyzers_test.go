package analyzers

import (
	"errors"
	"testing"

	"github.com/strata-dev/strata/internal/types"
)

func someDecisions() []types.DecisionRecord {
	return []types.DecisionRecord{
		{ID: "DEC-001", Category: types.CatDatabase, TechnologyID: "postgresql"},
		{ID: "DEC-002", Category: types.CatFramework, TechnologyID: "rails"},
		{ID: "DEC-003", Category: types.CatCaching, TechnologyID: "redis"},
	}
}

func TestSynthesizeDiagramsBothLevels(t *testing.T) {
	set, err := SynthesizeDiagrams(Input{Decisions: someDecisions()})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Diagrams) != 2 {
		t.Fatalf("expected context and container diagrams, got %d", len(set.Diagrams))
	}
	levels := map[string]bool{}
	for _, d := range set.Diagrams {
		levels[d.Level] = true
	}
	if !levels["context"] || !levels["container"] {
		t.Fatalf("missing level: %+v", levels)
	}

	techs := set.Technologies()
	if len(techs) == 0 {
		t.Fatal("diagrams must reference detected technologies")
	}
	want := map[string]bool{"postgresql": false, "rails": false, "redis": false}
	for _, tech := range techs {
		if _, ok := want[tech]; ok {
			want[tech] = true
		}
	}
	for tech, seen := range want {
		if !seen {
			t.Errorf("technology %s not referenced", tech)
		}
	}
}

func TestContainerEdgesConnectAppsToStores(t *testing.T) {
	set, err := SynthesizeDiagrams(Input{Decisions: someDecisions()})
	if err != nil {
		t.Fatal(err)
	}
	var container Diagram
	for _, d := range set.Diagrams {
		if d.Level == "container" {
			container = d
		}
	}
	if len(container.Edges) == 0 {
		t.Fatal("container diagram has no edges")
	}
	ids := map[string]bool{}
	for _, n := range container.Nodes {
		ids[n.ID] = true
	}
	for _, e := range container.Edges {
		if !ids[e.From] || !ids[e.To] {
			t.Fatalf("edge references unknown node: %+v", e)
		}
	}
}

func TestRunSkipsSelectedAnalyzers(t *testing.T) {
	inv := scanTree(t, map[string]string{"app/main.rb": "x = 1\n"})
	out := Run(Input{Inv: inv}, Options{SkipThreatModel: true, SkipTechDebt: true})

	if out.ThreatState != StateSucceeded || !out.Threats.Skipped {
		t.Fatalf("skipped threat model: state=%s skipped=%v", out.ThreatState, out.Threats.Skipped)
	}
	if out.DebtState != StateSucceeded || !out.Debt.Skipped {
		t.Fatalf("skipped debt: state=%s skipped=%v", out.DebtState, out.Debt.Skipped)
	}
	if out.DiagramState != StateSucceeded {
		t.Fatalf("diagram synthesis must still run: %s", out.DiagramState)
	}
}

func TestRunAllSucceedOnCleanTree(t *testing.T) {
	inv := scanTree(t, map[string]string{
		"config/database.yml": "adapter: postgresql\n",
	})
	out := Run(Input{Inv: inv, Decisions: someDecisions()}, Options{})

	for name, st := range map[string]State{
		"diagram": out.DiagramState,
		"threat":  out.ThreatState,
		"debt":    out.DebtState,
	} {
		if st != StateSucceeded {
			t.Errorf("%s state = %s", name, st)
		}
	}
	if len(out.Diagrams.Diagrams) != 2 {
		t.Fatalf("diagram artifact incomplete: %+v", out.Diagrams)
	}
}

func TestGuardConvertsPanicToAnalyzerError(t *testing.T) {
	_, err := guard("boom", func() (int, error) {
		panic("unexpected nil")
	})
	if !errors.Is(err, types.ErrAnalyzer) {
		t.Fatalf("panic must surface as an analyzer error, got %v", err)
	}
}

func TestGuardWrapsReturnedError(t *testing.T) {
	_, err := guard("sad", func() (int, error) {
		return 0, errors.New("disk gone")
	})
	if !errors.Is(err, types.ErrAnalyzer) {
		t.Fatalf("returned error must be wrapped, got %v", err)
	}
}

func TestFailedArtifactsAreFlagged(t *testing.T) {
	err := errors.New("synthesis exploded")

	ds := FailedDiagramSet(err)
	if !ds.Failed || ds.FailureReason == "" || ds.Diagrams == nil {
		t.Fatalf("failed diagram set malformed: %+v", ds)
	}
	tm := FailedThreatModel(err)
	if !tm.Failed || tm.Findings == nil {
		t.Fatalf("failed threat model malformed: %+v", tm)
	}
	dr := FailedDebtReport(err)
	if !dr.Failed || dr.Items == nil {
		t.Fatalf("failed debt report malformed: %+v", dr)
	}
}
