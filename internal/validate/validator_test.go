package validate

import (
	"os"
	"testing"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/render"
	"github.com/strata-dev/strata/internal/types"
)

func TestDecideBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		critical bool
		want     types.Recommendation
	}{
		{"perfect", 1.0, false, types.RecAccept},
		{"accept boundary inclusive", 0.85, false, types.RecAccept},
		{"just below accept", 0.8499, false, types.RecReview},
		{"review boundary inclusive", 0.70, false, types.RecReview},
		{"just below review", 0.6999, false, types.RecReject},
		{"critical overrides score", 1.0, true, types.RecReject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := types.QualityReport{Score: tt.score}
			if tt.critical {
				rep.Issues = []types.QualityIssue{{Critical: true}}
			}
			if got := decide(rep); got != tt.want {
				t.Fatalf("decide(%f, critical=%v) = %s, want %s", tt.score, tt.critical, got, tt.want)
			}
		})
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	rep := types.QualityReport{Score: 0.05}
	addIssue(&rep, types.QualityIssue{Penalty: 0.10})
	if rep.Score != 0 {
		t.Fatalf("score must floor at zero, got %f", rep.Score)
	}
}

func TestAccumulatedPenaltiesKeepInclusiveBoundary(t *testing.T) {
	// Naive float subtraction leaves 1.0 - 3*0.05 at 0.84999...; the gate
	// must land on exactly 0.85 and accept.
	rep := types.QualityReport{Score: 1.0}
	for i := 0; i < 3; i++ {
		addIssue(&rep, types.QualityIssue{Penalty: PenaltyRemovedDecision})
	}
	if rep.Score != 0.85 {
		t.Fatalf("three 0.05 penalties left score %v, want exactly 0.85", rep.Score)
	}
	if got := decide(rep); got != types.RecAccept {
		t.Fatalf("boundary score resolved to %s, want %s", got, types.RecAccept)
	}
}

func TestThreeRemovalsStillAccept(t *testing.T) {
	polluted := func(id, tech string) types.DecisionRecord {
		return types.DecisionRecord{
			ID: id, Category: types.CatDatabase, TechnologyID: tech,
			Rationale:    tech + " rationale",
			EvidenceRefs: []string{"spec/fixtures/database.yml#1"},
			Status:       types.StatusNew,
		}
	}
	ctx := setup(t, []types.DecisionRecord{
		productionDecision(),
		polluted("DEC-002", "mysql"),
		polluted("DEC-003", "sqlite"),
		polluted("DEC-004", "mongodb"),
	})
	rep := Run(ctx)

	if rep.Score != 0.85 {
		t.Fatalf("score = %v, want 0.85", rep.Score)
	}
	if rep.Recommendation != types.RecAccept {
		t.Fatalf("verdict = %s, want %s", rep.Recommendation, types.RecAccept)
	}
}

// setup writes a full, consistent artifact tree so only the defect under test
// trips its checker.
func setup(t *testing.T, decisions []types.DecisionRecord) *Context {
	t.Helper()
	l := render.Layout{Out: t.TempDir()}

	diagrams := analyzers.DiagramSet{Diagrams: []analyzers.Diagram{
		{Name: "System Context", Level: "context", Nodes: []analyzers.Node{
			{ID: "system", Label: "System", Kind: "system"},
			{ID: "db", Label: "Database", Kind: "datastore", Technology: "postgresql"},
		}},
		{Name: "Containers", Level: "container", Nodes: []analyzers.Node{
			{ID: "app", Label: "Application", Kind: "container", Technology: "rails"},
		}},
	}}
	threats := analyzers.ThreatModel{Findings: nil}
	debt := analyzers.DebtReport{Items: nil}

	for _, d := range decisions {
		if _, err := l.WriteDecision(d); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := l.WriteThreatModel(threats); err != nil {
		t.Fatal(err)
	}
	if _, err := l.WriteDebtReport(debt); err != nil {
		t.Fatal(err)
	}
	if _, err := l.WriteDiagrams(diagrams); err != nil {
		t.Fatal(err)
	}

	return &Context{
		Layout: l,
		Inv: inventory.Inventory{Files: []inventory.File{
			{Path: "config/database.yml", Kind: inventory.KindConfig},
			{Path: "spec/fixtures/database.yml", Kind: inventory.KindFixture},
			{Path: "vendor/lib/database.yml", Kind: inventory.KindVendored},
		}},
		Decisions: decisions,
		Diagrams:  diagrams,
		Threats:   threats,
		Debt:      debt,
	}
}

func productionDecision() types.DecisionRecord {
	return types.DecisionRecord{
		ID: "DEC-001", Category: types.CatDatabase, TechnologyID: "postgresql",
		Rationale:    "postgresql rationale",
		EvidenceRefs: []string{"config/database.yml#4"},
		Status:       types.StatusNew,
		Confidence:   0.9,
	}
}

func TestCleanRunAccepts(t *testing.T) {
	ctx := setup(t, []types.DecisionRecord{productionDecision()})
	rep := Run(ctx)
	if rep.Score != 1.0 {
		t.Fatalf("clean run score = %f", rep.Score)
	}
	if rep.Recommendation != types.RecAccept {
		t.Fatalf("clean run verdict = %s", rep.Recommendation)
	}
	if len(rep.Issues) != 0 || len(rep.Corrections) != 0 {
		t.Fatalf("clean run reported defects: %+v", rep)
	}
}

func TestPollutedDecisionIsRemoved(t *testing.T) {
	polluted := types.DecisionRecord{
		ID: "DEC-002", Category: types.CatDatabase, TechnologyID: "mysql",
		Rationale: "mysql rationale",
		EvidenceRefs: []string{
			"spec/fixtures/database.yml#1",
			"vendor/lib/database.yml#2",
		},
		Status: types.StatusNew,
	}
	ctx := setup(t, []types.DecisionRecord{productionDecision(), polluted})
	rep := Run(ctx)

	if ctx.Decisions[1].Status != types.StatusRemoved {
		t.Fatalf("polluted decision not removed: %s", ctx.Decisions[1].Status)
	}
	if ctx.Decisions[0].Status == types.StatusRemoved {
		t.Fatal("production decision must survive")
	}
	if _, err := os.Stat(ctx.Layout.DecisionPath(polluted)); !os.IsNotExist(err) {
		t.Fatal("polluted decision artifact must be deleted")
	}
	if len(rep.Corrections) != 1 {
		t.Fatalf("expected one correction, got %+v", rep.Corrections)
	}
	if rep.Score != 1.0-PenaltyRemovedDecision {
		t.Fatalf("score = %f", rep.Score)
	}
	if rep.Recommendation != types.RecAccept {
		t.Fatalf("one removal keeps the run acceptable, got %s", rep.Recommendation)
	}
}

func TestMixedEvidenceSurvivesPollutionCheck(t *testing.T) {
	// Half production, half fixture: 50% production share is above the 30%
	// floor, so the decision stays.
	mixed := types.DecisionRecord{
		ID: "DEC-002", Category: types.CatDatabase, TechnologyID: "mysql",
		EvidenceRefs: []string{"config/database.yml#4", "spec/fixtures/database.yml#1"},
		Status:       types.StatusNew,
	}
	ctx := setup(t, []types.DecisionRecord{mixed})
	Run(ctx)
	if ctx.Decisions[0].Status == types.StatusRemoved {
		t.Fatal("mixed-evidence decision must not be removed")
	}
}

func TestMissingArtifactIsCriticalReject(t *testing.T) {
	d := productionDecision()
	ctx := setup(t, []types.DecisionRecord{d})
	if err := os.Remove(ctx.Layout.ThreatModelPath()); err != nil {
		t.Fatal(err)
	}
	rep := Run(ctx)
	if !rep.HasCritical() {
		t.Fatal("missing artifact must be CRITICAL")
	}
	if rep.Recommendation != types.RecReject {
		t.Fatalf("critical issue must reject, got %s", rep.Recommendation)
	}
	// Score alone would still clear the accept threshold; the critical flag
	// is what rejects.
	if rep.Score < AcceptMin {
		t.Fatalf("unexpected score %f", rep.Score)
	}
}

func TestTruncatedDebtReportIsRegenerated(t *testing.T) {
	ctx := setup(t, []types.DecisionRecord{productionDecision()})
	ctx.Debt = analyzers.DebtReport{
		ComputedCount: 2,
		Items: []types.DebtItem{
			{ID: "DEBT-001", Priority: types.P1, Category: "todo_density", Location: "app/a.rb"},
			{ID: "DEBT-002", Priority: types.P3, Category: "oversized_file", Location: "app/b.rb"},
		},
	}
	// Simulate a truncated render: only one of two items on disk.
	truncated := analyzers.DebtReport{ComputedCount: 2, Items: ctx.Debt.Items[:1]}
	if _, err := ctx.Layout.WriteDebtReport(truncated); err != nil {
		t.Fatal(err)
	}

	rep := Run(ctx)

	found := false
	for _, is := range rep.Issues {
		if is.Checker == "completeness" {
			found = true
			if is.Penalty != PenaltyIncompleteReport {
				t.Fatalf("wrong penalty %f", is.Penalty)
			}
		}
	}
	if !found {
		t.Fatalf("truncation not flagged: %+v", rep.Issues)
	}
	// The regenerated file must now carry both items.
	if n := renderedDebtCount(ctx.Layout.DebtReportPath()); n != 2 {
		t.Fatalf("regenerated report has %d items, want 2", n)
	}
}

func TestGenericDiagramsAreRegenerated(t *testing.T) {
	ctx := setup(t, []types.DecisionRecord{productionDecision()})
	// Strip all technology references: the specificity checker must redraw.
	ctx.Diagrams = analyzers.DiagramSet{Diagrams: []analyzers.Diagram{
		{Name: "System Context", Level: "context", Nodes: []analyzers.Node{
			{ID: "system", Label: "System", Kind: "system"},
		}},
	}}
	rep := Run(ctx)

	found := false
	for _, c := range rep.Corrections {
		if c.Checker == "diagram-specificity" {
			found = true
		}
	}
	if !found {
		t.Fatalf("generic diagrams not corrected: %+v", rep.Corrections)
	}
	if len(ctx.Diagrams.Technologies()) == 0 {
		t.Fatal("regenerated diagrams must reference detected technologies")
	}
}

func TestSerializationIssuesAreCritical(t *testing.T) {
	ctx := setup(t, []types.DecisionRecord{productionDecision()})
	ctx.SerializationIssues = []types.QualityIssue{{
		Checker: "serialization", Artifact: "x.yaml", Detail: "marshal failed",
		Critical: true, Penalty: PenaltyFailedSerialization,
	}}
	rep := Run(ctx)
	if rep.Recommendation != types.RecReject {
		t.Fatalf("serialization failure must reject, got %s", rep.Recommendation)
	}
}
