package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/types"
)

func TestDecisionRoundTripWithMarkupCharacters(t *testing.T) {
	l := Layout{Out: t.TempDir()}
	// Rationale text carrying YAML-hostile characters must survive intact
	// because the artifact goes through the serializer, never string
	// concatenation.
	hostile := "postgresql: adopted [primary] - see {config} & \"quotes\" #4\nsecond line"
	in := types.DecisionRecord{
		ID: "DEC-001", Category: types.CatDatabase, TechnologyID: "postgresql",
		Rationale: hostile, Confidence: 0.91,
		EvidenceRefs: []string{"config/database.yml#4"},
		Status:       types.StatusNew,
	}
	p, err := l.WriteDecision(in)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Decision types.DecisionRecord `yaml:"decision"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		t.Fatalf("artifact is not valid YAML: %v", err)
	}
	if doc.Decision.Rationale != hostile {
		t.Fatalf("rationale mangled:\n got %q\nwant %q", doc.Decision.Rationale, hostile)
	}
}

func TestDecisionPathShape(t *testing.T) {
	l := Layout{Out: "/tmp/out"}
	d := types.DecisionRecord{Category: types.CatDatabase, TechnologyID: "postgresql"}
	got := l.DecisionPath(d)
	want := filepath.Join("/tmp/out", "decisions", "database--postgresql.yaml")
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestWriteDiagramsAlwaysProducesBothLevels(t *testing.T) {
	l := Layout{Out: t.TempDir()}
	set := analyzers.DiagramSet{Failed: true, FailureReason: "synthesis panicked"}
	written, err := l.WriteDiagrams(set)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 diagram files, got %d", len(written))
	}
	for _, level := range []string{"context", "container"} {
		b, err := os.ReadFile(l.DiagramPath(level))
		if err != nil {
			t.Fatalf("missing %s diagram: %v", level, err)
		}
		if !strings.Contains(string(b), "failed: true") {
			t.Fatalf("%s diagram must carry the failure flag:\n%s", level, b)
		}
	}
}

func TestFailedThreatModelArtifactIsFlagged(t *testing.T) {
	l := Layout{Out: t.TempDir()}
	tm := analyzers.FailedThreatModel(types.ErrAnalyzer)
	if _, err := l.WriteThreatModel(tm); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(l.ThreatModelPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "failed: true") {
		t.Fatalf("failed analyzer artifact must be flagged:\n%s", b)
	}
}

func TestRemoveDecisionIdempotent(t *testing.T) {
	l := Layout{Out: t.TempDir()}
	d := types.DecisionRecord{Category: types.CatCaching, TechnologyID: "redis"}
	if err := l.RemoveDecision(d); err != nil {
		t.Fatalf("removing a never-written decision must be a no-op: %v", err)
	}
	if _, err := l.WriteDecision(d); err != nil {
		t.Fatal(err)
	}
	if err := l.RemoveDecision(d); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.DecisionPath(d)); !os.IsNotExist(err) {
		t.Fatal("decision artifact should be gone")
	}
}

func TestWriteSummaryRendersTables(t *testing.T) {
	l := Layout{Out: t.TempDir()}
	p, err := l.WriteSummary(SummaryData{
		Root:         "/repo",
		FilesScanned: 10,
		EvidenceN:    3,
		Decisions: []types.DecisionRecord{{
			ID: "DEC-001", Category: types.CatDatabase, TechnologyID: "postgresql",
			Confidence: 0.9, Status: types.StatusAccepted,
		}},
		Threats: analyzers.ThreatModel{Skipped: true},
		Debt:    analyzers.DebtReport{Skipped: true},
		Quality: types.QualityReport{Score: 1.0, Recommendation: types.RecAccept},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, "postgresql") || !strings.Contains(s, "ACCEPT") {
		t.Fatalf("summary missing expected content:\n%s", s)
	}
	if strings.Contains(s, "Threat findings") {
		t.Fatal("skipped analyzers must not render sections")
	}
}
