// Package render serializes pipeline output into the on-disk artifact
// layout. Every artifact is built as a plain nested value and handed to the
// YAML marshaler; free text (rationales can carry markup characters) only
// ever reaches the file through the serializer's escaping, never through
// string concatenation of structured syntax.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/types"
)

// Layout resolves the fixed relative output structure.
type Layout struct {
	Out string
}

func (l Layout) DecisionsDir() string     { return filepath.Join(l.Out, "decisions") }
func (l Layout) SecurityDir() string      { return filepath.Join(l.Out, "security") }
func (l Layout) ArchitectureDir() string  { return filepath.Join(l.Out, "architecture") }
func (l Layout) ReportsDir() string       { return filepath.Join(l.Out, "reports") }
func (l Layout) ThreatModelPath() string  { return filepath.Join(l.SecurityDir(), "threat-model.yaml") }
func (l Layout) DebtReportPath() string   { return filepath.Join(l.ReportsDir(), "tech-debt.yaml") }
func (l Layout) QualityPath() string      { return filepath.Join(l.ReportsDir(), "quality-report.yaml") }
func (l Layout) SummaryPath() string      { return filepath.Join(l.ReportsDir(), "run-summary.md") }
func (l Layout) AuditPath() string        { return filepath.Join(l.ReportsDir(), "audit.jsonl") }

// DecisionPath returns the per-decision artifact path.
func (l Layout) DecisionPath(d types.DecisionRecord) string {
	return filepath.Join(l.DecisionsDir(), fmt.Sprintf("%s--%s.yaml", d.Category, d.TechnologyID))
}

// DiagramPath returns the per-diagram artifact path.
func (l Layout) DiagramPath(level string) string {
	return filepath.Join(l.ArchitectureDir(), level+"-diagram.yaml")
}

// RequiredArtifacts lists the files the presence checker demands for a run
// with the given decisions.
func (l Layout) RequiredArtifacts(decisions []types.DecisionRecord) []string {
	paths := []string{
		l.ThreatModelPath(),
		l.DebtReportPath(),
		l.DiagramPath("context"),
		l.DiagramPath("container"),
	}
	for _, d := range decisions {
		paths = append(paths, l.DecisionPath(d))
	}
	return paths
}

type decisionDoc struct {
	Decision types.DecisionRecord `yaml:"decision"`
}

type diagramDoc struct {
	Failed        bool              `yaml:"failed,omitempty"`
	FailureReason string            `yaml:"failure_reason,omitempty"`
	Diagram       analyzers.Diagram `yaml:"diagram"`
}

// WriteDecision renders one decision record.
func (l Layout) WriteDecision(d types.DecisionRecord) (string, error) {
	p := l.DecisionPath(d)
	return p, writeYAML(p, decisionDoc{Decision: d})
}

// WriteThreatModel renders the threat-model artifact, including the minimal
// flagged form for a failed analyzer.
func (l Layout) WriteThreatModel(tm analyzers.ThreatModel) (string, error) {
	p := l.ThreatModelPath()
	return p, writeYAML(p, tm)
}

// WriteDebtReport renders the tech-debt artifact.
func (l Layout) WriteDebtReport(rep analyzers.DebtReport) (string, error) {
	p := l.DebtReportPath()
	return p, writeYAML(p, rep)
}

// WriteDiagrams renders one file per diagram. A failed set still writes the
// two required artifacts with the failure flag carried in each.
func (l Layout) WriteDiagrams(set analyzers.DiagramSet) ([]string, error) {
	docs := map[string]diagramDoc{
		"context":   {Failed: set.Failed, FailureReason: set.FailureReason},
		"container": {Failed: set.Failed, FailureReason: set.FailureReason},
	}
	for _, d := range set.Diagrams {
		doc := docs[d.Level]
		doc.Diagram = d
		docs[d.Level] = doc
	}
	var written []string
	for _, level := range []string{"context", "container"} {
		p := l.DiagramPath(level)
		if err := writeYAML(p, docs[level]); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// WriteQualityReport renders the machine-readable quality gate result.
func (l Layout) WriteQualityReport(q types.QualityReport) (string, error) {
	p := l.QualityPath()
	return p, writeYAML(p, q)
}

// RemoveDecision deletes a rendered decision artifact; used when the
// validator removes a record for evidence pollution.
func (l Layout) RemoveDecision(d types.DecisionRecord) error {
	err := os.Remove(l.DecisionPath(d))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func writeYAML(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSerialization, path, err)
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSerialization, path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrSerialization, path, err)
	}
	return nil
}

// Stamp is the run timestamp recorded in the human-readable summary; kept
// out of the structured artifacts so identical evidence renders identical
// files across runs.
func Stamp() string { return time.Now().UTC().Format(time.RFC3339) }
