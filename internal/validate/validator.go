// Package validate re-inspects rendered artifacts for known defect classes,
// applies automatic fixes, and resolves the run to an accept/review/reject
// decision.
package validate

import (
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/render"
	"github.com/strata-dev/strata/internal/types"
)

// Penalties and thresholds of the quality gate.
const (
	PenaltyRemovedDecision     = 0.05
	PenaltyIncompleteReport    = 0.10
	PenaltyRegeneratedChart    = 0.05
	PenaltyMissingArtifact     = 0.05
	PenaltyFailedSerialization = 0.05

	AcceptMin = 0.85 // inclusive
	ReviewMin = 0.70 // inclusive

	// pollutionLimit is the maximum share of non-production evidence a
	// decision may carry before it is removed.
	pollutionLimit = 0.70
)

// Context is the validator's working set. Decisions is mutated in place:
// removed records get StatusRemoved.
type Context struct {
	Layout    render.Layout
	Inv       inventory.Inventory
	Decisions []types.DecisionRecord
	Diagrams  analyzers.DiagramSet
	Threats   analyzers.ThreatModel
	Debt      analyzers.DebtReport

	// SerializationIssues carries renderer failures; each is CRITICAL for
	// its artifact only.
	SerializationIssues []types.QualityIssue
}

// Run executes the fixed checker sequence and computes the aggregate score.
// The score starts at 1.0, each issue applies its penalty, floored at 0.0.
func Run(ctx *Context) types.QualityReport {
	rep := types.QualityReport{Score: 1.0}

	for _, is := range ctx.SerializationIssues {
		addIssue(&rep, is)
	}

	checkEvidencePollution(ctx, &rep)
	checkCompleteness(ctx, &rep)
	checkDiagramSpecificity(ctx, &rep)
	checkArtifactPresence(ctx, &rep)

	rep.Recommendation = decide(rep)
	logging.L.Infow("quality gate resolved",
		"score", rep.Score, "recommendation", rep.Recommendation,
		"issues", len(rep.Issues), "corrections", len(rep.Corrections))
	return rep
}

func decide(rep types.QualityReport) types.Recommendation {
	switch {
	case rep.HasCritical():
		return types.RecReject
	case rep.Score >= AcceptMin:
		return types.RecAccept
	case rep.Score >= ReviewMin:
		return types.RecReview
	default:
		return types.RecReject
	}
}

// addIssue applies the penalty in exact hundredths: accumulated float
// subtraction drifts below the inclusive 0.85 boundary after a few 0.05
// penalties.
func addIssue(rep *types.QualityReport, is types.QualityIssue) {
	rep.Issues = append(rep.Issues, is)
	rep.Score = math.Round((rep.Score-is.Penalty)*100) / 100
	if rep.Score < 0 {
		rep.Score = 0
	}
}

// checkEvidencePollution removes decisions whose evidence overwhelmingly
// comes from fixtures, test doubles, vendored trees, or generated code.
func checkEvidencePollution(ctx *Context, rep *types.QualityReport) {
	for i := range ctx.Decisions {
		d := &ctx.Decisions[i]
		if d.Status == types.StatusRemoved {
			continue
		}
		paths := refPaths(d.EvidenceRefs)
		if ctx.Inv.ProductionShare(paths) >= 1-pollutionLimit {
			continue
		}
		d.Status = types.StatusRemoved
		if err := ctx.Layout.RemoveDecision(*d); err != nil {
			logging.L.Warnw("could not delete polluted decision artifact", "decision", d.Key(), "err", err)
		}
		addIssue(rep, types.QualityIssue{
			Checker:  "evidence-pollution",
			Artifact: ctx.Layout.DecisionPath(*d),
			Detail:   d.Key() + ": more than 70% of evidence comes from non-production paths",
			Penalty:  PenaltyRemovedDecision,
		})
		rep.Corrections = append(rep.Corrections, types.Correction{
			Checker: "evidence-pollution",
			Action:  "removed decision " + d.Key(),
		})
	}
}

func refPaths(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if i := strings.LastIndex(r, "#"); i >= 0 {
			r = r[:i]
		}
		out = append(out, r)
	}
	return out
}

// checkCompleteness compares each report's rendered item count against its
// computed count and regenerates the whole file on a shortfall; truncated
// reports are never patched in place.
func checkCompleteness(ctx *Context, rep *types.QualityReport) {
	if !ctx.Debt.Skipped && !ctx.Debt.Failed {
		if renderedDebtCount(ctx.Layout.DebtReportPath()) < len(ctx.Debt.Items) {
			if _, err := ctx.Layout.WriteDebtReport(ctx.Debt); err != nil {
				logging.L.Warnw("debt report regeneration failed", "err", err)
			}
			addIssue(rep, types.QualityIssue{
				Checker:  "completeness",
				Artifact: ctx.Layout.DebtReportPath(),
				Detail:   "debt report rendered fewer items than computed",
				Penalty:  PenaltyIncompleteReport,
			})
			rep.Corrections = append(rep.Corrections, types.Correction{
				Checker: "completeness", Action: "regenerated tech-debt report",
				Artifact: ctx.Layout.DebtReportPath(),
			})
		}
	}
	if !ctx.Threats.Skipped && !ctx.Threats.Failed {
		if renderedThreatCount(ctx.Layout.ThreatModelPath()) < len(ctx.Threats.Findings) {
			if _, err := ctx.Layout.WriteThreatModel(ctx.Threats); err != nil {
				logging.L.Warnw("threat model regeneration failed", "err", err)
			}
			addIssue(rep, types.QualityIssue{
				Checker:  "completeness",
				Artifact: ctx.Layout.ThreatModelPath(),
				Detail:   "threat model rendered fewer findings than computed",
				Penalty:  PenaltyIncompleteReport,
			})
			rep.Corrections = append(rep.Corrections, types.Correction{
				Checker: "completeness", Action: "regenerated threat model",
				Artifact: ctx.Layout.ThreatModelPath(),
			})
		}
	}
}

func renderedDebtCount(path string) int {
	var doc struct {
		Items []yaml.Node `yaml:"items"`
	}
	if !parseYAMLFile(path, &doc) {
		return 0
	}
	return len(doc.Items)
}

func renderedThreatCount(path string) int {
	var doc struct {
		Findings []yaml.Node `yaml:"findings"`
	}
	if !parseYAMLFile(path, &doc) {
		return 0
	}
	return len(doc.Findings)
}

func parseYAMLFile(path string, v any) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return yaml.Unmarshal(b, v) == nil
}

// checkDiagramSpecificity regenerates diagrams that reference no detected
// technology despite decisions existing; a generic diagram is worse than a
// redrawn one.
func checkDiagramSpecificity(ctx *Context, rep *types.QualityReport) {
	if ctx.Diagrams.Failed {
		return
	}
	live := 0
	for _, d := range ctx.Decisions {
		if d.Status != types.StatusRemoved {
			live++
		}
	}
	if live == 0 || len(ctx.Diagrams.Technologies()) > 0 {
		return
	}
	regenerated, err := analyzers.SynthesizeDiagrams(analyzers.Input{
		Inv:       ctx.Inv,
		Decisions: liveDecisions(ctx.Decisions),
	})
	if err == nil {
		ctx.Diagrams = regenerated
		if _, werr := ctx.Layout.WriteDiagrams(regenerated); werr != nil {
			logging.L.Warnw("diagram regeneration write failed", "err", werr)
		}
	}
	addIssue(rep, types.QualityIssue{
		Checker: "diagram-specificity",
		Detail:  "diagrams referenced no detected technology",
		Penalty: PenaltyRegeneratedChart,
	})
	rep.Corrections = append(rep.Corrections, types.Correction{
		Checker: "diagram-specificity", Action: "regenerated architecture diagrams",
	})
}

func liveDecisions(ds []types.DecisionRecord) []types.DecisionRecord {
	var out []types.DecisionRecord
	for _, d := range ds {
		if d.Status != types.StatusRemoved {
			out = append(out, d)
		}
	}
	return out
}

// checkArtifactPresence verifies every required output file exists on disk.
// A missing required file is CRITICAL regardless of score.
func checkArtifactPresence(ctx *Context, rep *types.QualityReport) {
	for _, p := range ctx.Layout.RequiredArtifacts(liveDecisions(ctx.Decisions)) {
		if _, err := os.Stat(p); err == nil {
			continue
		}
		addIssue(rep, types.QualityIssue{
			Checker:  "artifact-presence",
			Artifact: p,
			Detail:   "required artifact missing from disk",
			Critical: true,
			Penalty:  PenaltyMissingArtifact,
		})
	}
}
