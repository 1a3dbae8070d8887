package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/types"
)

// SummaryData is everything the human-readable run summary reports.
type SummaryData struct {
	Root         string
	FilesScanned int
	EvidenceN    int
	Decisions    []types.DecisionRecord
	Threats      analyzers.ThreatModel
	Debt         analyzers.DebtReport
	Quality      types.QualityReport
	DurationSecs float64
}

// WriteSummary renders reports/run-summary.md. The summary is prose plus
// fenced tables; all structured data lives in the sibling YAML artifacts.
func (l Layout) WriteSummary(d SummaryData) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Analysis run summary\n\n")
	fmt.Fprintf(&buf, "- Root: `%s`\n", d.Root)
	fmt.Fprintf(&buf, "- Generated: %s\n", Stamp())
	fmt.Fprintf(&buf, "- Files scanned: %d\n", d.FilesScanned)
	fmt.Fprintf(&buf, "- Evidence records: %d\n", d.EvidenceN)
	fmt.Fprintf(&buf, "- Duration: %.2fs\n", d.DurationSecs)
	fmt.Fprintf(&buf, "- Verdict: **%s** (score %.2f)\n\n", d.Quality.Recommendation, d.Quality.Score)

	fmt.Fprintf(&buf, "## Decisions\n\n```\n")
	WriteDecisionTable(&buf, d.Decisions)
	fmt.Fprintf(&buf, "```\n\n")

	if !d.Threats.Skipped {
		fmt.Fprintf(&buf, "## Threat findings\n\n```\n")
		writeThreatTable(&buf, d.Threats)
		fmt.Fprintf(&buf, "```\n\n")
	}
	if !d.Debt.Skipped {
		fmt.Fprintf(&buf, "## Technical debt\n\n```\n")
		writeDebtTable(&buf, d.Debt)
		fmt.Fprintf(&buf, "```\n\n")
	}

	if len(d.Quality.Issues) > 0 {
		fmt.Fprintf(&buf, "## Quality issues\n\n")
		for _, is := range d.Quality.Issues {
			crit := ""
			if is.Critical {
				crit = " (CRITICAL)"
			}
			fmt.Fprintf(&buf, "- `%s`%s: %s (-%.2f)\n", is.Checker, crit, is.Detail, is.Penalty)
		}
		fmt.Fprintln(&buf)
	}
	if len(d.Quality.Corrections) > 0 {
		fmt.Fprintf(&buf, "## Corrections applied\n\n")
		for _, c := range d.Quality.Corrections {
			fmt.Fprintf(&buf, "- `%s`: %s\n", c.Checker, c.Action)
		}
		fmt.Fprintln(&buf)
	}

	p := l.SummaryPath()
	if err := os.MkdirAll(l.ReportsDir(), 0o755); err != nil {
		return p, err
	}
	return p, os.WriteFile(p, buf.Bytes(), 0o644)
}

// WriteDecisionTable renders the decision table; also used for terminal
// output at the end of a run.
func WriteDecisionTable(w io.Writer, decisions []types.DecisionRecord) {
	sorted := append([]types.DecisionRecord(nil), decisions...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].TechnologyID < sorted[j].TechnologyID
	})
	table := tablewriter.NewTable(w)
	table.Header("Category", "Technology", "Confidence", "Band", "Status", "Evidence")
	for _, d := range sorted {
		table.Append(string(d.Category), d.TechnologyID,
			fmt.Sprintf("%.2f", d.Confidence), string(types.BandFor(d.Confidence)),
			string(d.Status), fmt.Sprintf("%d", len(d.EvidenceRefs)))
	}
	table.Render()
}

func writeThreatTable(w io.Writer, tm analyzers.ThreatModel) {
	if tm.Failed {
		fmt.Fprintf(w, "threat modeler FAILED: %s\n", tm.FailureReason)
		return
	}
	table := tablewriter.NewTable(w)
	table.Header("ID", "STRIDE", "Severity", "Escalate", "Title")
	for _, f := range tm.Findings {
		table.Append(f.ID, string(f.Stride), fmt.Sprintf("%.1f", f.Severity),
			fmt.Sprintf("%v", f.Escalate), f.Title)
	}
	table.Render()
}

func writeDebtTable(w io.Writer, rep analyzers.DebtReport) {
	if rep.Failed {
		fmt.Fprintf(w, "debt detector FAILED: %s\n", rep.FailureReason)
		return
	}
	table := tablewriter.NewTable(w)
	table.Header("ID", "Priority", "Category", "Location", "Hours")
	for _, it := range rep.Items {
		table.Append(it.ID, string(it.Priority), it.Category, it.Location,
			fmt.Sprintf("%.0f", it.EffortHours))
	}
	table.Render()
}
