// Package pipeline orchestrates the analysis stages: scan, detect, extract,
// score, reconcile, analyze, render, validate. Each stage consumes the
// previous stage's full output; only the three analyzers run in parallel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/strata-dev/strata/internal/analyzers"
	"github.com/strata-dev/strata/internal/audit"
	"github.com/strata-dev/strata/internal/cache"
	"github.com/strata-dev/strata/internal/detect"
	"github.com/strata-dev/strata/internal/extract"
	"github.com/strata-dev/strata/internal/gitops"
	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/reconcile"
	"github.com/strata-dev/strata/internal/render"
	"github.com/strata-dev/strata/internal/score"
	"github.com/strata-dev/strata/internal/signature"
	"github.com/strata-dev/strata/internal/tracker"
	"github.com/strata-dev/strata/internal/types"
	"github.com/strata-dev/strata/internal/validate"
)

// Options configures one analysis run.
type Options struct {
	Out       string // artifact directory; default <root>/.strata
	StorePath string // persisted decision store; default <out>/decision-store.yaml

	IncludeGlobs  string
	ExcludeGlobs  string
	MaxFiles      int
	MaxTotalBytes int64
	MaxReadBytes  int64

	MinEvidence int
	Similarity  float64

	SkipThreatModel  bool
	SkipTechDebt     bool
	DisableNarrative bool
	CreateTickets    bool
	BranchName       string
	NoCache          bool

	SignatureFiles []string

	// Collaborators; nil selects the defaults.
	Narrator extract.Narrator
	Brancher gitops.Brancher
	Filer    tracker.Filer
}

// RunResult is the outcome of one run.
type RunResult struct {
	Quality   types.QualityReport
	Decisions []types.DecisionRecord // persisted set after reconciliation and validation
	Diagrams  analyzers.DiagramSet
	Threats   analyzers.ThreatModel
	Debt      analyzers.DebtReport

	FilesScanned  int
	EvidenceCount int
	New           int
	Duplicates    int
	Enrichments   int

	OutDir      string
	SummaryPath string
	Duration    time.Duration
}

// Analyze runs the full pipeline over the tree at root. The input tree is
// strictly read-only; all writes go to the output directory, the decision
// store, and the scan cache. The returned error is non-nil only for fatal
// input/branch failures or an internal error; a REJECT verdict is reported
// in RunResult, not as an error.
func Analyze(ctx context.Context, root string, opts Options) (RunResult, error) {
	started := time.Now()
	var res RunResult

	abs, err := filepath.Abs(root)
	if err != nil {
		return res, fmt.Errorf("%w: %v", types.ErrInput, err)
	}
	if opts.Out == "" {
		opts.Out = filepath.Join(abs, ".strata")
	}
	if opts.StorePath == "" {
		opts.StorePath = filepath.Join(opts.Out, "decision-store.yaml")
	}
	res.OutDir = opts.Out
	layout := render.Layout{Out: opts.Out}

	// Branch creation happens before any analysis cost is spent; failure
	// aborts the whole run.
	if opts.BranchName != "" {
		brancher := opts.Brancher
		if brancher == nil {
			brancher = gitops.GoGit{}
		}
		result, err := brancher.CreateBranch(abs, opts.BranchName)
		if err != nil {
			return res, fmt.Errorf("create branch %s: %w", opts.BranchName, err)
		}
		logging.L.Infow("analysis branch ready", "branch", opts.BranchName, "result", result)
	}

	// Stage 1: bounded tree scan.
	ign, _ := inventory.LoadIgnore(filepath.Join(abs, ".strataignore"))
	inv, err := inventory.Scan(ctx, inventory.Options{
		Root:          abs,
		IncludeGlobs:  opts.IncludeGlobs,
		ExcludeGlobs:  opts.ExcludeGlobs,
		MaxFiles:      opts.MaxFiles,
		MaxTotalBytes: opts.MaxTotalBytes,
		Ignore:        ign,
	})
	if err != nil {
		return res, err
	}
	res.FilesScanned = len(inv.Files)

	// Stage 2: technology detection.
	reg, err := signature.Load(opts.SignatureFiles)
	if err != nil {
		return res, fmt.Errorf("%w: %v", types.ErrInput, err)
	}
	var db cache.DB
	detOpts := detect.Options{MaxReadBytes: opts.MaxReadBytes}
	if !opts.NoCache {
		db = cache.Load(abs, reg.Fingerprint())
		detOpts.Cache = db
	}
	evidence := detect.Run(inv, reg, detOpts)
	res.EvidenceCount = len(evidence)
	if !opts.NoCache {
		if err := cache.Save(abs, db); err != nil {
			logging.L.Debugw("scan cache not saved", "err", err)
		}
	}

	// Stages 3-4: decision extraction and scoring.
	candidates := extract.Run(evidence, extract.Options{
		MinEvidence:      opts.MinEvidence,
		DisableNarrative: opts.DisableNarrative,
		Narrator:         opts.Narrator,
	})
	score.Run(candidates, evidence)

	// Stage 5: reconcile against the persisted store.
	store, err := reconcile.Load(opts.StorePath)
	if err != nil {
		return res, err
	}
	preCount := len(store.Decisions)
	outcome := reconcile.Run(store, candidates, opts.Similarity)
	res.New, res.Duplicates, res.Enrichments = outcome.New, outcome.Dups, outcome.Enrich

	// Stage 6: independent analyzers over the merged decision set.
	aout := analyzers.Run(analyzers.Input{
		Inv:          inv,
		Evidence:     evidence,
		Decisions:    outcome.Merged.Decisions,
		MaxReadBytes: opts.MaxReadBytes,
	}, analyzers.Options{
		SkipThreatModel: opts.SkipThreatModel,
		SkipTechDebt:    opts.SkipTechDebt,
	})

	// Stage 7: render artifacts. A serialization failure is fatal for that
	// artifact only and surfaces as a CRITICAL validator issue.
	var serIssues []types.QualityIssue
	serialize := func(artifact string, err error) {
		if err == nil {
			return
		}
		logging.L.Warnw("artifact serialization failed", "artifact", artifact, "err", err)
		serIssues = append(serIssues, types.QualityIssue{
			Checker:  "serialization",
			Artifact: artifact,
			Detail:   err.Error(),
			Critical: true,
			Penalty:  validate.PenaltyFailedSerialization,
		})
	}
	for _, d := range outcome.Merged.Decisions {
		if d.Status == types.StatusRemoved {
			continue
		}
		p, werr := layout.WriteDecision(d)
		serialize(p, werr)
	}
	p, werr := layout.WriteThreatModel(aout.Threats)
	serialize(p, werr)
	_, werr = layout.WriteDiagrams(aout.Diagrams)
	serialize(layout.DiagramPath("context"), werr)
	p, werr = layout.WriteDebtReport(aout.Debt)
	serialize(p, werr)

	// Stage 8: post-generation validation and the quality gate.
	vctx := &validate.Context{
		Layout:              layout,
		Inv:                 inv,
		Decisions:           outcome.Merged.Decisions,
		Diagrams:            aout.Diagrams,
		Threats:             aout.Threats,
		Debt:                aout.Debt,
		SerializationIssues: serIssues,
	}
	res.Quality = validate.Run(vctx)
	res.Diagrams = vctx.Diagrams
	res.Threats = aout.Threats
	res.Debt = aout.Debt

	// Persist the merged store: evidence-additive, atomic, and never
	// shrinking below its pre-run count except for validator removals.
	outcome.Merged.Decisions = acceptStatuses(vctx.Decisions)
	res.Decisions = outcome.Merged.Decisions
	if err := reconcile.Save(opts.StorePath, outcome.Merged); err != nil {
		return res, fmt.Errorf("persist decision store: %w", err)
	}
	logging.L.Debugw("decision store persisted",
		"path", opts.StorePath, "before", preCount, "after", len(outcome.Merged.Decisions))

	if _, err := layout.WriteQualityReport(res.Quality); err != nil {
		logging.L.Warnw("quality report write failed", "err", err)
	}
	res.SummaryPath, err = layout.WriteSummary(render.SummaryData{
		Root:         abs,
		FilesScanned: res.FilesScanned,
		EvidenceN:    res.EvidenceCount,
		Decisions:    res.Decisions,
		Threats:      res.Threats,
		Debt:         res.Debt,
		Quality:      res.Quality,
		DurationSecs: time.Since(started).Seconds(),
	})
	if err != nil {
		logging.L.Warnw("run summary write failed", "err", err)
	}

	fileTickets(opts, outcome.Candidates, res.Threats)

	res.Duration = time.Since(started)
	rec := audit.RunRecord{
		Timestamp:        time.Now().UTC(),
		RunID:            fmt.Sprintf("run-%d", started.UnixNano()),
		Root:             abs,
		FilesScanned:     res.FilesScanned,
		EvidenceCount:    res.EvidenceCount,
		Decisions:        len(res.Decisions),
		NewDecisions:     res.New,
		Duplicates:       res.Duplicates,
		Enrichments:      res.Enrichments,
		ThreatFindings:   len(res.Threats.Findings),
		DebtItems:        len(res.Debt.Items),
		Score:            res.Quality.Score,
		Recommendation:   res.Quality.Recommendation,
		StoreFingerprint: outcome.Merged.Fingerprint(),
		Duration:         res.Duration.String(),
	}
	if err := audit.New(layout.AuditPath()).Append(rec); err != nil {
		logging.L.Debugw("audit append failed", "err", err)
	}
	return res, nil
}

// acceptStatuses drops validator-removed records from the persisted set and
// flips surviving NEW records to ACCEPTED; classification statuses are run
// artifacts, not store state.
func acceptStatuses(decisions []types.DecisionRecord) []types.DecisionRecord {
	var out []types.DecisionRecord
	for _, d := range decisions {
		if d.Status == types.StatusRemoved {
			continue
		}
		if d.Status == types.StatusNew || d.Status == types.StatusEnrichment {
			d.Status = types.StatusAccepted
		}
		out = append(out, d)
	}
	return out
}

// fileTickets files tracker tickets for low-confidence decisions and
// escalated threats when the run enables it.
func fileTickets(opts Options, candidates []types.DecisionRecord, tm analyzers.ThreatModel) {
	if !opts.CreateTickets {
		return
	}
	filer := opts.Filer
	if filer == nil {
		filer = &tracker.LogFiler{}
	}
	for _, d := range candidates {
		if d.Status == types.StatusDuplicate {
			continue
		}
		if types.BandFor(d.Confidence) == types.BandLow {
			if _, err := filer.FileTicket(tracker.ForDecision(d)); err != nil {
				logging.L.Warnw("ticket filing failed", "decision", d.Key(), "err", err)
			}
		}
	}
	for _, f := range tm.Findings {
		if f.Escalate {
			if _, err := filer.FileTicket(tracker.ForThreat(f)); err != nil {
				logging.L.Warnw("ticket filing failed", "threat", f.ID, "err", err)
			}
		}
	}
}

// ExitCode maps a run outcome to the process exit code contract: 0 success,
// 1 input validation failure, 2 internal error, 3 quality gate rejected.
func ExitCode(res RunResult, err error) int {
	switch {
	case errors.Is(err, types.ErrInput):
		return 1
	case err != nil:
		return 2
	case res.Quality.Recommendation == types.RecReject:
		return 3
	default:
		return 0
	}
}
