package strata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/strata-dev/strata/internal/config"
	"github.com/strata-dev/strata/internal/pipeline"
	"github.com/strata-dev/strata/internal/render"
	"github.com/strata-dev/strata/internal/tui"
	"github.com/strata-dev/strata/internal/types"
)

var (
	flagPath          string
	flagOut           string
	flagStore         string
	flagInclude       string
	flagExclude       string
	flagMaxFiles      int
	flagMaxTotalBytes int64
	flagMaxReadBytes  int64
	flagMinEvidence   int
	flagSimilarity    float64
	flagSkipThreat    bool
	flagSkipDebt      bool
	flagNoNarrative   bool
	flagTickets       bool
	flagBranch        string
	flagNoCache       bool
	flagReview        bool
	flagSignatures    []string
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a repository tree and generate decision artifacts",
		RunE:  runAnalyze,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to analyze")
	cmd.Flags().StringVar(&flagOut, "out", "", "artifact output directory (default <path>/.strata)")
	cmd.Flags().StringVar(&flagStore, "store", "", "decision store path (default <out>/decision-store.yaml)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().IntVar(&flagMaxFiles, "max-files", 0, "abort when the tree exceeds this many files")
	cmd.Flags().Int64Var(&flagMaxTotalBytes, "max-total-bytes", 0, "abort when the tree exceeds this many bytes")
	cmd.Flags().Int64Var(&flagMaxReadBytes, "max-read-bytes", 0, "per-file content read cap")
	cmd.Flags().IntVar(&flagMinEvidence, "min-evidence", 0, "minimum evidence count before a decision is derived")
	cmd.Flags().Float64Var(&flagSimilarity, "similarity", 0, "duplicate-detection rationale similarity threshold (0-1)")
	cmd.Flags().BoolVar(&flagSkipThreat, "skip-threat-model", false, "skip the threat-model analyzer")
	cmd.Flags().BoolVar(&flagSkipDebt, "skip-tech-debt", false, "skip the tech-debt analyzer")
	cmd.Flags().BoolVar(&flagNoNarrative, "no-narrative", false, "deterministic template rationales only")
	cmd.Flags().BoolVar(&flagTickets, "tickets", false, "file tracker tickets for low-confidence decisions and escalated threats")
	cmd.Flags().StringVar(&flagBranch, "branch", "", "create this analysis branch before running")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the per-file detection cache")
	cmd.Flags().BoolVar(&flagReview, "review", false, "interactive review prompt when the gate resolves to REVIEW")
	cmd.Flags().StringSliceVar(&flagSignatures, "signatures", nil, "extra signature registry files (YAML)")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	abs, err := filepath.Abs(flagPath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInput, err)
	}
	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	}

	sigFiles := flagSignatures
	if len(sigFiles) == 0 {
		if len(lcfg.SignatureFiles) > 0 {
			sigFiles = lcfg.SignatureFiles
		} else {
			sigFiles = gcfg.SignatureFiles
		}
	}

	opts := pipeline.Options{
		Out:              config.PickString(flagOut, lcfg.Out, gcfg.Out),
		StorePath:        config.PickString(flagStore, lcfg.Store, gcfg.Store),
		IncludeGlobs:     config.PickString(flagInclude, lcfg.Include, gcfg.Include),
		ExcludeGlobs:     config.PickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		MaxFiles:         config.PickInt(flagMaxFiles, lcfg.MaxFiles, gcfg.MaxFiles),
		MaxTotalBytes:    config.PickInt64(flagMaxTotalBytes, lcfg.MaxTotalBytes, gcfg.MaxTotalBytes),
		MaxReadBytes:     config.PickInt64(flagMaxReadBytes, lcfg.MaxReadBytes, gcfg.MaxReadBytes),
		MinEvidence:      config.PickInt(flagMinEvidence, lcfg.MinEvidence, gcfg.MinEvidence),
		Similarity:       config.PickFloat(flagSimilarity, lcfg.Similarity, gcfg.Similarity),
		SkipThreatModel:  flagSkipThreat,
		SkipTechDebt:     flagSkipDebt,
		DisableNarrative: config.PickBool(flagNoNarrative, lcfg.NoNarrative, gcfg.NoNarrative),
		CreateTickets:    config.PickBool(flagTickets, lcfg.Tickets, gcfg.Tickets),
		BranchName:       flagBranch,
		NoCache:          config.PickBool(flagNoCache, lcfg.NoCache, gcfg.NoCache),
		SignatureFiles:   sigFiles,
	}

	res, err := pipeline.Analyze(cmd.Context(), abs, opts)
	if err != nil {
		return err
	}

	accepted := false
	if res.Quality.Recommendation == types.RecReview && flagReview && !flagJSON {
		accepted, err = tui.Review(tui.ReviewData{
			Root:      abs,
			Quality:   res.Quality,
			Decisions: res.Decisions,
		})
		if err != nil {
			return err
		}
	}

	if flagJSON {
		if err := json.NewEncoder(os.Stdout).Encode(analyzeOutput(res)); err != nil {
			return err
		}
		if res.Quality.Recommendation == types.RecReject {
			return errRejected
		}
		return nil
	}

	fmt.Printf("Analyzed %d files, %d evidence records\n", res.FilesScanned, res.EvidenceCount)
	fmt.Printf("Decisions: %d new, %d duplicates, %d enrichments\n", res.New, res.Duplicates, res.Enrichments)
	render.WriteDecisionTable(os.Stdout, res.Decisions)
	fmt.Printf("\nQuality gate: %s (score %.2f)\n", renderVerdict(res.Quality.Recommendation), res.Quality.Score)
	for _, is := range res.Quality.Issues {
		crit := ""
		if is.Critical {
			crit = " CRITICAL"
		}
		fmt.Printf("  - %s%s: %s\n", is.Checker, crit, is.Detail)
	}
	fmt.Printf("Artifacts written to %s\n", res.OutDir)

	switch {
	case res.Quality.Recommendation == types.RecReject:
		return errRejected
	case res.Quality.Recommendation == types.RecReview && flagReview && !accepted:
		return errRejected
	}
	return nil
}

var (
	acceptVerdictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	reviewVerdictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	rejectVerdictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// renderVerdict colors the gate verdict for terminal output; --no-color
// returns it plain.
func renderVerdict(rec types.Recommendation) string {
	if flagNoColor {
		return string(rec)
	}
	switch rec {
	case types.RecAccept:
		return acceptVerdictStyle.Render(string(rec))
	case types.RecReview:
		return reviewVerdictStyle.Render(string(rec))
	case types.RecReject:
		return rejectVerdictStyle.Render(string(rec))
	default:
		return string(rec)
	}
}

// analyzeOutput is the --json envelope; a stable machine surface for CI.
type jsonResult struct {
	FilesScanned   int                    `json:"files_scanned"`
	EvidenceCount  int                    `json:"evidence_count"`
	New            int                    `json:"new_decisions"`
	Duplicates     int                    `json:"duplicates"`
	Enrichments    int                    `json:"enrichments"`
	Decisions      []types.DecisionRecord `json:"decisions"`
	Quality        types.QualityReport    `json:"quality"`
	OutDir         string                 `json:"out_dir"`
	SummaryPath    string                 `json:"summary_path,omitempty"`
	DurationMillis int64                  `json:"duration_ms"`
}

func analyzeOutput(res pipeline.RunResult) jsonResult {
	return jsonResult{
		FilesScanned:   res.FilesScanned,
		EvidenceCount:  res.EvidenceCount,
		New:            res.New,
		Duplicates:     res.Duplicates,
		Enrichments:    res.Enrichments,
		Decisions:      res.Decisions,
		Quality:        res.Quality,
		OutDir:         res.OutDir,
		SummaryPath:    res.SummaryPath,
		DurationMillis: res.Duration.Milliseconds(),
	}
}
