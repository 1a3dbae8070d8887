package core

import (
	"context"

	"github.com/strata-dev/strata/internal/pipeline"
	"github.com/strata-dev/strata/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
// We can replace these with decoupled structs later without breaking callers.
type Options = pipeline.Options
type RunResult = pipeline.RunResult
type Evidence = types.Evidence
type DecisionRecord = types.DecisionRecord
type ThreatFinding = types.ThreatFinding
type DebtItem = types.DebtItem
type QualityReport = types.QualityReport

// Analyze is the stable entrypoint for other programs.
func Analyze(ctx context.Context, root string, opts Options) (RunResult, error) {
	return pipeline.Analyze(ctx, root, opts)
}

// ExitCode maps a run outcome to the documented process exit code.
// This is exposed for convenience to avoid importing internals directly.
func ExitCode(res RunResult, err error) int { return pipeline.ExitCode(res, err) }
