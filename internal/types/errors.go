package types

import "errors"

// Error kinds for the pipeline failure taxonomy. Stages wrap these with
// fmt.Errorf("...: %w", ...) so callers can route on errors.Is while keeping
// the stage-local detail.
var (
	// ErrInput is fatal: the input path is unusable or a scan ceiling was
	// exceeded. Only the tree scanner returns it.
	ErrInput = errors.New("input error")

	// ErrEvidenceRead marks a single-file read failure. Recovered by
	// skipping the file.
	ErrEvidenceRead = errors.New("evidence read error")

	// ErrSynthesis marks narrative-mode synthesis failure. Recovered by
	// falling back to template mode.
	ErrSynthesis = errors.New("synthesis failure")

	// ErrAnalyzer marks a failed diagram/threat/debt analyzer. Recovered by
	// emitting a minimal flagged-failed artifact.
	ErrAnalyzer = errors.New("analyzer failure")

	// ErrSerialization marks an artifact the renderer could not serialize.
	// Fatal for that artifact only; surfaces as a CRITICAL validator issue.
	ErrSerialization = errors.New("serialization error")
)
