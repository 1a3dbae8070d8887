package extract

import "github.com/strata-dev/strata/internal/types"

// Narrator produces a single elaboration sentence that is appended to the
// deterministic rationale skeleton. Implementations must not rephrase the
// skeleton itself; an external model-backed narrator plugs in here.
type Narrator interface {
	Elaborate(category types.Category, tech string, evidence []types.Evidence) (string, error)
}

// OfflineNarrator is the default narrator. It derives one deterministic
// sentence from the evidence shape, so runs stay reproducible with no
// external model available.
type OfflineNarrator struct{}

// Elaborate summarizes evidence depth and spread in one sentence.
func (OfflineNarrator) Elaborate(category types.Category, tech string, evidence []types.Evidence) (string, error) {
	content := 0
	for _, ev := range evidence {
		if ev.ContentMatch {
			content++
		}
	}
	switch {
	case content == len(evidence) && content > 1:
		return "Every reference is a content-level match, which points to active use rather than residual configuration.", nil
	case content > 0:
		return "Content-level matches alongside the file-layout evidence support treating this as a deliberate adoption.", nil
	default:
		return "The evidence is layout-based only, so the inference rests on conventional file placement for this concern.", nil
	}
}
