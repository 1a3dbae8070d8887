// Package analyzers holds the three independent evidence consumers: diagram
// synthesis, threat modeling, and technical-debt detection. Each runs to
// completion or failure in isolation; one failing never blocks the others.
package analyzers

import (
	"fmt"
	"sync"

	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// State is the per-analyzer lifecycle: RUNNING, then SUCCEEDED or FAILED.
type State string

const (
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// Input is the shared read-only input for all analyzers.
type Input struct {
	Inv       inventory.Inventory
	Evidence  []types.Evidence
	Decisions []types.DecisionRecord
	// MaxReadBytes caps per-file content reads for analyzers that rescan
	// file contents.
	MaxReadBytes int64
}

// Options selects which analyzers run.
type Options struct {
	SkipThreatModel bool
	SkipTechDebt    bool
}

// Output carries each analyzer's state and artifact. A FAILED analyzer still
// has a structurally valid (minimal, flagged) artifact so the renderer never
// silently omits a file.
type Output struct {
	DiagramState State
	DiagramErr   error
	Diagrams     DiagramSet

	ThreatState State
	ThreatErr   error
	Threats     ThreatModel

	DebtState State
	DebtErr   error
	Debt      DebtReport
}

// Run executes the enabled analyzers in parallel. They share no mutable
// state: each writes only to its own Output slot and the runner waits for
// all of them.
func Run(in Input, opts Options) Output {
	out := Output{
		DiagramState: StateRunning,
		ThreatState:  StateRunning,
		DebtState:    StateRunning,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		out.Diagrams, out.DiagramErr = guard("diagram", func() (DiagramSet, error) {
			return SynthesizeDiagrams(in)
		})
		out.DiagramState = stateFor(out.DiagramErr)
		if out.DiagramErr != nil {
			out.Diagrams = FailedDiagramSet(out.DiagramErr)
		}
	}()

	if opts.SkipThreatModel {
		out.ThreatState = StateSucceeded
		out.Threats = ThreatModel{Skipped: true}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Threats, out.ThreatErr = guard("threat", func() (ThreatModel, error) {
				return ModelThreats(in)
			})
			out.ThreatState = stateFor(out.ThreatErr)
			if out.ThreatErr != nil {
				out.Threats = FailedThreatModel(out.ThreatErr)
			}
		}()
	}

	if opts.SkipTechDebt {
		out.DebtState = StateSucceeded
		out.Debt = DebtReport{Skipped: true}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Debt, out.DebtErr = guard("debt", func() (DebtReport, error) {
				return DetectDebt(in)
			})
			out.DebtState = stateFor(out.DebtErr)
			if out.DebtErr != nil {
				out.Debt = FailedDebtReport(out.DebtErr)
			}
		}()
	}

	wg.Wait()
	return out
}

func stateFor(err error) State {
	if err != nil {
		return StateFailed
	}
	return StateSucceeded
}

// guard runs one analyzer, converting a panic into an ErrAnalyzer failure so
// a bug in one analyzer cannot take down the run.
func guard[T any](name string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", types.ErrAnalyzer, name, r)
			logging.L.Warnw("analyzer failed", "analyzer", name, "err", err)
		}
	}()
	result, err = fn()
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", types.ErrAnalyzer, name, err)
		logging.L.Warnw("analyzer failed", "analyzer", name, "err", err)
	}
	return result, err
}
