// Package tracker is the ticket-tracker collaborator boundary. Tickets are
// filed for low-confidence decisions and escalated threat findings when the
// run enables it.
package tracker

import (
	"fmt"
	"sync/atomic"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// Ticket is the filing request handed to the tracker.
type Ticket struct {
	Title string
	Body  string
	Kind  string // "decision" | "threat"
}

// Filer files tickets with an external tracker.
type Filer interface {
	FileTicket(t Ticket) (ticketID string, err error)
}

// LogFiler is the default Filer: it records the would-be ticket in the run
// log and hands back a synthetic ID. Wiring a real tracker replaces this at
// pipeline construction.
type LogFiler struct {
	seq atomic.Int64
}

// FileTicket logs the ticket and returns a run-local ID.
func (l *LogFiler) FileTicket(t Ticket) (string, error) {
	id := fmt.Sprintf("LOCAL-%d", l.seq.Add(1))
	logging.L.Infow("ticket filed", "id", id, "kind", t.Kind, "title", t.Title)
	return id, nil
}

// ForDecision builds the ticket for a low-confidence decision.
func ForDecision(d types.DecisionRecord) Ticket {
	return Ticket{
		Kind:  "decision",
		Title: fmt.Sprintf("Review low-confidence decision %s", d.Key()),
		Body: fmt.Sprintf("Confidence %.2f (%s). %s",
			d.Confidence, types.BandFor(d.Confidence), d.Rationale),
	}
}

// ForThreat builds the ticket for an escalated threat finding.
func ForThreat(f types.ThreatFinding) Ticket {
	return Ticket{
		Kind:  "threat",
		Title: fmt.Sprintf("Escalated threat %s: %s", f.ID, f.Title),
		Body:  fmt.Sprintf("STRIDE %s, severity %.1f. %s", f.Stride, f.Severity, f.Detail),
	}
}
