// Package audit appends one JSONL record per analysis run so verdict history
// stays inspectable without parsing the artifact tree.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/strata-dev/strata/internal/types"
)

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	Timestamp        time.Time            `json:"timestamp"`
	RunID            string               `json:"run_id"`
	Root             string               `json:"root"`
	FilesScanned     int                  `json:"files_scanned"`
	EvidenceCount    int                  `json:"evidence_count"`
	Decisions        int                  `json:"decisions"`
	NewDecisions     int                  `json:"new_decisions"`
	Duplicates       int                  `json:"duplicates"`
	Enrichments      int                  `json:"enrichments"`
	ThreatFindings   int                  `json:"threat_findings"`
	DebtItems        int                  `json:"debt_items"`
	Score            float64              `json:"score"`
	Recommendation   types.Recommendation `json:"recommendation"`
	StoreFingerprint string               `json:"store_fingerprint,omitempty"`
	Duration         string               `json:"duration"`
}

// Log appends run records to a JSONL file.
type Log struct {
	path string
}

// New returns a log writing to the given path.
func New(path string) *Log { return &Log{path: path} }

// Append writes one record. Failure to audit never fails the run; the error
// is returned for logging only.
func (l *Log) Append(rec RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(b, '\n'))
	return err
}

// History reads back all records, skipping malformed lines.
func (l *Log) History() ([]RunRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec RunRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	return records, nil
}
