package types

import "fmt"

// Category is a decision concern: database, auth, api_style, caching, etc.
// Categories are open-ended; the signature registry defines the working set.
type Category string

const (
	CatLanguage  Category = "language"
	CatFramework Category = "framework"
	CatDatabase  Category = "database"
	CatORM       Category = "orm"
	CatAuth      Category = "auth"
	CatAPIStyle  Category = "api_style"
	CatCaching   Category = "caching"
	CatMessaging Category = "messaging"
	CatTesting   Category = "testing"
	CatBuildTool Category = "build_tool"
	CatIaC       Category = "iac"
	CatCI        Category = "ci"
)

// Evidence is a single observed fact supporting a technology's presence:
// one file that matched a signature. Immutable once produced; many Evidence
// records feed one DecisionRecord.
type Evidence struct {
	TechnologyID string   `json:"technology_id" yaml:"technology_id"`
	Category     Category `json:"category" yaml:"category"`
	FilePath     string   `json:"file_path" yaml:"file_path"`
	Line         int      `json:"line,omitempty" yaml:"line,omitempty"`
	// Strength is the match strength in [0,1]. Content-pattern matches score
	// higher than path-only matches.
	Strength     float64 `json:"strength" yaml:"strength"`
	ContentMatch bool    `json:"content_match" yaml:"content_match"`
}

// Ref returns the stable reference string used in evidence_refs lists.
func (e Evidence) Ref() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s#%d", e.FilePath, e.Line)
	}
	return e.FilePath
}

// DecisionStatus tracks a DecisionRecord through extraction, reconciliation,
// and validation.
type DecisionStatus string

const (
	StatusNew        DecisionStatus = "NEW"
	StatusDuplicate  DecisionStatus = "DUPLICATE"
	StatusEnrichment DecisionStatus = "ENRICHMENT"
	StatusAccepted   DecisionStatus = "ACCEPTED"
	StatusRemoved    DecisionStatus = "REMOVED"
)

// ConfidenceBand buckets a confidence score for review routing.
type ConfidenceBand string

const (
	BandHigh ConfidenceBand = "high"   // >= 0.8: auto-accept
	BandMed  ConfidenceBand = "medium" // [0.5, 0.8): flagged for validation
	BandLow  ConfidenceBand = "low"    // < 0.5: mandatory manual review
)

// BandFor returns the review band for a confidence value.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= 0.8:
		return BandHigh
	case confidence >= 0.5:
		return BandMed
	default:
		return BandLow
	}
}

// DecisionRecord is an inferred architectural choice with supporting
// evidence. ID is stable and monotonic within a run; cross-run identity is
// (Category, TechnologyID), never ID alone.
type DecisionRecord struct {
	ID           string         `json:"id" yaml:"id"`
	Category     Category       `json:"category" yaml:"category"`
	TechnologyID string         `json:"technology_id" yaml:"technology_id"`
	Rationale    string         `json:"rationale" yaml:"rationale"`
	Confidence   float64        `json:"confidence" yaml:"confidence"`
	EvidenceRefs []string       `json:"evidence_refs" yaml:"evidence_refs"`
	Status       DecisionStatus `json:"status" yaml:"status"`
	// Narrated is true when narrative-mode synthesis elaborated the
	// rationale skeleton for this record.
	Narrated bool `json:"narrated,omitempty" yaml:"narrated,omitempty"`
}

// Key returns the cross-run identity of the decision.
func (d DecisionRecord) Key() string {
	return string(d.Category) + "/" + d.TechnologyID
}

// StrideCategory classifies a threat finding.
type StrideCategory string

const (
	StrideSpoofing       StrideCategory = "spoofing"
	StrideTampering      StrideCategory = "tampering"
	StrideRepudiation    StrideCategory = "repudiation"
	StrideInfoDisclosure StrideCategory = "information_disclosure"
	StrideDoS            StrideCategory = "denial_of_service"
	StrideElevation      StrideCategory = "elevation_of_privilege"
)

// ThreatFinding is a security observation mapped to STRIDE with a CVSS-like
// severity on a 0.0-10.0 scale.
type ThreatFinding struct {
	ID           string         `json:"id" yaml:"id"`
	Stride       StrideCategory `json:"stride" yaml:"stride"`
	Severity     float64        `json:"severity" yaml:"severity"`
	Title        string         `json:"title" yaml:"title"`
	Detail       string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	EvidenceRefs []string       `json:"evidence_refs" yaml:"evidence_refs"`
	Escalate     bool           `json:"escalate" yaml:"escalate"`
}

// DebtPriority is a technical-debt priority tier.
type DebtPriority string

const (
	P0 DebtPriority = "P0"
	P1 DebtPriority = "P1"
	P2 DebtPriority = "P2"
	P3 DebtPriority = "P3"
)

// DebtItem is one technical-debt observation with a rough effort estimate.
type DebtItem struct {
	ID          string       `json:"id" yaml:"id"`
	Priority    DebtPriority `json:"priority" yaml:"priority"`
	Category    string       `json:"category" yaml:"category"`
	Location    string       `json:"location" yaml:"location"`
	Detail      string       `json:"detail,omitempty" yaml:"detail,omitempty"`
	EffortHours float64      `json:"effort_hours" yaml:"effort_hours"`
}

// Recommendation is the quality-gate verdict for a run.
type Recommendation string

const (
	RecAccept Recommendation = "ACCEPT"
	RecReview Recommendation = "REVIEW"
	RecReject Recommendation = "REJECT"
)

// QualityIssue is a defect found by one post-generation checker.
type QualityIssue struct {
	Checker  string  `json:"checker" yaml:"checker"`
	Artifact string  `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Detail   string  `json:"detail" yaml:"detail"`
	Critical bool    `json:"critical,omitempty" yaml:"critical,omitempty"`
	Penalty  float64 `json:"penalty" yaml:"penalty"`
}

// Correction records an automatic fix the validator applied.
type Correction struct {
	Checker  string `json:"checker" yaml:"checker"`
	Action   string `json:"action" yaml:"action"`
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// QualityReport is produced once per run by the post-generation validator
// and is immutable afterwards.
type QualityReport struct {
	Score          float64        `json:"score" yaml:"score"`
	Issues         []QualityIssue `json:"issues" yaml:"issues"`
	Corrections    []Correction   `json:"corrections_applied" yaml:"corrections_applied"`
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
}

// HasCritical reports whether any issue is CRITICAL.
func (q QualityReport) HasCritical() bool {
	for _, is := range q.Issues {
		if is.Critical {
			return true
		}
	}
	return false
}
