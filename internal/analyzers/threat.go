package analyzers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/tokens"
	"github.com/strata-dev/strata/internal/types"
)

// ThreatModel is the threat modeler's artifact.
type ThreatModel struct {
	Failed        bool                  `yaml:"failed,omitempty"`
	FailureReason string                `yaml:"failure_reason,omitempty"`
	Skipped       bool                  `yaml:"skipped,omitempty"`
	Findings      []types.ThreatFinding `yaml:"findings"`
}

// FailedThreatModel is the minimal flagged artifact for a failed run.
func FailedThreatModel(err error) ThreatModel {
	return ThreatModel{Failed: true, FailureReason: err.Error(), Findings: []types.ThreatFinding{}}
}

// escalateSeverity is the severity at or above which a finding always
// escalates, independent of category.
const escalateSeverity = 9.0

// threatPattern maps a content signature to a STRIDE category. The table is
// data; the scan loop below never special-cases an individual pattern beyond
// the credential shape check.
type threatPattern struct {
	id         string
	re         *regexp.Regexp
	stride     types.StrideCategory
	severity   float64
	title      string
	credential bool // candidate value in group 2 must pass the shape check
}

var threatPatterns = []threatPattern{
	{
		id:         "hardcoded-credential",
		re:         regexp.MustCompile(`(?i)(api[_-]?key|secret|passwd|password|token|private[_-]?key)\s*[:=]\s*["']([^"'\s]{8,})["']`),
		stride:     types.StrideInfoDisclosure,
		severity:   9.1,
		title:      "Hardcoded credential-like value",
		credential: true,
	},
	{
		id:       "private-key-block",
		re:       regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |PGP )?PRIVATE KEY-----`),
		stride:   types.StrideInfoDisclosure,
		severity: 9.8,
		title:    "Private key material committed to the tree",
	},
	{
		id:       "disabled-verification",
		re:       regexp.MustCompile(`InsecureSkipVerify\s*:\s*true|(?i)verify\s*=\s*false|rejectUnauthorized:\s*false|--no-verify|--insecure\b`),
		stride:   types.StrideTampering,
		severity: 7.4,
		title:    "Signature or TLS verification disabled",
	},
	{
		id:       "anonymous-access",
		re:       regexp.MustCompile(`(?i)allow[_-]?anonymous\s*[:=]\s*(true|1)|auth[_-]?disabled\s*[:=]\s*(true|1)|auth:\s*none`),
		stride:   types.StrideSpoofing,
		severity: 8.2,
		title:    "Anonymous access enabled",
	},
	{
		id:       "unencrypted-at-rest",
		re:       regexp.MustCompile(`(?i)encrypt(ion|ed)?\s*[:=]\s*(false|none|disabled|off)`),
		stride:   types.StrideInfoDisclosure,
		severity: 6.5,
		title:    "Data-at-rest encryption disabled",
	},
	{
		id:       "plaintext-transport",
		re:       regexp.MustCompile(`(?i)(endpoint|url|host|base_url)\s*[:=]\s*["']http://[^"'\s]+["']`),
		stride:   types.StrideInfoDisclosure,
		severity: 5.3,
		title:    "Plaintext transport endpoint configured",
	},
	{
		id:       "debug-enabled",
		re:       regexp.MustCompile(`(?i)debug\s*[:=]\s*(true|1)\b`),
		stride:   types.StrideRepudiation,
		severity: 4.0,
		title:    "Debug mode enabled in configuration",
	},
	{
		id:       "wildcard-cors",
		re:       regexp.MustCompile(`Access-Control-Allow-Origin["']?\s*[,:=]\s*["']\*`),
		stride:   types.StrideElevation,
		severity: 5.6,
		title:    "Wildcard CORS origin",
	},
}

// ModelThreats rescans production-classified inventory content for threat
// patterns and maps matches to STRIDE findings with CVSS-like severity.
func ModelThreats(in Input) (ThreatModel, error) {
	maxRead := in.MaxReadBytes
	if maxRead <= 0 {
		maxRead = 512 << 10
	}

	var findings []types.ThreatFinding
	seq := 0
	for _, f := range in.Inv.Files {
		if !f.Kind.Production() {
			continue
		}
		data, err := readThreatContent(filepath.Join(in.Inv.Root, f.Path), maxRead)
		if err != nil {
			logging.L.Debugw("threat scan skipping file", "path", f.Path, "err", err)
			continue
		}
		for _, p := range threatPatterns {
			m := p.re.FindSubmatchIndex(data)
			if m == nil {
				continue
			}
			if p.credential {
				value := string(data[m[4]:m[5]])
				if !tokens.LooksCredential(value) {
					continue
				}
			}
			seq++
			line := lineOf(data, m[0])
			findings = append(findings, types.ThreatFinding{
				ID:           fmt.Sprintf("THR-%03d", seq),
				Stride:       p.stride,
				Severity:     p.severity,
				Title:        p.title,
				Detail:       fmt.Sprintf("%s at %s:%d", p.id, f.Path, line),
				EvidenceRefs: []string{fmt.Sprintf("%s#%d", f.Path, line)},
				Escalate:     shouldEscalate(p),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		return findings[i].ID < findings[j].ID
	})
	return ThreatModel{Findings: findings}, nil
}

// shouldEscalate: severity at or above the hard threshold always escalates,
// as does any information-disclosure finding backed by credential evidence.
func shouldEscalate(p threatPattern) bool {
	if p.severity >= escalateSeverity {
		return true
	}
	return p.stride == types.StrideInfoDisclosure && p.credential
}

func readThreatContent(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	n := st.Size()
	if n > max {
		n = max
	}
	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && read == 0 {
		return nil, err
	}
	return buf[:read], nil
}

func lineOf(data []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(data); i++ {
		if data[i] == '\n' {
			line++
		}
	}
	return line
}
