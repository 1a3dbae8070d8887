package analyzers

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	semver "github.com/blang/semver/v4"

	"github.com/strata-dev/strata/internal/inventory"
	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// DebtReport is the debt detector's artifact. ComputedCount is the number of
// items the detector derived; the completeness checker compares it against
// the rendered count.
type DebtReport struct {
	Failed        bool             `yaml:"failed,omitempty"`
	FailureReason string           `yaml:"failure_reason,omitempty"`
	Skipped       bool             `yaml:"skipped,omitempty"`
	ComputedCount int              `yaml:"computed_count"`
	Items         []types.DebtItem `yaml:"items"`
}

// FailedDebtReport is the minimal flagged artifact for a failed run.
func FailedDebtReport(err error) DebtReport {
	return DebtReport{Failed: true, FailureReason: err.Error(), Items: []types.DebtItem{}}
}

var markerRe = regexp.MustCompile(`\b(TODO|FIXME|HACK|XXX)\b`)
var deprecatedRe = regexp.MustCompile(`(?i)@deprecated\b|\bDEPRECATED\b`)

// markerDensityThreshold is markers-per-file before a smell item is raised.
const markerDensityThreshold = 5

// oversizedBytes flags source files above this size as refactor candidates.
const oversizedBytes = 64 << 10

// versionFloors is the data table of minimum recommended versions for
// well-known dependencies. Anything parseable below its floor is flagged as
// aging. Extending the table is a data change.
var versionFloors = map[string]string{
	"django":  "4.0.0",
	"flask":   "2.0.0",
	"rails":   "7.0.0",
	"react":   "18.0.0",
	"express": "4.18.0",
	"jquery":  "3.6.0",
	"lodash":  "4.17.21",
	"spring-boot-starter-parent": "2.7.0",
}

// DetectDebt maps code-smell and dependency-age patterns to prioritized debt
// items with rough effort estimates.
func DetectDebt(in Input) (DebtReport, error) {
	maxRead := in.MaxReadBytes
	if maxRead <= 0 {
		maxRead = 512 << 10
	}

	var items []types.DebtItem
	seq := 0
	add := func(prio types.DebtPriority, category, location, detail string, hours float64) {
		seq++
		items = append(items, types.DebtItem{
			ID:          fmt.Sprintf("DEBT-%03d", seq),
			Priority:    prio,
			Category:    category,
			Location:    location,
			Detail:      detail,
			EffortHours: hours,
		})
	}

	for _, f := range in.Inv.Files {
		if !f.Kind.Production() {
			continue
		}
		if f.Kind == inventory.KindSource && f.Size > oversizedBytes {
			add(types.P2, "oversized-file", f.Path,
				fmt.Sprintf("source file is %d KiB; consider splitting", f.Size>>10), 8)
		}
		if f.Kind != inventory.KindSource && f.Kind != inventory.KindConfig && f.Kind != inventory.KindBuild {
			continue
		}
		data, err := os.ReadFile(filepath.Join(in.Inv.Root, f.Path))
		if err != nil {
			logging.L.Debugw("debt scan skipping file", "path", f.Path, "err", err)
			continue
		}
		if int64(len(data)) > maxRead {
			data = data[:maxRead]
		}
		if n := len(markerRe.FindAll(data, -1)); n >= markerDensityThreshold {
			add(types.P3, "marker-density", f.Path,
				fmt.Sprintf("%d TODO/FIXME/HACK markers in one file", n), 4)
		}
		if deprecatedRe.Match(data) && f.Kind == inventory.KindSource {
			add(types.P2, "deprecated-usage", f.Path, "references deprecated APIs or carries deprecation markers", 6)
		}
		if f.Kind == inventory.KindBuild {
			for _, it := range agingDependencies(f.Path, data) {
				add(it.prio, "dependency-age", f.Path, it.detail, it.hours)
			}
		}
	}

	// A detected language with no testing-framework evidence anywhere in
	// the tree is a structural gap, not a per-file smell.
	if missingTests(in.Evidence) {
		add(types.P1, "missing-tests", in.Inv.Root, "no test-framework evidence found for any detected language", 24)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].ID < items[j].ID
	})
	return DebtReport{ComputedCount: len(items), Items: items}, nil
}

func missingTests(evidence []types.Evidence) bool {
	haveLang := false
	for _, ev := range evidence {
		switch ev.Category {
		case types.CatTesting:
			return false
		case types.CatLanguage:
			haveLang = true
		}
	}
	return haveLang
}

type agingDep struct {
	prio   types.DebtPriority
	detail string
	hours  float64
}

var goModRequireRe = regexp.MustCompile(`^\s*([\w./-]+)\s+v(\d+\.\d+\.\d+)`)
var pkgJSONDepRe = regexp.MustCompile(`"([\w@./-]+)"\s*:\s*"[~^]?(\d+\.\d+\.\d+)"`)
var requirementsRe = regexp.MustCompile(`^([\w.-]+)\s*[=>]=\s*(\d+\.\d+(?:\.\d+)?)`)

// agingDependencies parses dependency manifests just far enough to compare
// pinned versions against the floor table.
func agingDependencies(path string, data []byte) []agingDep {
	var deps [][2]string // name, version
	base := strings.ToLower(filepath.Base(path))
	switch {
	case base == "go.mod":
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if m := goModRequireRe.FindStringSubmatch(sc.Text()); m != nil {
				deps = append(deps, [2]string{shortDepName(m[1]), m[2]})
			}
		}
	case base == "package.json":
		for _, m := range pkgJSONDepRe.FindAllStringSubmatch(string(data), -1) {
			deps = append(deps, [2]string{m[1], m[2]})
		}
	case base == "requirements.txt":
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if m := requirementsRe.FindStringSubmatch(strings.TrimSpace(sc.Text())); m != nil {
				deps = append(deps, [2]string{strings.ToLower(m[1]), m[2]})
			}
		}
	}

	var out []agingDep
	for _, d := range deps {
		name, raw := d[0], d[1]
		v, err := semver.ParseTolerant(raw)
		if err != nil {
			continue
		}
		if floorRaw, ok := versionFloors[name]; ok {
			floor, ferr := semver.Parse(floorRaw)
			if ferr == nil && v.LT(floor) {
				out = append(out, agingDep{
					prio:   types.P1,
					detail: fmt.Sprintf("%s %s is below the recommended floor %s", name, v, floor),
					hours:  16,
				})
				continue
			}
		}
		if v.Major == 0 {
			out = append(out, agingDep{
				prio:   types.P3,
				detail: fmt.Sprintf("%s is pinned to pre-1.0 version %s", name, v),
				hours:  4,
			})
		}
	}
	return out
}

func shortDepName(modulePath string) string {
	parts := strings.Split(modulePath, "/")
	return strings.ToLower(parts[len(parts)-1])
}
