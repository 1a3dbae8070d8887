package inventory

import (
	"bufio"
	"os"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// Matcher holds glob patterns from a .strataignore file. The zero value
// matches nothing.
type Matcher struct {
	patterns []string
}

// LoadIgnore reads ignore patterns (one glob per line, # comments) from the
// given path. A missing file yields an empty matcher and no error.
func LoadIgnore(path string) (Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return Matcher{}, nil
	}
	defer f.Close()

	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m, sc.Err()
}

// Match reports whether rel matches any ignore pattern.
func (m Matcher) Match(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			// bare patterns match any path segment
			if ok, _ := doublestar.Match("**/"+p, rel); ok {
				return true
			}
		}
	}
	return false
}
