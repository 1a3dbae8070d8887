package inventory

import (
	"bytes"
	"path"
	"strings"
)

var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true,
	".tsx": true, ".java": true, ".rb": true, ".rs": true, ".c": true,
	".cc": true, ".cpp": true, ".h": true, ".hpp": true, ".cs": true,
	".php": true, ".kt": true, ".scala": true, ".swift": true, ".ex": true,
	".exs": true, ".erl": true, ".sh": true, ".sql": true,
}

var configExts = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".toml": true, ".ini": true,
	".conf": true, ".env": true, ".properties": true, ".tf": true,
	".tfvars": true, ".xml": true,
}

var docExts = map[string]bool{
	".md": true, ".rst": true, ".txt": true, ".adoc": true,
}

var buildNames = map[string]bool{
	"makefile": true, "dockerfile": true, "go.mod": true, "go.sum": true,
	"package.json": true, "package-lock.json": true, "yarn.lock": true,
	"pom.xml": true, "build.gradle": true, "build.gradle.kts": true,
	"cargo.toml": true, "cargo.lock": true, "gemfile": true,
	"gemfile.lock": true, "requirements.txt": true, "pyproject.toml": true,
	"setup.py": true, "cmakelists.txt": true, "build.sbt": true,
}

var fixtureDirs = []string{"testdata", "fixtures", "mocks", "__mocks__", "__fixtures__", "stubs"}
var vendoredDirs = []string{"vendor", "node_modules", "third_party", "thirdparty", "bower_components"}
var testDirs = []string{"test", "tests", "spec", "__tests__", "e2e"}

// Classify assigns a Kind from the relative path and a small content sniff.
// The sniff is only consulted for the generated-code marker; everything else
// is path-driven so classification stays cheap.
func Classify(rel string, sniff []byte) Kind {
	rel = strings.ToLower(strings.ReplaceAll(rel, "\\", "/"))
	base := path.Base(rel)
	ext := path.Ext(base)

	if inAnyDir(rel, vendoredDirs) {
		return KindVendored
	}
	if looksGenerated(base, sniff) {
		return KindGenerated
	}
	if inAnyDir(rel, fixtureDirs) {
		return KindFixture
	}
	if isTestFile(rel, base) {
		return KindTest
	}
	if buildNames[base] || strings.HasPrefix(base, "dockerfile.") || ext == ".mk" {
		return KindBuild
	}
	if configExts[ext] || strings.HasPrefix(base, ".env") {
		return KindConfig
	}
	if docExts[ext] {
		return KindDoc
	}
	if sourceExts[ext] {
		return KindSource
	}
	return KindOther
}

func inAnyDir(rel string, dirs []string) bool {
	for _, d := range dirs {
		if strings.HasPrefix(rel, d+"/") || strings.Contains(rel, "/"+d+"/") {
			return true
		}
	}
	return false
}

func isTestFile(rel, base string) bool {
	if strings.HasSuffix(base, "_test.go") || strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") || strings.HasPrefix(base, "test_") {
		return true
	}
	return inAnyDir(rel, testDirs)
}

var generatedMarker = []byte("Code generated by")

func looksGenerated(base string, sniff []byte) bool {
	if strings.HasSuffix(base, ".pb.go") || strings.HasSuffix(base, "_gen.go") ||
		strings.HasSuffix(base, ".gen.go") || strings.HasSuffix(base, ".min.js") ||
		strings.HasSuffix(base, ".min.css") {
		return true
	}
	return bytes.Contains(sniff, generatedMarker)
}
