package inventory

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/strata-dev/strata/internal/logging"
	"github.com/strata-dev/strata/internal/types"
)

// Options bounds and filters a tree scan.
type Options struct {
	Root          string
	IncludeGlobs  string // comma-separated, optional positive filter
	ExcludeGlobs  string // comma-separated, subtracted last
	MaxFiles      int    // hard ceiling on inventory size
	MaxTotalBytes int64  // hard ceiling on summed file sizes
	Ignore        Matcher
}

const (
	DefaultMaxFiles      = 20000
	DefaultMaxTotalBytes = 256 << 20
	sniffBytes           = 2048
)

var defaultDirExcludes = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".idea": true, ".vscode": true,
	".strata": true,
	"node_modules": true, "vendor": true, "third_party": true,
	"bower_components": true,
	"dist": true, "target": true, "out": true, ".next": true,
	".terraform": true, "__pycache__": true, ".tox": true, ".venv": true,
	"venv": true, "coverage": true,
}

// Scan walks the tree rooted at opts.Root and returns a bounded, classified
// inventory. The analyzed tree is never opened for writing. Exceeding a
// ceiling is a reported input error, not a silent truncation.
func Scan(ctx context.Context, opts Options) (Inventory, error) {
	inv := Inventory{Root: opts.Root}

	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.MaxTotalBytes <= 0 {
		opts.MaxTotalBytes = DefaultMaxTotalBytes
	}

	st, err := os.Stat(opts.Root)
	if err != nil {
		return inv, fmt.Errorf("%w: cannot access %s: %v", types.ErrInput, opts.Root, err)
	}
	if !st.IsDir() {
		return inv, fmt.Errorf("%w: %s is not a directory", types.ErrInput, opts.Root)
	}

	var ceiling error
	err = filepath.WalkDir(opts.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			if defaultDirExcludes[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ".strata-cache.json" {
			return nil
		}
		rel, _ := filepath.Rel(opts.Root, p)
		rel = filepath.ToSlash(rel)
		if !allowedByGlobs(rel, opts.IncludeGlobs, opts.ExcludeGlobs) {
			return nil
		}
		if opts.Ignore.Match(rel) {
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			inv.Skipped++
			return nil
		}
		sniff, serr := readSniff(p)
		if serr != nil {
			logging.L.Debugw("skipping unreadable file", "path", rel, "err", serr)
			inv.Skipped++
			return nil
		}
		if looksBinary(sniff) || looksNonTextMIME(rel, sniff) {
			inv.Skipped++
			return nil
		}
		inv.Files = append(inv.Files, File{Path: rel, Size: info.Size(), Kind: Classify(rel, sniff)})
		inv.TotalBytes += info.Size()
		if len(inv.Files) > opts.MaxFiles {
			ceiling = fmt.Errorf("%w: file ceiling exceeded (%d files, max %d)", types.ErrInput, len(inv.Files), opts.MaxFiles)
			return filepath.SkipAll
		}
		if inv.TotalBytes > opts.MaxTotalBytes {
			ceiling = fmt.Errorf("%w: byte ceiling exceeded (%d bytes, max %d)", types.ErrInput, inv.TotalBytes, opts.MaxTotalBytes)
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return inv, err
	}
	if ceiling != nil {
		return inv, ceiling
	}
	return inv, nil
}

func readSniff(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, sniffBytes)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func looksBinary(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return true
		}
	}
	return false
}

// looksNonTextMIME uses the file extension and a tiny content sniff to skip
// clearly non-text content in addition to NUL-byte detection. Known source,
// config, build and doc names are never skipped: the system mime table is
// untrustworthy for them (.mod resolves to audio/x-mod on common installs,
// which would silently drop every go.mod).
func looksNonTextMIME(path string, b []byte) bool {
	base := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(base))
	if buildNames[base] || sourceExts[ext] || configExts[ext] || docExts[ext] {
		return false
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	if len(b) >= 2 && b[0] == 'P' && b[1] == 'K' {
		return true
	}
	return false
}
