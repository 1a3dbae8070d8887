// Package tokens provides shape checks for credential-like strings. The
// threat modeler uses them to separate genuine hardcoded secrets from
// placeholder values before raising an information-disclosure finding.
package tokens

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strings"
)

// LengthBetween returns true if len(s) is within [min,max].
func LengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// IsBase64Std reports whether s is valid standard base64 (padding optional).
func IsBase64Std(s string) bool {
	if s == "" {
		return false
	}
	if _, err := base64.StdEncoding.DecodeString(s); err == nil {
		return true
	}
	_, err := base64.RawStdEncoding.DecodeString(s)
	return err == nil
}

// IsHex returns true if s is valid even-length hex.
func IsHex(s string) bool {
	if s == "" || len(s)%2 == 1 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Entropy returns the Shannon entropy of s in bits per byte. Real secrets
// tend to sit above ~3.5; words and placeholders fall well below.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	h := 0.0
	n := float64(len(s))
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

var placeholderFragments = []string{
	"example", "changeme", "change-me", "placeholder", "your_", "your-",
	"dummy", "sample", "xxxx", "<", "${", "{{", "todo", "fixme", "secret_here",
}

// LooksPlaceholder reports whether a candidate secret value is an obvious
// stand-in rather than a real credential.
func LooksPlaceholder(s string) bool {
	ls := strings.ToLower(s)
	for _, frag := range placeholderFragments {
		if strings.Contains(ls, frag) {
			return true
		}
	}
	return false
}

// LooksCredential applies the combined shape heuristic: plausible length,
// not a placeholder, and either high entropy or a recognizable encoding.
func LooksCredential(s string) bool {
	if !LengthBetween(s, 8, 512) || LooksPlaceholder(s) {
		return false
	}
	return Entropy(s) >= 3.5 || IsBase64Std(s) || IsHex(s)
}
