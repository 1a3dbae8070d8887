package reconcile

import "strings"

// Similarity returns the token-set Jaccard similarity of two rationale
// texts in [0,1]. Tokenization is lowercase alphanumeric runs, so
// punctuation and markup characters never affect the comparison.
func Similarity(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func tokens(s string) map[string]bool {
	out := map[string]bool{}
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			out[sb.String()] = true
			sb.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}
