package geo

// similarity.go implements edit-distance based string similarity used for
// city typo suggestions and auto-correction.
//
// Similarity is defined as 1 - (levenshtein(a, b) / max(len(a), len(b)))
// over normalized (lowercased, accent-stripped) strings, so it is always
// in [0, 1]: 1.0 for identical strings, 0.0 for completely different ones.

// Similarity returns the normalized edit-distance similarity of two strings.
// Both strings are normalized before comparison, so "León" and "leon"
// score 1.0. Two empty strings score 1.0; exactly one empty string scores 0.0.
// The function is pure, symmetric, and deterministic.
func Similarity(a, b string) float64 {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}

	return 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices using
// two rolling rows instead of a full matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Keep the shorter string as the row to minimize allocation.
	if len(b) < len(a) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min3(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}

func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
