package metric

import "slices"

// Levenshtein returns the edit distance between p and q counted in runes:
// the minimum number of single-rune insertions, deletions and substitutions
// that turn one into the other.
func Levenshtein(p, q string) int {
	if p == q {
		return 0
	}
	return LevenshteinSeq([]rune(p), []rune(q))
}

// LevenshteinSeq is Levenshtein over arbitrary sequences.
func LevenshteinSeq[E comparable](p, q []E) int {
	if len(p) == 0 {
		return len(q)
	}
	if len(q) == 0 {
		return len(p)
	}
	if slices.Equal(p, q) {
		return 0
	}

	// table[i][j] is the distance between p[:i] and q[:j].
	table := make([][]int, len(p)+1)
	for i := range table {
		table[i] = make([]int, len(q)+1)
		table[i][0] = i
	}
	for j := range table[0] {
		table[0][j] = j
	}

	for i := 1; i <= len(p); i++ {
		for j := 1; j <= len(q); j++ {
			if p[i-1] == q[j-1] {
				table[i][j] = table[i-1][j-1]
				continue
			}
			deletion := table[i-1][j]
			insertion := table[i][j-1]
			substitution := table[i-1][j-1]
			table[i][j] = 1 + min(deletion, insertion, substitution)
		}
	}
	return table[len(p)][len(q)]
}

// LevenshteinMetric is Levenshtein with the bktree.Metric signature.
func LevenshteinMetric(p, q string) (int, error) {
	return Levenshtein(p, q), nil
}
