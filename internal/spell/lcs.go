package spell

// Pair aligns position A of the first sequence with position B of the second.
type Pair struct {
	A int
	B int
}

// LCS computes the length of the longest common subsequence of a and b
// together with one optimal alignment, in increasing order of both indices.
//
// The alignment is recovered by walking the table from the start of both
// sequences, taking a match whenever the two positions are equal and
// otherwise advancing the side that keeps the longer remaining subsequence
// (a on ties). Time and space are O(len(a)*len(b)).
func LCS(a, b []string) (int, []Pair) {
	return lcsFunc(len(a), len(b), func(i, j int) bool {
		return a[i] == b[j]
	})
}

// lcsFunc is LCS over abstract sequences of length n and m compared by eq.
func lcsFunc(n, m int, eq func(i, j int) bool) (int, []Pair) {
	if n == 0 || m == 0 {
		return 0, nil
	}

	// dp[i*w+j] holds the LCS length of the suffixes starting at i and j.
	w := m + 1
	dp := make([]int, (n+1)*w)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case eq(i, j):
				dp[i*w+j] = dp[(i+1)*w+j+1] + 1
			case dp[(i+1)*w+j] >= dp[i*w+j+1]:
				dp[i*w+j] = dp[(i+1)*w+j]
			default:
				dp[i*w+j] = dp[i*w+j+1]
			}
		}
	}

	length := dp[0]
	if length == 0 {
		return 0, nil
	}

	pairs := make([]Pair, 0, length)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case eq(i, j):
			pairs = append(pairs, Pair{A: i, B: j})
			i++
			j++
		case dp[(i+1)*w+j] >= dp[i*w+j+1]:
			i++
		default:
			j++
		}
	}

	return length, pairs
}

// threshold is the minimum LCS length for a template of slotCount slots to
// absorb a line: half the slot count, rounded up.
func threshold(slotCount int) int {
	return (slotCount + 1) / 2
}

// Accepts reports whether a line of tokenCount tokens whose LCS with a
// template of slotCount slots is lcsLen belongs to that template. Lines are
// never merged into a template of a different length.
func Accepts(lcsLen, slotCount, tokenCount int) bool {
	return tokenCount == slotCount && lcsLen >= threshold(slotCount)
}
