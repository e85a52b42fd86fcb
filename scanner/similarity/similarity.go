// Package similarity scores how close two domain names are
package similarity

// TyposquatThreshold similarity must be strictly above this to be a near miss
const TyposquatThreshold = 0.75

// Distance is the minimum number of single byte insertions, deletions or
// substitutions needed to turn a into b.
func Distance(a, b string) int {
	// rows are indexed by b, columns by a; only two rows are kept
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := 0; i <= len(a); i++ {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min3(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

// Similarity in [0,1], 1.0 for identical strings including two empty ones
func Similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	return float64(longest-Distance(a, b)) / float64(longest)
}

// IsTyposquat returns true if candidate is a near miss of legitimate. An exact
// match is the legitimate domain itself and never a typosquat.
func IsTyposquat(candidate, legitimate string) bool {
	s := Similarity(candidate, legitimate)
	return s > TyposquatThreshold && s < 1.0
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
