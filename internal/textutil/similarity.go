package textutil

// CosineSimilarity returns the cosine of the angle between two fingerprints,
// 0 when either is nil or empty.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	small, large := a, b
	if len(small.tokens) > len(large.tokens) {
		small, large = large, small
	}
	var dot float64
	for token, count := range small.tokens {
		dot += count * large.tokens[token]
	}
	return dot / (a.norm * b.norm)
}

// Similar reports whether two texts reach the given cosine threshold.
func Similar(a, b string, threshold float64) bool {
	return CosineSimilarity(NewFingerprint(a), NewFingerprint(b)) >= threshold
}
