// Package biometric scores the similarity of two voiceprint vectors.
//
// The score is cosine similarity: directional closeness independent of
// magnitude, 1.0 for identical non-zero vectors. The match threshold is
// a policy decision supplied by the caller, so enrollment validation
// and verification can choose different strictness against the same
// scoring function.
package biometric

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the production verify-time match threshold.
const DefaultThreshold = 0.90

// ErrDimensionMismatch is returned when the two vectors have different
// lengths. This signals a stale enrollment produced by an incompatible
// extractor configuration; the comparison is never partially attempted.
var ErrDimensionMismatch = errors.New("biometric: dimension mismatch")

// Match reports whether probe matches enrolled under the given
// threshold, along with the cosine similarity score. A match requires
// score strictly greater than threshold.
func Match(enrolled, probe []float32, threshold float64) (bool, float64, error) {
	score, err := Cosine(enrolled, probe)
	if err != nil {
		return false, 0, err
	}
	return score > threshold, score, nil
}

// Cosine computes the cosine similarity of two equal-length vectors.
// A zero-norm input scores 0 rather than NaN. Element-wise identical
// non-zero vectors score exactly 1, independent of rounding.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	identical := true
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
		if a[i] != b[i] {
			identical = false
		}
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	if identical {
		return 1, nil
	}
	return dot / math.Sqrt(normA*normB), nil
}
