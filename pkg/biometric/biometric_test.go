package biometric

import (
	"errors"
	"testing"
)

func TestSelfComparisonIsOne(t *testing.T) {
	v := []float32{1.5, -2.25, 0.125, 7}
	score, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if score != 1.0 {
		t.Errorf("self-similarity = %v, want exactly 1.0", score)
	}
}

func TestDimensionMismatchIsError(t *testing.T) {
	// Unequal lengths must fail loudly, never score 0 silently.
	_, _, err := Match(make([]float32, 59), make([]float32, 40), DefaultThreshold)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Match() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestOrthogonalVectorsScoreZero(t *testing.T) {
	score, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if score != 0 {
		t.Errorf("orthogonal similarity = %v, want 0", score)
	}
}

func TestOppositeVectorsScoreNegative(t *testing.T) {
	score, err := Cosine([]float32{1, 2, 3}, []float32{-1, -2, -3})
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if score > -0.999 {
		t.Errorf("opposite similarity = %v, want ~ -1", score)
	}
}

func TestZeroVectorScoresZero(t *testing.T) {
	score, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("Cosine: %v", err)
	}
	if score != 0 {
		t.Errorf("zero-vector similarity = %v, want 0 (not NaN)", score)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []float32
		threshold float64
		want      bool
	}{
		{"identical above any threshold", []float32{1, 1}, []float32{1, 1}, 0.90, true},
		{"score equal to threshold is not a match", []float32{1, 0}, []float32{1, 0}, 1.0, false},
		{"below threshold", []float32{1, 0}, []float32{0.5, 1}, 0.90, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, score, err := Match(tt.a, tt.b, tt.threshold)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Match() = %v (score %v, threshold %v), want %v", ok, score, tt.threshold, tt.want)
			}
		})
	}
}
