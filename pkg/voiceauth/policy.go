package voiceauth

import "time"

// Policy names every threshold the flows apply. The asymmetry between
// enrollment and verification strictness is configuration, not code:
// enrollment only needs to confirm a clean sample was read, while
// verification is the security-critical path.
type Policy struct {
	// MinPhraseLen is the minimum challenge phrase length in bytes.
	MinPhraseLen int

	// MinWordRatio is the content word-count gate: transcript tokens /
	// expected tokens below this rejects before similarity scoring.
	MinWordRatio float64

	// EnrollContentScore is the 0-100 similarity floor at enrollment.
	EnrollContentScore float64

	// VerifyContentScore is the 0-100 similarity floor at
	// verification (near-exact).
	VerifyContentScore float64

	// BiometricThreshold is the cosine similarity a probe must exceed
	// to match the enrolled voiceprint.
	BiometricThreshold float64

	// STTTimeout bounds each call to the transcription oracle. A
	// timeout maps to the fail-closed unavailable outcome, never an
	// indefinite wait.
	STTTimeout time.Duration
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinPhraseLen:       10,
		MinWordRatio:       0.75,
		EnrollContentScore: 75,
		VerifyContentScore: 99,
		BiometricThreshold: 0.90,
		STTTimeout:         15 * time.Second,
	}
}
