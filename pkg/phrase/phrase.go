// Package phrase verifies that a recording contains a specific spoken
// phrase, using an external transcription capability plus fuzzy string
// matching.
//
// Two gates run in order. The word-count gate rejects truncated or
// garbled audio cheaply before any scoring: a transcript carrying fewer
// than MinWordRatio of the expected tokens fails outright. The
// similarity gate then scores the transcript against the expected
// phrase on a 0-100 Levenshtein ratio; the pass threshold is supplied
// per call because enrollment (clean-sample check) and verification
// (security gate) demand different strictness.
//
// Transcription failure of any kind fails closed: the result is never
// assumed to pass when the oracle cannot answer.
package phrase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/kestrellabs/voicevault/pkg/stt"
)

// DefaultMinWordRatio is the production word-count gate: the transcript
// must carry at least 75% of the expected token count.
const DefaultMinWordRatio = 0.75

// Result is the outcome of a content check.
type Result struct {
	// Transcript is what the oracle heard. Empty when transcription
	// failed.
	Transcript string

	// WordRatio is transcript tokens / expected tokens.
	WordRatio float64

	// Score is the 0-100 similarity ratio between the lowercased
	// transcript and expected phrase. 0 when a gate failed first.
	Score float64

	// Passed reports whether every gate passed.
	Passed bool

	// Reason explains a failure in user-facing terms.
	Reason string
}

// Verifier checks spoken content. The zero value uses
// DefaultMinWordRatio.
type Verifier struct {
	// MinWordRatio overrides the word-count gate when non-zero.
	MinWordRatio float64
}

// Check transcribes wavData and gates it against the expected phrase.
// minScore is the similarity threshold for this flow (0-100). The error
// is non-nil only for oracle failures, and is always one of the stt
// sentinel errors (wrapped); the returned Result still reports
// Passed=false with score 0 in that case.
func (v *Verifier) Check(ctx context.Context, t stt.Transcriber, wavData []byte, expected string, minScore float64) (Result, error) {
	transcript, err := t.Transcribe(ctx, wavData)
	if err != nil {
		reason := "speech recognition service unavailable"
		if errors.Is(err, stt.ErrNoSpeech) {
			reason = "could not understand speech"
		}
		return Result{Passed: false, Reason: reason}, err
	}

	minRatio := v.MinWordRatio
	if minRatio == 0 {
		minRatio = DefaultMinWordRatio
	}

	heard := strings.Fields(strings.ToLower(transcript))
	want := strings.Fields(strings.ToLower(expected))
	res := Result{Transcript: transcript}
	if len(want) > 0 {
		res.WordRatio = float64(len(heard)) / float64(len(want))
	}

	if float64(len(heard)) < float64(len(want))*minRatio {
		res.Reason = fmt.Sprintf("incomplete phrase: heard %d/%d words", len(heard), len(want))
		return res, nil
	}

	res.Score = Ratio(strings.ToLower(transcript), strings.ToLower(expected))
	if res.Score < minScore {
		res.Reason = fmt.Sprintf("incorrect passphrase (content score %.0f/100)", res.Score)
		return res, nil
	}

	res.Passed = true
	return res, nil
}

// Ratio is the normalized Levenshtein similarity of two strings on a
// 0-100 scale: 100 for identical input, 0 for entirely different.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}
