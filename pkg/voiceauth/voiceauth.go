// Package voiceauth orchestrates the enrollment and verification
// pipelines: challenge binding, audio normalization, spoken-content
// verification, feature extraction and biometric matching, in that
// order. Stage ordering is part of the contract: identity is checked
// before any audio byte is decoded, and content is checked before any
// biometric comparison.
package voiceauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kestrellabs/voicevault/pkg/accounts"
	"github.com/kestrellabs/voicevault/pkg/audio"
	"github.com/kestrellabs/voicevault/pkg/biometric"
	"github.com/kestrellabs/voicevault/pkg/features"
	"github.com/kestrellabs/voicevault/pkg/identity"
	"github.com/kestrellabs/voicevault/pkg/phrase"
	"github.com/kestrellabs/voicevault/pkg/stt"
	"github.com/kestrellabs/voicevault/pkg/wav"
)

// Decoder turns an uploaded audio blob into normalized mono samples.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (audio.Sample, error)
}

// Extractor computes a fixed-length voiceprint from normalized samples.
type Extractor interface {
	Extract(samples []float32, rate int) ([]float32, error)
}

// Error is a protocol-level rejection with an HTTP-style status.
// Outcomes of a completed verification (content or voice mismatch) are
// not Errors; they are Decisions with Verified=false.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("voiceauth: %d: %s", e.Status, e.Detail)
}

func errorf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// Details carries the per-stage scores of a verification attempt.
type Details struct {
	BioScore     float64 `json:"bio_score"`
	ContentScore float64 `json:"content_score"`
}

// Decision is the outcome of a verification attempt that ran to a
// conclusion. Score is the score of the stage that decided: the
// content score when content verification rejected, the biometric
// cosine similarity otherwise.
type Decision struct {
	Verified  bool    `json:"verified"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Details   Details `json:"details"`
	Message   string  `json:"message"`
}

// EnrollRequest is one enrollment attempt.
type EnrollRequest struct {
	Address   string
	Message   string
	Signature string
	Phrase    string
	Audio     []byte
}

// VerifyRequest is one verification attempt.
type VerifyRequest struct {
	Address   string
	Message   string
	Signature string
	Phrase    string
	Audio     []byte
}

// Config assembles an Authenticator. Store and Transcriber are
// required; the rest default to the production pipeline.
type Config struct {
	Store       accounts.Store
	Transcriber stt.Transcriber
	Decoder     Decoder
	Extractor   Extractor
	Policy      Policy
	Logger      *slog.Logger
}

// Authenticator runs the enrollment and verification flows against a
// single account store.
type Authenticator struct {
	store     accounts.Store
	stt       stt.Transcriber
	decoder   Decoder
	extractor Extractor
	policy    Policy
	content   *phrase.Verifier
	logger    *slog.Logger
}

// New validates cfg and returns a ready Authenticator.
func New(cfg Config) (*Authenticator, error) {
	if cfg.Store == nil {
		return nil, errors.New("voiceauth: store is required")
	}
	if cfg.Transcriber == nil {
		return nil, errors.New("voiceauth: transcriber is required")
	}
	if cfg.Decoder == nil {
		cfg.Decoder = &audio.Decoder{}
	}
	if cfg.Extractor == nil {
		cfg.Extractor = features.New(features.DefaultConfig())
	}
	if cfg.Policy == (Policy{}) {
		cfg.Policy = DefaultPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Authenticator{
		store:     cfg.Store,
		stt:       cfg.Transcriber,
		decoder:   cfg.Decoder,
		extractor: cfg.Extractor,
		policy:    cfg.Policy,
		content:   &phrase.Verifier{MinWordRatio: cfg.Policy.MinWordRatio},
		logger:    cfg.Logger,
	}, nil
}

// Enroll binds req.Address to the voiceprint extracted from req.Audio.
// Re-enrolling overwrites the previous voiceprint. Unlike Verify,
// every failure here is a hard protocol error: an account must never
// be created from a sample whose spoken content could not be
// confirmed.
func (a *Authenticator) Enroll(ctx context.Context, req EnrollRequest) error {
	if len(req.Phrase) < a.policy.MinPhraseLen {
		return errorf(http.StatusBadRequest, "phrase must be at least %d characters", a.policy.MinPhraseLen)
	}
	if req.Message != identity.ChallengeEnroll {
		return errorf(http.StatusUnauthorized, "unexpected challenge message")
	}
	if !identity.VerifyBinding(req.Address, req.Message, req.Signature) {
		return errorf(http.StatusUnauthorized, "invalid wallet signature")
	}

	sample, err := a.decoder.Decode(ctx, req.Audio)
	if err != nil {
		return errorf(http.StatusBadRequest, "audio processing failed: %v", err)
	}

	res, err := a.checkContent(ctx, sample, req.Phrase, a.policy.EnrollContentScore)
	if err != nil {
		return errorf(http.StatusBadRequest, "could not verify spoken phrase: %v", err)
	}
	if !res.Passed {
		return errorf(http.StatusBadRequest, "%s", res.Reason)
	}

	vec, err := a.extractor.Extract(sample.Data, sample.Rate)
	if err != nil {
		return errorf(http.StatusBadRequest, "audio processing failed: %v", err)
	}

	rec, err := a.store.Get(ctx, req.Address)
	if err != nil {
		if !errors.Is(err, accounts.ErrNotFound) {
			return errorf(http.StatusInternalServerError, "account lookup failed: %v", err)
		}
		rec = accounts.New(req.Address, accounts.TypeExternal)
	}
	rec.VoicePrint = vec
	if err := a.store.Put(ctx, rec); err != nil {
		return errorf(http.StatusInternalServerError, "account store failed: %v", err)
	}

	a.logger.Info("voiceprint enrolled",
		"address", req.Address,
		"content_score", res.Score,
		"dims", len(vec))
	return nil
}

// Verify decides whether req.Audio was spoken by the voice enrolled
// for req.Address. Protocol problems (bad phrase, unknown account,
// bad signature, undecodable audio) return an *Error; a pipeline that
// runs to a conclusion returns a Decision, including the fail-closed
// case where transcription itself was impossible.
func (a *Authenticator) Verify(ctx context.Context, req VerifyRequest) (*Decision, error) {
	if len(req.Phrase) < a.policy.MinPhraseLen {
		return nil, errorf(http.StatusBadRequest, "phrase must be at least %d characters", a.policy.MinPhraseLen)
	}

	rec, err := a.store.Get(ctx, req.Address)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, errorf(http.StatusNotFound, "wallet is not enrolled")
		}
		return nil, errorf(http.StatusInternalServerError, "account lookup failed: %v", err)
	}
	if !rec.Enrolled() {
		return nil, errorf(http.StatusNotFound, "wallet has no voiceprint enrolled")
	}

	if req.Message != identity.ChallengeVerify {
		return nil, errorf(http.StatusUnauthorized, "unexpected challenge message")
	}
	if !identity.VerifyBinding(req.Address, req.Message, req.Signature) {
		return nil, errorf(http.StatusUnauthorized, "invalid wallet signature")
	}

	sample, err := a.decoder.Decode(ctx, req.Audio)
	if err != nil {
		return nil, errorf(http.StatusBadRequest, "audio processing failed: %v", err)
	}

	res, err := a.checkContent(ctx, sample, req.Phrase, a.policy.VerifyContentScore)
	if err != nil {
		// Transcription failure is a rejection, not a server error:
		// an attacker must not learn anything by starving the oracle.
		a.logger.Warn("content verification unavailable", "address", req.Address, "error", err)
		return &Decision{
			Threshold: a.policy.BiometricThreshold,
			Message:   res.Reason,
		}, nil
	}
	if !res.Passed {
		return &Decision{
			Score:     res.Score,
			Threshold: a.policy.BiometricThreshold,
			Details:   Details{ContentScore: res.Score},
			Message:   res.Reason,
		}, nil
	}

	vec, err := a.extractor.Extract(sample.Data, sample.Rate)
	if err != nil {
		return nil, errorf(http.StatusBadRequest, "audio processing failed: %v", err)
	}

	ok, score, err := biometric.Match(rec.VoicePrint, vec, a.policy.BiometricThreshold)
	if err != nil {
		if errors.Is(err, biometric.ErrDimensionMismatch) {
			return nil, errorf(http.StatusBadRequest, "voiceprint format changed, re-enrollment required")
		}
		return nil, errorf(http.StatusInternalServerError, "biometric match failed: %v", err)
	}

	d := &Decision{
		Verified:  ok,
		Score:     score,
		Threshold: a.policy.BiometricThreshold,
		Details:   Details{BioScore: score, ContentScore: res.Score},
	}
	if ok {
		d.Message = "voice verified"
	} else {
		d.Message = fmt.Sprintf("voice does not match enrolled print (score %.4f)", score)
	}
	a.logger.Info("verification decided",
		"address", req.Address,
		"verified", ok,
		"bio_score", score,
		"content_score", res.Score)
	return d, nil
}

func (a *Authenticator) checkContent(ctx context.Context, sample audio.Sample, expected string, minScore float64) (phrase.Result, error) {
	wavData := wav.Encode(sample.Data, sample.Rate)
	if a.policy.STTTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.policy.STTTimeout)
		defer cancel()
	}
	return a.content.Check(ctx, a.stt, wavData, expected, minScore)
}
