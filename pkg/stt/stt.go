// Package stt abstracts best-effort speech-to-text as a black-box
// capability with exactly three outcomes: a transcript, "no speech
// detected", or "service unavailable".
//
// Any concrete backend maps onto those outcomes: the caller fails
// closed on both error cases and must never assume success when the
// oracle cannot answer. Backends take 16-bit PCM mono WAV bytes, the
// canonical upload encoding produced by [wav.Encode].
//
// # Implementations
//
//   - [Google] — the free Google Web Speech API
//   - [OpenAI] — OpenAI Whisper transcription
//
// A [Mux] routes to a named backend so the provider is a config choice.
package stt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Capability outcomes besides a transcript.
var (
	// ErrNoSpeech means the backend understood the audio format but
	// found no intelligible speech in it.
	ErrNoSpeech = errors.New("stt: no speech detected")

	// ErrUnavailable means the backend could not answer: network
	// failure, timeout, quota, or a malformed provider response.
	ErrUnavailable = errors.New("stt: service unavailable")
)

// Transcriber is the transcription capability.
type Transcriber interface {
	// Transcribe returns the best-effort transcript of a 16-bit PCM
	// mono WAV recording, ErrNoSpeech, or ErrUnavailable.
	Transcribe(ctx context.Context, wavData []byte) (string, error)
}

// TranscribeFunc adapts a function to the Transcriber interface.
type TranscribeFunc func(ctx context.Context, wavData []byte) (string, error)

// Transcribe calls the underlying function.
func (f TranscribeFunc) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	return f(ctx, wavData)
}

// Mux routes transcription requests to a named registered backend.
type Mux struct {
	mu       sync.RWMutex
	backends map[string]Transcriber
}

// NewMux creates an empty transcriber multiplexer.
func NewMux() *Mux {
	return &Mux{backends: make(map[string]Transcriber)}
}

// Handle registers a backend under name. Registering a duplicate name
// is an error.
func (m *Mux) Handle(name string, t Transcriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.backends[name]; ok {
		return fmt.Errorf("stt: backend already registered for %q", name)
	}
	m.backends[name] = t
	return nil
}

// Get returns the backend registered under name.
func (m *Mux) Get(name string) (Transcriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.backends[name]
	if !ok {
		return nil, fmt.Errorf("stt: no backend registered for %q", name)
	}
	return t, nil
}

// Names returns the registered backend names, sorted.
func (m *Mux) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.backends))
	for name := range m.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
