package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI transcribes via the OpenAI audio transcription API (Whisper).
type OpenAI struct {
	client *openai.Client
	model  openai.AudioModel
}

var _ Transcriber = (*OpenAI)(nil)

// OpenAIOption configures the OpenAI backend.
type OpenAIOption func(*OpenAI)

// WithModel sets the transcription model (default whisper-1).
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) { o.model = openai.AudioModel(model) }
}

// NewOpenAI creates a Whisper transcriber.
//
// The apiKey is required and can be obtained from:
// https://platform.openai.com/api-keys
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(http.DefaultClient),
	)
	o := &OpenAI{
		client: &client,
		model:  openai.AudioModelWhisper1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: o.model,
		File:  openai.File(bytes.NewReader(wavData), "audio.wav", "audio/wav"),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			// Whisper rejects audio it cannot find speech in with a 400.
			return "", fmt.Errorf("%w: %v", ErrNoSpeech, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
