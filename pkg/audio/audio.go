// Package audio turns arbitrary uploaded audio bytes into the canonical
// sample format used by the rest of the pipeline: mono float32 at 16 kHz.
//
// Decoding tries a direct in-memory WAV parse first. Anything else
// (WebM/Ogg browser recordings, MP3, ...) goes through a temp-file
// ffmpeg fallback that converts and resamples in one pass. Non-16kHz
// WAV input from the direct path is resampled in-process.
package audio

import (
	"errors"
	"fmt"
)

// TargetRate is the canonical sample rate of the pipeline. Every Sample
// leaving a Decoder has this rate.
const TargetRate = 16000

// Sentinel errors.
var (
	// ErrDecode is returned when neither decode path can make sense of
	// the input. It always hard-stops the calling flow.
	ErrDecode = errors.New("audio: undecodable input")
)

// Sample is a decoded mono audio buffer. It lives for the duration of
// one request and is never persisted.
type Sample struct {
	// Data holds normalized samples in [-1, 1].
	Data []float32

	// Rate is the sample rate in Hz.
	Rate int
}

// Duration returns the buffer length in seconds.
func (s Sample) Duration() float64 {
	if s.Rate == 0 {
		return 0
	}
	return float64(len(s.Data)) / float64(s.Rate)
}

func (s Sample) String() string {
	return fmt.Sprintf("audio.Sample{%d samples @ %d Hz, %.2fs}", len(s.Data), s.Rate, s.Duration())
}
