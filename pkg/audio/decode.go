package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kestrellabs/voicevault/pkg/wav"
)

// Decoder converts uploaded audio bytes into canonical 16 kHz mono
// Samples. The zero value is usable; TempDir and FFmpegPath default to
// the OS temp directory and "ffmpeg" on PATH.
type Decoder struct {
	// TempDir is where fallback conversion scratch files are written.
	TempDir string

	// FFmpegPath overrides the ffmpeg binary used by the fallback path.
	FFmpegPath string
}

// Decode parses data into a canonical Sample.
//
// The direct path handles WAV uploads entirely in memory, resampling to
// 16 kHz when needed. Everything else falls back to an ffmpeg
// conversion through a scoped temp file, which is removed on every exit
// path. When both paths fail the error wraps ErrDecode.
func (d *Decoder) Decode(ctx context.Context, data []byte) (Sample, error) {
	if len(data) == 0 {
		return Sample{}, fmt.Errorf("%w: empty input", ErrDecode)
	}

	samples, rate, err := wav.Decode(data)
	if err == nil {
		if rate != TargetRate {
			samples, err = Resample(samples, rate, TargetRate)
			if err != nil {
				return Sample{}, fmt.Errorf("%w: %v", ErrDecode, err)
			}
		}
		return Sample{Data: samples, Rate: TargetRate}, nil
	}

	out, fbErr := d.convert(ctx, data)
	if fbErr != nil {
		return Sample{}, fmt.Errorf("%w: direct: %v; ffmpeg: %v", ErrDecode, err, fbErr)
	}
	return out, nil
}

// convert shells out to ffmpeg to transcode unknown containers to
// 16 kHz mono WAV.
func (d *Decoder) convert(ctx context.Context, data []byte) (Sample, error) {
	dir := d.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	ffmpeg := d.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	id := uuid.NewString()
	src := filepath.Join(dir, "voicevault-"+id+".in")
	dst := filepath.Join(dir, "voicevault-"+id+".wav")
	defer os.Remove(src)
	defer os.Remove(dst)

	if err := os.WriteFile(src, data, 0o600); err != nil {
		return Sample{}, fmt.Errorf("write temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-ac", "1",
		"-ar", fmt.Sprint(TargetRate),
		"-f", "wav",
		"-y", dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Sample{}, ctx.Err()
		}
		return Sample{}, fmt.Errorf("ffmpeg: %w (%s)", err, firstLine(out))
	}

	converted, err := os.ReadFile(dst)
	if err != nil {
		return Sample{}, fmt.Errorf("read converted file: %w", err)
	}
	samples, rate, err := wav.Decode(converted)
	if err != nil {
		return Sample{}, fmt.Errorf("parse converted wav: %w", err)
	}
	if rate != TargetRate {
		// ffmpeg was asked for 16 kHz; anything else means the binary
		// misbehaved.
		return Sample{}, fmt.Errorf("converted rate %d, want %d", rate, TargetRate)
	}
	return Sample{Data: samples, Rate: rate}, nil
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			return string(b[:i])
		}
	}
	return string(b)
}
