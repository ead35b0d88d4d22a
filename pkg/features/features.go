// Package features extracts fixed-length acoustic feature vectors from
// canonical 16 kHz mono audio.
//
// A vector concatenates, in fixed order, the per-coefficient mean and
// standard deviation of 20 MFCCs, the per-class mean of a 12-bin chroma
// spectrogram, and the per-band mean of a 7-band spectral contrast
// matrix: 20 + 20 + 12 + 7 = 59 values. Enrollment and verification
// vectors are only comparable when produced by the same configuration,
// so the vector length is a property of the Config, never of the input.
//
// Extraction is deterministic: identical input produces bit-identical
// output. All reductions accumulate in float64 in fixed iteration order.
package features

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Sentinel errors.
var (
	// ErrSampleRate is returned when the input is not at the configured
	// canonical rate. Callers resample before extraction.
	ErrSampleRate = errors.New("features: unexpected sample rate")

	// ErrTooShort is returned when the signal cannot fill one analysis
	// frame.
	ErrTooShort = errors.New("features: signal too short")

	// ErrDegenerate is returned when extraction produces non-finite
	// values (silent or pathological input). A partial vector is never
	// returned.
	ErrDegenerate = errors.New("features: degenerate signal")
)

// Config holds the extractor parameters. Changing any field changes the
// meaning (and possibly the length) of produced vectors; stored
// voiceprints then require re-enrollment.
type Config struct {
	SampleRate    int     // canonical input rate (default 16000)
	FrameLength   int     // analysis window in samples, power of two (default 1024)
	FrameShift    int     // hop between frames in samples (default 256)
	NumMels       int     // mel filterbank size feeding the MFCCs (default 40)
	NumMFCC       int     // cepstral coefficients kept per frame (default 20)
	ChromaBins    int     // pitch classes (default 12)
	ContrastBands int     // octave bands; output has ContrastBands+1 values (default 6)
	ContrastFMin  float64 // lower edge of the first contrast octave in Hz (default 200)
}

// DefaultConfig returns the production configuration (59-dim vectors at
// 16 kHz).
func DefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		FrameLength:   1024,
		FrameShift:    256,
		NumMels:       40,
		NumMFCC:       20,
		ChromaBins:    12,
		ContrastBands: 6,
		ContrastFMin:  200,
	}
}

// VectorLen returns the length of vectors produced under this
// configuration.
func (c Config) VectorLen() int {
	return 2*c.NumMFCC + c.ChromaBins + c.ContrastBands + 1
}

// Extractor computes feature vectors. It precomputes the FFT plan,
// window, filterbanks and DCT basis once; Extract is safe for
// concurrent use because all per-call state is local.
type Extractor struct {
	cfg      Config
	fft      *fourier.FFT
	window   []float64
	melBank  [][]float64 // [NumMels][halfFFT]
	dctBasis [][]float64 // [NumMFCC][NumMels]
	chroma   []int       // FFT bin -> pitch class, -1 to skip
	bands    [][2]int    // contrast band bin ranges [lo, hi)
}

// New creates an Extractor for the given configuration.
func New(cfg Config) *Extractor {
	half := cfg.FrameLength/2 + 1
	return &Extractor{
		cfg:      cfg,
		fft:      fourier.NewFFT(cfg.FrameLength),
		window:   hannWindow(cfg.FrameLength),
		melBank:  melFilterbank(cfg.NumMels, cfg.FrameLength, cfg.SampleRate),
		dctBasis: dctOrtho(cfg.NumMFCC, cfg.NumMels),
		chroma:   chromaMap(cfg.ChromaBins, half, cfg.FrameLength, cfg.SampleRate),
		bands:    contrastBands(cfg.ContrastBands, cfg.ContrastFMin, half, cfg.FrameLength, cfg.SampleRate),
	}
}

// Extract computes the feature vector for mono samples at the given
// rate. The rate must equal the configured canonical rate; the
// extractor never resamples.
func (e *Extractor) Extract(samples []float32, rate int) ([]float32, error) {
	if rate != e.cfg.SampleRate {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSampleRate, rate, e.cfg.SampleRate)
	}
	if len(samples) < e.cfg.FrameLength {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrTooShort, len(samples), e.cfg.FrameLength)
	}

	numFrames := (len(samples)-e.cfg.FrameLength)/e.cfg.FrameShift + 1
	half := e.cfg.FrameLength/2 + 1

	var (
		mfccSum   = make([]float64, e.cfg.NumMFCC)
		mfccSqSum = make([]float64, e.cfg.NumMFCC)
		chromaSum = make([]float64, e.cfg.ChromaBins)
		bandSum   = make([]float64, len(e.bands))

		frame    = make([]float64, e.cfg.FrameLength)
		power    = make([]float64, half)
		mels     = make([]float64, e.cfg.NumMels)
		chromaFr = make([]float64, e.cfg.ChromaBins)
		scratch  []float64
	)

	for f := 0; f < numFrames; f++ {
		off := f * e.cfg.FrameShift
		for i := 0; i < e.cfg.FrameLength; i++ {
			frame[i] = float64(samples[off+i]) * e.window[i]
		}

		coeffs := e.fft.Coefficients(nil, frame)
		for k := 0; k < half; k++ {
			re := real(coeffs[k])
			im := imag(coeffs[k])
			power[k] = re*re + im*im
		}

		// MFCC: mel energies -> log -> DCT-II.
		for m := range mels {
			var energy float64
			for k, w := range e.melBank[m] {
				energy += w * power[k]
			}
			mels[m] = math.Log(energy + logFloor)
		}
		for c := 0; c < e.cfg.NumMFCC; c++ {
			var v float64
			for m, b := range e.dctBasis[c] {
				v += b * mels[m]
			}
			mfccSum[c] += v
			mfccSqSum[c] += v * v
		}

		// Chroma: fold bin power into pitch classes, normalize the
		// frame to its peak class.
		for i := range chromaFr {
			chromaFr[i] = 0
		}
		for k := 1; k < half; k++ {
			if class := e.chroma[k]; class >= 0 {
				chromaFr[class] += power[k]
			}
		}
		peak := 0.0
		for _, v := range chromaFr {
			if v > peak {
				peak = v
			}
		}
		if peak > 0 {
			for i, v := range chromaFr {
				chromaSum[i] += v / peak
			}
		}

		// Spectral contrast: per-band peak-to-valley spread in dB.
		for b, r := range e.bands {
			bandSum[b] += contrast(power[r[0]:r[1]], &scratch)
		}
	}

	n := float64(numFrames)
	vec := make([]float32, 0, e.cfg.VectorLen())
	for c := 0; c < e.cfg.NumMFCC; c++ {
		vec = append(vec, float32(mfccSum[c]/n))
	}
	for c := 0; c < e.cfg.NumMFCC; c++ {
		mean := mfccSum[c] / n
		variance := mfccSqSum[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		vec = append(vec, float32(math.Sqrt(variance)))
	}
	for _, s := range chromaSum {
		vec = append(vec, float32(s/n))
	}
	for _, s := range bandSum {
		vec = append(vec, float32(s/n))
	}

	for i, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("%w: non-finite value at index %d", ErrDegenerate, i)
		}
	}
	return vec, nil
}

// VectorLen returns the length of vectors this extractor produces.
func (e *Extractor) VectorLen() int {
	return e.cfg.VectorLen()
}
