package features

import (
	"math"
	"sort"
)

// logFloor keeps log energies finite on silent frames.
const logFloor = 1e-10

// hannWindow computes a periodic Hann window of length n.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// hzToMel converts frequency in Hz to mel scale.
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz converts mel scale to frequency in Hz.
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterbank computes triangular mel filter weights over the
// one-sided spectrum of an fftSize transform.
func melFilterbank(numMels, fftSize, sampleRate int) [][]float64 {
	half := fftSize/2 + 1

	melLow := hzToMel(0)
	melHigh := hzToMel(float64(sampleRate) / 2)

	melPoints := make([]float64, numMels+2)
	for i := range melPoints {
		melPoints[i] = melLow + float64(i)*(melHigh-melLow)/float64(numMels+1)
	}

	bins := make([]int, numMels+2)
	for i := range melPoints {
		hz := melToHz(melPoints[i])
		bins[i] = int(math.Floor(hz * float64(fftSize) / float64(sampleRate)))
		if bins[i] >= half {
			bins[i] = half - 1
		}
	}

	fb := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		fb[m] = make([]float64, half)
		left, center, right := bins[m], bins[m+1], bins[m+2]
		for k := left; k <= center; k++ {
			if center > left {
				fb[m][k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right; k++ {
			if right > center {
				fb[m][k] = float64(right-k) / float64(right-center)
			}
		}
	}
	return fb
}

// dctOrtho computes the orthonormal DCT-II basis mapping numMels log
// energies to numCoeffs cepstral coefficients.
func dctOrtho(numCoeffs, numMels int) [][]float64 {
	basis := make([][]float64, numCoeffs)
	scale0 := math.Sqrt(1.0 / float64(numMels))
	scale := math.Sqrt(2.0 / float64(numMels))
	for c := range basis {
		basis[c] = make([]float64, numMels)
		s := scale
		if c == 0 {
			s = scale0
		}
		for m := 0; m < numMels; m++ {
			basis[c][m] = s * math.Cos(math.Pi*float64(c)*(float64(m)+0.5)/float64(numMels))
		}
	}
	return basis
}

// chromaMap assigns each FFT bin to a pitch class (0 = C), or -1 for
// bins below the audible floor.
func chromaMap(bins, half, fftSize, sampleRate int) []int {
	m := make([]int, half)
	for k := range m {
		f := float64(k) * float64(sampleRate) / float64(fftSize)
		if f < 20 {
			m[k] = -1
			continue
		}
		// MIDI note number; note 60 (C4) lands on class 0.
		midi := 69 + 12*math.Log2(f/440)
		class := int(math.Round(midi)) % bins
		if class < 0 {
			class += bins
		}
		m[k] = class
	}
	return m
}

// contrastBands splits the one-sided spectrum into numBands+1 ranges:
// [0, fmin), then octaves up from fmin, the last band capped at the
// Nyquist bin. Each range holds at least one bin.
func contrastBands(numBands int, fmin float64, half, fftSize, sampleRate int) [][2]int {
	hzToBin := func(hz float64) int {
		b := int(math.Floor(hz * float64(fftSize) / float64(sampleRate)))
		if b > half {
			b = half
		}
		return b
	}

	edges := make([]int, 0, numBands+2)
	edges = append(edges, 0)
	for b := 0; b <= numBands; b++ {
		edges = append(edges, hzToBin(fmin*math.Pow(2, float64(b))))
	}
	edges[len(edges)-1] = half

	ranges := make([][2]int, 0, numBands+1)
	for i := 0; i+1 < len(edges); i++ {
		lo, hi := edges[i], edges[i+1]
		if hi <= lo {
			hi = lo + 1
		}
		if hi > half {
			hi = half
			if lo >= hi {
				lo = hi - 1
			}
		}
		ranges = append(ranges, [2]int{lo, hi})
	}
	return ranges
}

// contrast computes the peak-to-valley spread of a power sub-band in
// dB. The peak (valley) is the mean of the top (bottom) 2% of bins,
// with a one-bin minimum. scratch is reused across calls to avoid
// per-frame allocation.
func contrast(band []float64, scratch *[]float64) float64 {
	if len(band) == 0 {
		return 0
	}
	if cap(*scratch) < len(band) {
		*scratch = make([]float64, len(band))
	}
	s := (*scratch)[:len(band)]
	copy(s, band)
	sort.Float64s(s)

	ntile := len(s) / 50
	if ntile < 1 {
		ntile = 1
	}
	var valley, peak float64
	for i := 0; i < ntile; i++ {
		valley += s[i]
		peak += s[len(s)-1-i]
	}
	valley /= float64(ntile)
	peak /= float64(ntile)

	return 10 * (math.Log10(peak+logFloor) - math.Log10(valley+logFloor))
}
