// Package wav implements an in-memory RIFF/WAVE codec.
//
// Decode accepts PCM (8/16/24/32-bit) and IEEE float (32/64-bit) WAVE
// files, including WAVE_FORMAT_EXTENSIBLE, and produces normalized mono
// float32 samples. Multi-channel input is reduced to mono by averaging
// the channels. Encode produces the canonical upload format used across
// the pipeline: 16-bit PCM, mono, little-endian.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Format codes from the WAVE specification.
const (
	formatPCM        = 0x0001
	formatIEEEFloat  = 0x0003
	formatExtensible = 0xFFFE
)

// Sentinel errors.
var (
	// ErrNotWAV is returned when the input does not start with a
	// RIFF/WAVE header.
	ErrNotWAV = errors.New("wav: not a RIFF/WAVE stream")

	// ErrMalformed is returned for truncated or inconsistent chunk data.
	ErrMalformed = errors.New("wav: malformed stream")

	// ErrUnsupported is returned for sample formats the decoder does not
	// handle (e.g. compressed codecs inside a WAVE container).
	ErrUnsupported = errors.New("wav: unsupported sample format")
)

// Decode parses a WAVE stream and returns normalized mono samples in
// [-1, 1] together with the sample rate. Multi-channel audio is averaged
// down to one channel.
func Decode(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, ErrNotWAV
	}

	var (
		haveFmt    bool
		formatCode uint16
		channels   int
		sampleRate int
		bitDepth   int
	)

	// Walk the chunk list. The fmt chunk must precede data.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			// Tolerate a data chunk whose declared size overruns the
			// buffer (common with streamed recordings); clamp to EOF.
			if id == "data" && body < len(data) {
				size = len(data) - body
			} else {
				return nil, 0, ErrMalformed
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, ErrMalformed
			}
			formatCode = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if formatCode == formatExtensible {
				// The real format code lives in the first two bytes of
				// the extension's SubFormat GUID.
				if size < 40 {
					return nil, 0, ErrMalformed
				}
				formatCode = binary.LittleEndian.Uint16(data[body+24 : body+26])
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, 0, ErrMalformed
			}
			return decodeData(data[body:body+size], formatCode, channels, sampleRate, bitDepth)
		}

		// Chunks are word-aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, 0, fmt.Errorf("%w: no data chunk", ErrMalformed)
}

func decodeData(raw []byte, formatCode uint16, channels, sampleRate, bitDepth int) ([]float32, int, error) {
	if channels <= 0 || sampleRate <= 0 {
		return nil, 0, ErrMalformed
	}

	bytesPerSample := bitDepth / 8
	if bytesPerSample == 0 {
		return nil, 0, ErrMalformed
	}
	frameSize := bytesPerSample * channels
	numFrames := len(raw) / frameSize
	if numFrames == 0 {
		return nil, 0, fmt.Errorf("%w: empty data chunk", ErrMalformed)
	}

	read, err := sampleReader(formatCode, bitDepth)
	if err != nil {
		return nil, 0, err
	}

	out := make([]float32, numFrames)
	for f := 0; f < numFrames; f++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			off := f*frameSize + ch*bytesPerSample
			sum += read(raw[off : off+bytesPerSample])
		}
		out[f] = float32(sum / float64(channels))
	}
	return out, sampleRate, nil
}

// sampleReader returns a function decoding one sample to a normalized
// float64 in [-1, 1].
func sampleReader(formatCode uint16, bitDepth int) (func([]byte) float64, error) {
	switch formatCode {
	case formatPCM:
		switch bitDepth {
		case 8:
			// 8-bit WAV is unsigned.
			return func(b []byte) float64 {
				return (float64(b[0]) - 128) / 128
			}, nil
		case 16:
			return func(b []byte) float64 {
				return float64(int16(binary.LittleEndian.Uint16(b))) / 32768
			}, nil
		case 24:
			return func(b []byte) float64 {
				v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
				if v&0x800000 != 0 {
					v |= ^int32(0xFFFFFF)
				}
				return float64(v) / 8388608
			}, nil
		case 32:
			return func(b []byte) float64 {
				return float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648
			}, nil
		}
	case formatIEEEFloat:
		switch bitDepth {
		case 32:
			return func(b []byte) float64 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			}, nil
		case 64:
			return func(b []byte) float64 {
				return math.Float64frombits(binary.LittleEndian.Uint64(b))
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: format=0x%04X bits=%d", ErrUnsupported, formatCode, bitDepth)
}

// Encode serializes mono float32 samples as a 16-bit PCM WAVE file.
// Samples outside [-1, 1] are clipped.
func Encode(samples []float32, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		pcm := int16(math.Round(v * 32767))
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(pcm))
	}
	return buf
}

// PCMData returns the raw little-endian sample payload of a 16-bit PCM
// WAVE stream, as produced by Encode. Transcription backends that want
// headerless linear PCM (audio/l16) use this to strip the container.
func PCMData(data []byte) ([]byte, int, error) {
	samples, rate, err := Decode(data)
	if err != nil {
		return nil, 0, err
	}
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(math.Round(v*32767))))
	}
	return pcm, rate, nil
}
