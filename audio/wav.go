package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// errNotNativeWAV marks a RIFF file that is not plain integer PCM: float,
// compressed and WAVE_FORMAT_EXTENSIBLE files go through ffmpeg instead.
var errNotNativeWAV = errors.New("wav: not integer PCM")

// probeWAV reads the RIFF header only.
func probeWAV(data []byte) (Info, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return Info{}, fmt.Errorf("invalid wav: %w", err)
		}
		return Info{}, errors.New("invalid wav header")
	}
	dur, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("wav duration: %w", err)
	}
	return newInfo(dur.Seconds(), int(d.SampleRate), int(d.NumChans), int(d.BitDepth), "wav"), nil
}

// decodeWAV decodes integer PCM WAV to float samples at the native rate
// and channel count.
func decodeWAV(data []byte) (*Waveform, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, errors.New("invalid wav header")
	}
	// Extensible files carry their sample type in a sub-format GUID that
	// go-audio ignores, so float data would be read as integers.
	if d.WavAudioFormat != wavFormatPCM {
		return nil, errNotNativeWAV
	}
	switch d.BitDepth {
	case 16, 24, 32:
	default:
		return nil, errNotNativeWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, errors.New("wav has no audio frames")
	}

	scale := float32(int64(1) << (d.BitDepth - 1))
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return &Waveform{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// EncodeWAV writes w as integer PCM WAV at the given bit depth (16, 24 or
// 32). Samples outside [-1, 1] are clamped.
func EncodeWAV(w *Waveform, bitDepth int) ([]byte, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	channels := max(w.Channels, 1)

	full := float64(int64(1)<<(bitDepth-1)) - 1
	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		data[i] = int(math.Round(v * full))
	}

	out := &writeSeeker{}
	enc := wav.NewEncoder(out, w.SampleRate, bitDepth, channels, wavFormatPCM)
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finalize wav: %w", err)
	}
	return out.buf, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back
// to patch chunk sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, end, max(end, 2*cap(w.buf)))
			copy(grown, w.buf)
			w.buf = grown
		} else {
			w.buf = w.buf[:end]
		}
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(w.pos)
	case io.SeekEnd:
		base = int64(len(w.buf))
	default:
		return 0, errors.New("seek: invalid whence")
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	w.pos = int(next)
	return next, nil
}
