package audio

import (
	"math"
	"time"
)

// Waveform is decoded PCM audio as float samples in [-1, 1]. Multi-channel
// audio is interleaved. A prepared waveform is always mono and is not
// modified after Prepare returns it.
type Waveform struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of samples per channel.
func (w *Waveform) Frames() int {
	if w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration returns the playing time.
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

// Seconds returns the playing time in seconds.
func (w *Waveform) Seconds() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.SampleRate)
}

// Peak returns the largest absolute sample value.
func (w *Waveform) Peak() float64 {
	var peak float64
	for _, s := range w.Samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root mean square of all samples.
func (w *Waveform) RMS() float64 {
	if len(w.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range w.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(w.Samples)))
}

// DBFS returns the RMS loudness relative to full scale. Silence is -Inf.
func (w *Waveform) DBFS() float64 {
	return toDB(w.RMS())
}

// Clone returns a deep copy.
func (w *Waveform) Clone() *Waveform {
	return &Waveform{
		Samples:    append([]float32(nil), w.Samples...),
		SampleRate: w.SampleRate,
		Channels:   w.Channels,
	}
}

// Stats summarises the loudness of a waveform.
type Stats struct {
	DurationSeconds float64
	SampleRate      int
	Channels        int
	DBFS            float64
	MaxDBFS         float64
	RMS             float64
}

// Stats returns loudness statistics.
func (w *Waveform) Stats() Stats {
	return Stats{
		DurationSeconds: w.Seconds(),
		SampleRate:      w.SampleRate,
		Channels:        w.Channels,
		DBFS:            w.DBFS(),
		MaxDBFS:         toDB(w.Peak()),
		RMS:             w.RMS(),
	}
}

func toDB(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(amplitude)
}
