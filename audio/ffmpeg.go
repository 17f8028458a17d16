package audio

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kbukum/voxscribe/process"
)

// mediaTool decodes containers through ffprobe and ffmpeg. Input is
// spooled to a temporary file because MP4-family containers cannot be
// demuxed from a pipe when the index sits at the end.
type mediaTool struct {
	ffmpeg  string
	ffprobe string
}

type probeOutput struct {
	Streams []struct {
		CodecType        string `json:"codec_type"`
		SampleRate       string `json:"sample_rate"`
		Channels         int    `json:"channels"`
		BitsPerSample    int    `json:"bits_per_sample"`
		BitsPerRawSample string `json:"bits_per_raw_sample"`
		Duration         string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

func (m mediaTool) probe(ctx context.Context, path string) (Info, error) {
	res, err := process.Run(ctx, process.Command{
		Binary: m.ffprobe,
		Args:   []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path},
	})
	if err != nil {
		return Info{}, err
	}

	var out probeOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, s := range out.Streams {
		if s.CodecType != "audio" {
			continue
		}
		rate, _ := strconv.Atoi(s.SampleRate)
		duration := parseSeconds(out.Format.Duration)
		if duration == 0 {
			duration = parseSeconds(s.Duration)
		}
		bits := s.BitsPerSample
		if bits == 0 {
			bits, _ = strconv.Atoi(s.BitsPerRawSample)
		}
		if bits == 0 {
			// Lossy codecs have no sample width; report the decoder's.
			bits = 16
		}
		format, _, _ := strings.Cut(out.Format.FormatName, ",")
		return newInfo(duration, rate, s.Channels, bits, format), nil
	}
	return Info{}, errors.New("no audio stream found")
}

// decode returns interleaved float samples at the stream's native rate and
// channel layout.
func (m mediaTool) decode(ctx context.Context, path string) (*Waveform, error) {
	info, err := m.probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.SampleRate <= 0 || info.Channels <= 0 {
		return nil, fmt.Errorf("invalid stream parameters: %d Hz, %d channels", info.SampleRate, info.Channels)
	}

	res, err := process.Run(ctx, process.Command{
		Binary: m.ffmpeg,
		Args: []string{
			"-nostdin", "-hide_banner", "-loglevel", "error",
			"-i", path,
			"-map", "0:a:0",
			"-f", "f32le", "-acodec", "pcm_f32le",
			"pipe:1",
		},
	})
	if err != nil {
		return nil, err
	}

	n := len(res.Stdout) / 4
	if n == 0 {
		return nil, errors.New("decoded stream is empty")
	}
	samples := make([]float32, n)
	for i := range n {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(res.Stdout[i*4:]))
	}
	return &Waveform{Samples: samples, SampleRate: info.SampleRate, Channels: info.Channels}, nil
}

// spool writes data to a temporary file carrying ext so ffmpeg can pick
// the demuxer. The caller removes the file.
func spool(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "voxscribe-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
