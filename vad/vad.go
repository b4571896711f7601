// Package vad classifies 16-bit PCM frames as speech or non-speech and groups
// contiguous speech into chunks.
package vad

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/maastricht-university/edmo-voice/audio"
)

// Detector is a frame-level voice-activity classifier working on 16-bit
// little-endian PCM.
type Detector interface {
	IsSpeech(frame []byte, sampleRate int) (bool, error)
}

// speech RMS level per aggressiveness; higher modes need louder frames.
var thresholds = [...]float64{0.005, 0.008, 0.012, 0.015}

// EnergyDetector is a stateless RMS detector with a fixed aggressiveness.
type EnergyDetector struct {
	threshold float64
}

// NewEnergyDetector returns a detector for aggressiveness 0 (least) to 3
// (most aggressive at rejecting non-speech).
func NewEnergyDetector(aggressiveness int) (*EnergyDetector, error) {
	if aggressiveness < 0 || aggressiveness >= len(thresholds) {
		return nil, fmt.Errorf("vad: aggressiveness %d out of range 0-3", aggressiveness)
	}
	return &EnergyDetector{threshold: thresholds[aggressiveness]}, nil
}

func (d *EnergyDetector) IsSpeech(frame []byte, sampleRate int) (bool, error) {
	if sampleRate <= 0 {
		return false, fmt.Errorf("vad: invalid sample rate %d", sampleRate)
	}
	if len(frame) < 2 || len(frame)%2 != 0 {
		return false, fmt.Errorf("vad: frame of %d bytes is not 16-bit PCM", len(frame))
	}
	return rms(frame) >= d.threshold, nil
}

func rms(frame []byte) float64 {
	n := len(frame) / 2
	sum := 0.0
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(frame[2*i:]))) / 32768
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

// Chunk splits w into frameMs frames, asks d about each one and concatenates
// contiguous speech frames. A trailing partial frame is dropped. A detector
// error aborts chunking.
func Chunk(ctx context.Context, w audio.Waveform, d Detector, frameMs int) ([][]float64, error) {
	if frameMs <= 0 {
		return nil, fmt.Errorf("vad: invalid frame length %d ms", frameMs)
	}
	size := w.SampleRate * frameMs / 1000
	if size <= 0 {
		return nil, nil
	}

	var chunks [][]float64
	var cur []float64
	for start := 0; start+size <= len(w.Samples); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame := w.Samples[start : start+size]
		speech, err := d.IsSpeech(audio.PCM16(frame), w.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("vad frame at %d: %w", start, err)
		}
		if speech {
			cur = append(cur, frame...)
			continue
		}
		if len(cur) > 0 {
			chunks = append(chunks, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks, nil
}
