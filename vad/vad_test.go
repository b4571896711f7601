package vad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/maastricht-university/edmo-voice/audio"
)

const sr = 16000

// frames builds a waveform of 30 ms frames, loud where pattern is true.
func frames(pattern ...bool) audio.Waveform {
	size := sr * 30 / 1000
	out := make([]float64, 0, size*len(pattern))
	for _, loud := range pattern {
		for i := 0; i < size; i++ {
			v := 0.0
			if loud {
				v = 0.5 * math.Sin(2*math.Pi*220*float64(i)/sr)
			}
			out = append(out, v)
		}
	}
	return audio.Waveform{Samples: out, SampleRate: sr}
}

func TestChunkGroupsContiguousSpeech(t *testing.T) {
	d, err := NewEnergyDetector(3)
	if err != nil {
		t.Fatal(err)
	}
	w := frames(false, true, true, false, false, true)
	chunks, err := Chunk(context.Background(), w, d, 30)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if len(chunks[0]) != 2*480 || len(chunks[1]) != 480 {
		t.Fatalf("chunk lengths %d, %d", len(chunks[0]), len(chunks[1]))
	}
}

func TestChunkDropsPartialTail(t *testing.T) {
	d, _ := NewEnergyDetector(0)
	w := frames(true)
	w.Samples = append(w.Samples, 0.5, 0.5, 0.5)
	chunks, err := Chunk(context.Background(), w, d, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || len(chunks[0]) != 480 {
		t.Fatalf("chunks = %d, want one 480-sample chunk", len(chunks))
	}
}

func TestChunkSilenceAndEmpty(t *testing.T) {
	d, _ := NewEnergyDetector(2)
	for _, w := range []audio.Waveform{frames(false, false), {SampleRate: sr}} {
		chunks, err := Chunk(context.Background(), w, d, 30)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunks) != 0 {
			t.Fatalf("expected no chunks, got %d", len(chunks))
		}
	}
}

type failing struct{}

func (failing) IsSpeech([]byte, int) (bool, error) { return false, errors.New("boom") }

func TestChunkDetectorError(t *testing.T) {
	if _, err := Chunk(context.Background(), frames(true), failing{}, 30); err == nil {
		t.Fatal("expected detector error")
	}
}

func TestAggressivenessRange(t *testing.T) {
	for _, a := range []int{-1, 4} {
		if _, err := NewEnergyDetector(a); err == nil {
			t.Errorf("aggressiveness %d accepted", a)
		}
	}
}

func TestIsSpeechRejectsOddFrame(t *testing.T) {
	d, _ := NewEnergyDetector(1)
	if _, err := d.IsSpeech([]byte{1, 2, 3}, sr); err == nil {
		t.Fatal("expected error for odd-length frame")
	}
}
