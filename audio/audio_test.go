package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func tone(freq, seconds, amp float64, rate int) Waveform {
	n := int(seconds * float64(rate))
	s := make([]float64, n)
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return Waveform{Samples: s, SampleRate: rate}
}

func TestNormalizeDoesNotMutate(t *testing.T) {
	w := Waveform{Samples: []float64{0.25, -0.5, 0.1}, SampleRate: SampleRate}
	n := w.Normalize()
	if w.Samples[1] != -0.5 {
		t.Fatalf("input mutated: %v", w.Samples)
	}
	if n.Samples[1] != -1 || n.Samples[0] != 0.5 {
		t.Fatalf("unexpected normalized samples: %v", n.Samples)
	}

	silent := Waveform{Samples: make([]float64, 4), SampleRate: SampleRate}
	if got := silent.Normalize(); got.Peak() != 0 || len(got.Samples) != 4 {
		t.Fatalf("silent normalize: %v", got.Samples)
	}
}

func TestHashDeterministic(t *testing.T) {
	w := tone(440, 0.5, 0.5, SampleRate)
	a, err := Hash(w.Samples, HashSHA1)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, _ := Hash(append([]float64(nil), w.Samples...), HashSHA1)
	if a != b {
		t.Fatalf("same samples hashed differently: %s vs %s", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("sha1 hex length = %d", len(a))
	}

	w.Samples[10] += 0.01
	c, _ := Hash(w.Samples, HashSHA1)
	if c == a {
		t.Fatal("changed samples produced the same hash")
	}

	d, err := Hash(w.Samples, HashBlake2b)
	if err != nil || len(d) != 64 {
		t.Fatalf("blake2b hash = %q, %v", d, err)
	}
	if _, err := Hash(w.Samples, "md5"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	w := tone(440, 1, 0.5, SampleRate)
	if err := SaveWAV(path, w); err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SampleRate != SampleRate || len(got.Samples) != len(w.Samples) {
		t.Fatalf("got %d samples @ %d Hz", len(got.Samples), got.SampleRate)
	}
	for i := 0; i < len(w.Samples); i += 997 {
		if math.Abs(got.Samples[i]-w.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d: got %v want %v", i, got.Samples[i], w.Samples[i])
		}
	}
}

func TestLoadResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone8k.wav")
	if err := SaveWAV(path, tone(200, 1, 0.5, 8000)); err != nil {
		t.Fatalf("SaveWAV: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SampleRate != SampleRate || len(got.Samples) != SampleRate {
		t.Fatalf("resampled to %d samples @ %d Hz", len(got.Samples), got.SampleRate)
	}
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestLoadDownsamplesWithoutAliasing(t *testing.T) {
	cases := []struct {
		name   string
		freq   float64
		lo, hi float64
	}{
		{"above target nyquist", 10000, 0, 0.05},
		{"in band", 1000, 0.95, 1.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tone(tc.freq, 1, 0.5, 44100)
			path := filepath.Join(t.TempDir(), "tone44k.wav")
			if err := SaveWAV(path, in); err != nil {
				t.Fatalf("SaveWAV: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.SampleRate != SampleRate || len(got.Samples) != SampleRate {
				t.Fatalf("resampled to %d samples @ %d Hz", len(got.Samples), got.SampleRate)
			}
			// Skip the edges, where the reflected padding still rings.
			mid := got.Samples[SampleRate/10 : SampleRate-SampleRate/10]
			if ratio := rms(mid) / rms(in.Samples); ratio < tc.lo || ratio > tc.hi {
				t.Fatalf("%v Hz tone kept %.3f of its rms, want [%v, %v]", tc.freq, ratio, tc.lo, tc.hi)
			}
		})
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected open error")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	b, err := EncodeWAV(tone(440, 0.1, 0.5, SampleRate))
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if string(b[:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatalf("bad header %q", b[:12])
	}
	if min := 44 + 2*1600; len(b) < min {
		t.Fatalf("len = %d, want at least %d", len(b), min)
	}
}

func TestPCM16Clips(t *testing.T) {
	b := PCM16([]float64{2, -2, 0})
	if len(b) != 6 {
		t.Fatalf("len = %d", len(b))
	}
	if int16(uint16(b[0])|uint16(b[1])<<8) != 32767 {
		t.Fatal("positive overflow not clipped")
	}
	if int16(uint16(b[2])|uint16(b[3])<<8) != -32767 {
		t.Fatal("negative overflow not clipped")
	}
}

func TestToneModulation(t *testing.T) {
	plain := Tone(440, 1, 0.5, 0)
	if len(plain.Samples) != SampleRate || math.Abs(plain.Peak()-0.5) > 1e-3 {
		t.Fatalf("plain tone: %d samples, peak %v", len(plain.Samples), plain.Peak())
	}
	mod := Tone(440, 1, 0.5, 2)
	if mod.Peak() > plain.Peak() {
		t.Fatalf("modulated peak %v above carrier peak %v", mod.Peak(), plain.Peak())
	}
	if got := Tone(440, -1, 0.5, 0); len(got.Samples) != 0 {
		t.Fatalf("negative duration gave %d samples", len(got.Samples))
	}
}
