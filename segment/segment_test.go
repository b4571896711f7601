package segment

import (
	"context"
	"errors"
	"testing"
)

// scripted returns canned transcripts keyed by chunk length.
type scripted struct {
	text  map[int]string
	fail  map[int]bool
	calls int
}

func (s *scripted) Transcribe(_ context.Context, samples []float64, _ int) (string, error) {
	s.calls++
	if s.fail[len(samples)] {
		return "", errors.New("asr down")
	}
	return s.text[len(samples)], nil
}

func chunks(lengths ...int) [][]float64 {
	out := make([][]float64, len(lengths))
	for i, n := range lengths {
		out[i] = make([]float64, n)
	}
	return out
}

func TestSelectNoChunks(t *testing.T) {
	if got := Select(context.Background(), nil, 16000, &scripted{}); got != nil {
		t.Fatalf("got %d samples, want nil", len(got))
	}
}

func TestSelectLongestWithoutTranscriber(t *testing.T) {
	got := Select(context.Background(), chunks(10, 30, 30, 20), 16000, nil)
	if len(got) != 30 {
		t.Fatalf("got chunk of %d samples, want 30", len(got))
	}
}

func TestSelectMostWords(t *testing.T) {
	tr := &scripted{text: map[int]string{
		10: "one two",
		20: "one two three four",
		30: "one two three four",
		40: "one",
	}}
	cs := chunks(10, 20, 30, 40)
	got := Select(context.Background(), cs, 16000, tr)
	if len(got) != 20 {
		t.Fatalf("got chunk of %d samples, want first four-word chunk (20)", len(got))
	}
	if tr.calls != len(cs) {
		t.Fatalf("transcribed %d chunks, want %d", tr.calls, len(cs))
	}
}

func TestSelectSkipsFailures(t *testing.T) {
	tr := &scripted{
		text: map[int]string{10: "a", 20: "a b c"},
		fail: map[int]bool{20: true},
	}
	if got := Select(context.Background(), chunks(10, 20), 16000, tr); len(got) != 10 {
		t.Fatalf("got chunk of %d samples, want 10", len(got))
	}
}

func TestSelectDefaultsToFirst(t *testing.T) {
	tr := &scripted{fail: map[int]bool{10: true, 20: true}}
	if got := Select(context.Background(), chunks(10, 20), 16000, tr); len(got) != 10 {
		t.Fatalf("got chunk of %d samples, want first chunk", len(got))
	}
}
