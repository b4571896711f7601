// Package segment picks the most informative speech chunk of a clip.
package segment

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Transcriber turns a chunk of samples into text.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error)
}

// Select returns the chunk whose transcript has the most words, the first one
// winning ties. With a nil transcriber the longest chunk is returned instead.
// Chunks that fail to transcribe are skipped; if none produces any words the
// first chunk is returned. Select returns nil for no chunks.
func Select(ctx context.Context, chunks [][]float64, sampleRate int, tr Transcriber) []float64 {
	if len(chunks) == 0 {
		return nil
	}
	if tr == nil {
		return longest(chunks)
	}

	best, most := chunks[0], 0
	for i, c := range chunks {
		text, err := tr.Transcribe(ctx, c, sampleRate)
		if err != nil {
			logrus.WithError(err).WithField("chunk", i).Warn("segment: transcription failed, skipping chunk")
			continue
		}
		if n := len(strings.Fields(text)); n > most {
			best, most = c, n
		}
	}
	return best
}

func longest(chunks [][]float64) []float64 {
	best := chunks[0]
	for _, c := range chunks[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}
