package clients

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/maastricht-university/edmo-voice/audio"
)

const transcribePrompt = "Transcribe the speech in this audio clip verbatim. " +
	"Output ONLY the transcript, nothing else. Output an empty response if nobody speaks."

// GeminiTranscriber asks a Gemini model to transcribe inline WAV audio.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

func NewGeminiTranscriber(ctx context.Context, apiKey, model string) (*GeminiTranscriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiTranscriber{client: client, model: model}, nil
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	wav, err := audio.EncodeWAV(audio.Waveform{Samples: samples, SampleRate: sampleRate})
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(wav, "audio/wav"),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
