package clients

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/maastricht-university/edmo-voice/audio"
)

// GoogleTranscriber runs synchronous Cloud Speech recognition on LINEAR16
// audio. Credentials come from the environment as usual for Google clients.
type GoogleTranscriber struct {
	client   *speech.Client
	language string
}

func NewGoogleTranscriber(ctx context.Context, language string) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleTranscriber{client: client, language: language}, nil
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, samples []float64, sampleRate int) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(sampleRate),
			LanguageCode:               g.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.PCM16(samples)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(r.Alternatives[0].Transcript))
		}
	}
	return strings.Join(parts, " "), nil
}

func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}
