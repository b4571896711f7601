package cmd

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/edmo-voice/audio"
	"github.com/maastricht-university/edmo-voice/clients"
	"github.com/maastricht-university/edmo-voice/segment"
	"github.com/maastricht-university/edmo-voice/vad"
)

func newSegmentCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "segment <audio.wav>",
		Short: "Extract the most informative speech segment of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := audio.Load(args[0])
			if err != nil {
				return err
			}
			det, err := vad.NewEnergyDetector(o.conf.VAD.Aggressiveness)
			if err != nil {
				return err
			}
			chunks, err := vad.Chunk(ctx, w, det, o.conf.VAD.FrameMs)
			if err != nil {
				return err
			}

			var tr segment.Transcriber
			if t, closer := newTranscriber(ctx, clients.NewHTTP(), o.conf); t != nil {
				tr = t
				if closer != nil {
					defer closer.Close()
				}
			}
			best := segment.Select(ctx, chunks, w.SampleRate, tr)
			if best == nil {
				return errors.New("no speech found")
			}

			seg := w.WithSamples(best)
			logrus.WithFields(logrus.Fields{
				"chunks":   len(chunks),
				"duration": seg.Duration(),
				"out":      out,
			}).Info("segment selected")
			return audio.SaveWAV(out, seg)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "segment.wav", "output WAV file")
	return cmd
}
