package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/edmo-voice/audio"
)

func newSynthCmd() *cobra.Command {
	var (
		out                       string
		freq, seconds, amp, modHz float64
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic test tone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := audio.Tone(freq, seconds, amp, modHz)
			if err := audio.SaveWAV(out, w); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"out": out, "freq": freq, "seconds": seconds}).Info("test tone written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "test_audio.wav", "output WAV file")
	cmd.Flags().Float64Var(&freq, "freq", 440, "tone frequency in Hz")
	cmd.Flags().Float64Var(&seconds, "seconds", 10, "duration in seconds")
	cmd.Flags().Float64Var(&amp, "amplitude", 0.5, "peak amplitude in (0, 1]")
	cmd.Flags().Float64Var(&modHz, "modulation", 2, "amplitude modulation rate in Hz, 0 for a steady tone")
	return cmd
}
