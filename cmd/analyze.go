package cmd

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/edmo-voice/config"
	"github.com/maastricht-university/edmo-voice/orchestrator"
)

func newAnalyzeCmd(o *rootOptions) *cobra.Command {
	var out, userID string
	cmd := &cobra.Command{
		Use:   "analyze <audio.wav>",
		Short: "Analyze a recording and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, closeDeps := newPipeline(ctx, o.conf)
			defer closeDeps()

			res, err := p.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			switch {
			case out != "":
				if err := orchestrator.WriteJSON(out, res); err != nil {
					return err
				}
			case o.conf.Paths.Outputs != "":
				sid, path, err := orchestrator.Persist(o.conf.Paths.Outputs, args[0], res)
				if err != nil {
					logrus.WithError(err).Warn("could not persist session")
					break
				}
				logrus.WithFields(logrus.Fields{"session": sid, "path": path}).Info("session written")
			}

			if userID != "" {
				saveForUser(ctx, o.conf, userID, res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the result JSON to this file")
	cmd.Flags().StringVar(&userID, "user-id", "", "store the result for this user in the configured sink")
	return cmd
}

// saveForUser stores res in the configured sink. Sink problems are logged and
// never fail the command.
func saveForUser(ctx context.Context, c *cfg.Root, userID string, res orchestrator.Result) {
	log := logrus.WithField("user_id", userID)
	sink, err := openSink(c)
	if err != nil {
		log.WithError(err).Warn("result sink unavailable")
		return
	}
	if sink == nil {
		log.Warn("no result sink configured, not saving")
		return
	}
	defer sink.Close()

	key, err := sink.Save(ctx, userID, res)
	if err != nil {
		log.WithError(err).Warn("saving result failed")
		return
	}
	log.WithField("key", key).Info("result saved")
}
