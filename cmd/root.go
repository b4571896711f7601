// Package cmd wires the configuration, logging and pipeline into the
// edmo-voice command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/maastricht-university/edmo-voice/config"
)

type rootOptions struct {
	configPath string
	logFormat  string
	logLevel   string

	v    *viper.Viper
	conf *cfg.Root
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "edmo-voice",
		Short:         "Voice emotion and paralinguistic profiling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override pipeline.log_level")

	root.AddCommand(
		newAnalyzeCmd(o),
		newSegmentCmd(o),
		newServeCmd(o),
		newSynthCmd(),
		newConfigCmd(),
	)
	return root
}

func (o *rootOptions) setup() error {
	switch o.logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", o.logFormat)
	}

	o.v = viper.New()
	conf, err := cfg.Load(o.v, o.configPath)
	if err != nil {
		return err
	}
	o.conf = conf

	level := conf.Pipeline.LogLvl
	if o.logLevel != "" {
		level = o.logLevel
	}
	return setLevel(level)
}

func setLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("edmo-voice failed")
		os.Exit(1)
	}
}
