package cmd

import (
	"os"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/edmo-voice/config"
)

func newConfigCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
		// no config is needed to write one
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}
	var out string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Print the default configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return cfg.WriteDefault(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := cfg.WriteDefault(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	initCmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	root.AddCommand(initCmd)
	return root
}
