package main

import (
	"fmt"
	"strings"

	"browser-journey/internal/config"
	"browser-journey/internal/infrastructure/env"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "journey",
		Short:         "Runs scripted browser journeys against the careers site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default ./journey.yaml)")
	flags.String("base-url", "", "site root URL")
	flags.Bool("headless", true, "run Chrome without a window")
	flags.Duration("slow-motion", 0, "delay between browser actions")
	flags.Duration("timeout", 0, "default wait for elements and conditions")
	flags.Duration("poll-interval", 0, "resolver poll interval")
	flags.Duration("popup-settle", 0, "how long to wait for popup options")
	flags.Duration("context-wait", 0, "how long to wait for a new tab")
	flags.String("location", "", "location filter value")
	flags.String("department", "", "department filter value")
	flags.String("diagnostics-dir", "", "where failure snapshots go")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-file", "", "optional JSON log file")

	cmd.AddCommand(newRunCmd(opts), newListCmd(opts))
	return cmd
}

// load binds only the flags the user actually set, so unset flags do not
// shadow env and file values with their zero defaults.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	if _, err := env.Load("."); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var bindErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = o.v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	return config.Load(o.v, o.configFile)
}
