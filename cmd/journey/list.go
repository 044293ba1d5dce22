package main

import (
	"fmt"

	"browser-journey/internal/usecase/journeys"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available journeys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			site := journeys.Site{
				BaseURL:    cfg.BaseURL,
				Brand:      cfg.Brand,
				Location:   cfg.Location,
				Department: cfg.Department,
			}
			for _, j := range journeys.Catalog(site) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", j.Name, j.Factory().Description)
			}
			return nil
		},
	}
}
