package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/eringen/pubstatic"
)

func newPlanCmd(cfgFile *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the pages a build would create as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()

			pages, err := app.Plan(cmd.Context(), pubstatic.BuildOptions{Force: force})
			if err != nil {
				return err
			}
			if pages == nil {
				pages = []pubstatic.Page{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pages)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-ingest files even when unchanged")
	return cmd
}
