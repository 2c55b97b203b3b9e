package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/pubstatic"
)

func newBuildCmd(cfgFile *string) *cobra.Command {
	var (
		force       bool
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site into the output directory",
		Long: `The build command ingests the content directory into the node store,
derives a slug for every post, plans one page per post and one per category,
and renders them together with the home page, category index, 404 page,
sitemap.xml and feed.xml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()

			report, buildErr := app.Build(cmd.Context(), pubstatic.BuildOptions{Force: force})
			if metricsFile != "" {
				if err := app.Metrics().WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			if buildErr != nil {
				return buildErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d posts and %d categories into %s\n",
				report.Posts, report.Categories, app.Config.OutputDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-ingest files even when unchanged")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write build metrics in Prometheus textfile format")
	return cmd
}
