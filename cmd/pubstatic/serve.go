package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site",
		Long: `The serve command serves the output directory of the last build, with
404.html for unknown paths and Prometheus metrics on /metrics. It does not
rebuild; run build first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*cfgFile)
			if err != nil {
				return err
			}
			defer app.Close()
			if addr != "" {
				app.Config.Addr = addr
			}
			return app.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
