// Command pubstatic builds, inspects and serves pubstatic sites.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/pubstatic"
	"github.com/eringen/pubstatic/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "pubstatic",
		Short:         "A static blog generator built with Go and templ",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./"+pubstatic.DefaultConfigPath+")")

	root.AddCommand(
		newBuildCmd(&cfgFile),
		newPlanCmd(&cfgFile),
		newServeCmd(&cfgFile),
		newNewCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the pubstatic version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "pubstatic %s\n", version)
			},
		},
	)
	return root
}

// loadApp reads .env and the site config and returns an App using the
// bundled views.
func loadApp(cfgFile string, opts ...pubstatic.Option) (*pubstatic.App, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := pubstatic.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	opts = append([]pubstatic.Option{
		pubstatic.WithLogger(logger),
		pubstatic.WithViews(views.Default(cfg)),
	}, opts...)
	return pubstatic.New(cfg, opts...), nil
}
