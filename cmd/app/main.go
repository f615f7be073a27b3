package main

import (
	"fmt"
	"os"

	"YiJinJing/internal/di"
	"YiJinJing/pkg/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "app",
		Short:         "Yi Jin Jing simulated trading dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSimulateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket dashboard service",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadWithEnv(path)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}

			// Wire DI: Initialize all dependencies
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}

			// Run application (blocks until signal)
			return app.Run()
		},
	}
	cmd.Flags().StringP("config", "c", "config/config.yaml", "config file path")
	return cmd
}
