package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/marketlens/internal/config"
	"github.com/zulandar/marketlens/internal/viewer"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		experiment string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only viewer API server",
		Long:  "Launches an HTTP server exposing experiment listings, participant rosters, and the reconstructed marketplace report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, experiment)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "marketlens.yaml", "path to Marketlens config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "experiment to serve (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, experiment string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return viewer.Start(ctx, viewer.StartOpts{
		Config:     cfg,
		Port:       port,
		Experiment: experiment,
		Out:        cmd.OutOrStdout(),
	})
}
