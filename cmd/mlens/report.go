package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/marketlens/internal/config"
	"github.com/zulandar/marketlens/internal/notify"
	"github.com/zulandar/marketlens/internal/pipeline"
	"github.com/zulandar/marketlens/internal/store"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
		doNotify   bool
	)

	cmd := &cobra.Command{
		Use:   "report <experiment>",
		Short: "Compute the analytics report for an experiment",
		Long:  "Reconstructs conversation threads and economic metrics from an experiment's action log and prints the report as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, configPath, args[0], outPath, doNotify)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "marketlens.yaml", "path to Marketlens config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&doNotify, "notify", false, "post a report summary to configured chat channels")
	return cmd
}

func runReport(cmd *cobra.Command, configPath, experiment, outPath string, doNotify bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Storage, experiment)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := pipeline.Run(cmd.Context(), st, pipeline.Options{
		FetchTimeout: cfg.Storage.FetchTimeout(),
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outPath)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if doNotify {
		adapters, err := notify.FromConfig(cfg.Notify)
		if err != nil {
			return err
		}
		if len(adapters) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No notification channels configured.")
			return nil
		}
		notify.PostAll(cmd.Context(), adapters, notify.Summary(experiment, report))
	}
	return nil
}
