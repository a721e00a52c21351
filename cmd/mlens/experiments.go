package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/marketlens/internal/config"
	"github.com/zulandar/marketlens/internal/store"
)

func newExperimentsCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "List stored experiments",
		Long:  "Lists experiment namespaces found in the configured store, with row counts and activity timestamps, most recent first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiments(cmd, configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "marketlens.yaml", "path to Marketlens config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of experiments to list (0 = all)")
	return cmd
}

func runExperiments(cmd *cobra.Command, configPath string, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	infos, err := store.ListExperiments(cfg.Storage, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No experiments found.")
		return nil
	}

	fmt.Fprintf(out, "%-40s %8s %8s %8s %12s\n", "NAME", "AGENTS", "ACTIONS", "LOGS", "LAST ACTIVE")
	for _, info := range infos {
		fmt.Fprintf(out, "%-40s %8d %8d %8d %12s\n",
			info.Name, info.AgentsCount, info.ActionsCount, info.LogsCount,
			formatAge(info.LastActivity))
	}
	return nil
}
