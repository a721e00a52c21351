package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/marketlens/internal/config"
	"github.com/zulandar/marketlens/internal/store"
)

func newLogsCmd() *cobra.Command {
	var (
		configPath string
		since      string
		lines      int
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "logs <experiment>",
		Short: "View experiment log entries",
		Long:  "Displays diagnostic log entries recorded during a simulation run, oldest first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, configPath, args[0], since, lines, raw)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "marketlens.yaml", "path to Marketlens config file")
	cmd.Flags().StringVar(&since, "since", "", "only entries after this RFC3339 timestamp")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "maximum number of entries to show (0 = all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw JSON entries")
	return cmd
}

// logEntry is the decoded shape of one log row's Data column.
type logEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func runLogs(cmd *cobra.Command, configPath, experiment, since string, lines int, raw bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var sinceTime time.Time
	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("invalid --since timestamp %q: %w", since, err)
		}
	}

	st, err := store.Open(cfg.Storage, experiment)
	if err != nil {
		return err
	}
	defer st.Close()

	logs, err := st.Logs(cmd.Context(), sinceTime, lines)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, row := range logs {
		if raw {
			fmt.Fprintln(out, row.Data)
			continue
		}
		var entry logEntry
		if err := json.Unmarshal([]byte(row.Data), &entry); err != nil {
			fmt.Fprintf(out, "%s  %s\n", row.CreatedAt.Format(time.RFC3339), row.Data)
			continue
		}
		fmt.Fprintf(out, "%s  %-5s %s\n", row.CreatedAt.Format(time.RFC3339), entry.Level, entry.Message)
	}
	return nil
}
