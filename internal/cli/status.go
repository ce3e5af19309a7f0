package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mewada-madhusudan/cuddly-disco/internal/output"
	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
)

var historyLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent health and system load",
	RunE:  runStatus,
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Show disk usage of the install root",
	RunE:  runStorage,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent catalog sync outcomes",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")

	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(storageCmd)
	RootCmd.AddCommand(historyCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := newClient()

	var health healthResponse
	if err := c.get(cmd.Context(), "/api/health", &health); err != nil {
		return err
	}

	var stats system.Stats
	if err := c.get(cmd.Context(), "/api/system/status", &stats); err != nil {
		return err
	}

	fmt.Printf("Agent:  %s (%s)\n", health.Status, agentURL)
	fmt.Printf("CPU:    %d%%\n", stats.CPU)
	fmt.Printf("Memory: %d%%\n", stats.Memory)
	fmt.Printf("Disk:   %d%%\n", stats.Disk)
	return nil
}

func runStorage(cmd *cobra.Command, args []string) error {
	var stats system.StorageStats
	if err := newClient().get(cmd.Context(), "/api/system/storage", &stats); err != nil {
		return err
	}

	output.StorageSummary(os.Stdout, &stats)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := fmt.Sprintf("/api/sync/history?limit=%d", historyLimit)

	var res historyResponse
	if err := newClient().get(cmd.Context(), path, &res); err != nil {
		return err
	}

	output.SyncHistoryTable(os.Stdout, res.History)
	return nil
}
