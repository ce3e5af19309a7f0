package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/output"
)

var searchQuery string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the application catalog",
	Long: `List the applications the catalog offers you, with their install
state and the action each tile would take.

Examples:
  pslvctl list
  pslvctl list --search budget`,
	RunE: runList,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Sync the catalog with the list service now",
	RunE:  runRefresh,
}

func init() {
	listCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "filter applications by name")
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(refreshCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	path := "/api/catalog"
	if searchQuery != "" {
		path += "?q=" + url.QueryEscape(searchQuery)
	}

	var res catalogResponse
	if err := newClient().get(cmd.Context(), path, &res); err != nil {
		return err
	}

	output.CatalogTable(os.Stdout, res.Entries)

	if res.Source == string(catalog.SourceSnapshot) {
		fmt.Printf("\nServed from the local snapshot: %s\n", res.Reason)
	}
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	spinner := output.NewSpinner("Refreshing catalog")
	spinner.Start()

	var res refreshResponse
	if err := newClient().post(cmd.Context(), "/api/catalog/refresh", nil, &res); err != nil {
		spinner.Stop()
		return err
	}

	if res.Source == string(catalog.SourceRemote) {
		spinner.StopWithMessage(fmt.Sprintf("Catalog refreshed, %d entries from the list service", res.Entries))
	} else {
		spinner.StopWithMessage(fmt.Sprintf("List service unavailable, kept %d entries from the local snapshot (%s)", res.Entries, res.Reason))
	}
	return nil
}
