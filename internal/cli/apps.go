package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mewada-madhusudan/cuddly-disco/internal/launcher"
	"github.com/mewada-madhusudan/cuddly-disco/internal/output"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
	"github.com/mewada-madhusudan/cuddly-disco/internal/worker"
)

var assumeYes bool

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List locally installed applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		var apps []*store.InstalledApp
		if err := newClient().get(cmd.Context(), "/api/apps/installed", &apps); err != nil {
			return err
		}
		output.InstalledTable(os.Stdout, apps)
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install an application from the catalog",
	Long: `Install an application. The agent copies it from the deployment
share into your install root and registers it locally.

Examples:
  pslvctl install "Budget Tracker"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd.Context(), args[0], "install")
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Update an installed application to the catalog version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd.Context(), args[0], "update")
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Remove an installed application",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

var launchCmd = &cobra.Command{
	Use:   "launch <name>",
	Short: "Start an installed application",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	RootCmd.AddCommand(installedCmd)
	RootCmd.AddCommand(installCmd)
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(uninstallCmd)
	RootCmd.AddCommand(launchCmd)
}

// runTransfer drives an install or update and shows transfer progress from
// the agent's event stream while the request is in flight.
func runTransfer(ctx context.Context, name, action string) error {
	c := newClient()

	verb := "Installing"
	done := "Installed"
	if action == "update" {
		verb = "Updating"
		done = "Updated"
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := output.NewProgress(fmt.Sprintf("%s %s", verb, name))
	go c.watchProgress(watchCtx, name, bar)

	var res worker.Result
	err := c.post(ctx, "/api/apps/"+url.PathEscape(name)+"/"+action, nil, &res)
	cancel()
	if err != nil {
		return err
	}
	bar.Finish()

	if res.Duration != "" {
		fmt.Printf("%s %s %s in %s\n", done, res.App, res.Version, res.Duration)
	} else {
		fmt.Printf("%s %s %s\n", done, res.App, res.Version)
	}
	if res.Path != "" {
		fmt.Printf("  %s\n", res.Path)
	}
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	name := args[0]

	if !assumeYes && !confirmUninstall(name) {
		fmt.Println("Cancelled.")
		return nil
	}

	var res worker.Result
	body := map[string]bool{"confirm": true}
	if err := newClient().post(cmd.Context(), "/api/apps/"+url.PathEscape(name)+"/uninstall", body, &res); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", res.App)
	return nil
}

// confirmUninstall asks the user to confirm removal.
func confirmUninstall(name string) bool {
	fmt.Printf("Remove %s and its files? [y/N]: ", name)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func runLaunch(cmd *cobra.Command, args []string) error {
	name := args[0]

	var res launcher.Result
	if err := newClient().post(cmd.Context(), "/api/apps/"+url.PathEscape(name)+"/launch", nil, &res); err != nil {
		return err
	}

	fmt.Printf("Launched %s (%s)\n", res.App, res.Path)
	if res.Warning != "" {
		fmt.Println(res.Warning)
	}
	return nil
}
