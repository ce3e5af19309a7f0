package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// agentURL is the base URL of the agent, shared by every command.
var agentURL string

// RootCmd is the base command for pslvctl.
var RootCmd = &cobra.Command{
	Use:   "pslvctl",
	Short: "Command line client for the pslv launcher agent",
	Long: `pslvctl talks to a running pslv-agent over its local API and drives
the same catalog, install and administration operations the desktop
shell uses.

Examples:
  pslvctl list
  pslvctl install "Budget Tracker"
  pslvctl launch "Budget Tracker"
  pslvctl history --limit 5
  pslvctl admin solutions`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.SuggestionsMinimumDistance = 2
	RootCmd.PersistentFlags().StringVar(&agentURL, "agent", defaultAgentURL(),
		"base URL of the pslv-agent")
}

// defaultAgentURL resolves the agent address from the environment, falling
// back to the agent's default listen address.
func defaultAgentURL() string {
	if url := os.Getenv("PSLV_AGENT_URL"); url != "" {
		return url
	}
	return "http://127.0.0.1:3000"
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
