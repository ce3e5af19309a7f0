package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mewada-madhusudan/cuddly-disco/internal/identity"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user's profile",
	RunE:  runWhoami,
}

func init() {
	RootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c := newClient()

	var profile identity.Profile
	if err := c.get(cmd.Context(), "/api/user", &profile); err != nil {
		return err
	}

	fmt.Printf("SID:         %s\n", profile.Details.SID)
	fmt.Printf("Name:        %s\n", profile.Details.DisplayName)
	if profile.Details.Email != "" {
		fmt.Printf("Email:       %s\n", profile.Details.Email)
	}
	if profile.Details.JobTitle != "" {
		fmt.Printf("Title:       %s\n", profile.Details.JobTitle)
	}
	if profile.Details.BuildingName != "" {
		fmt.Printf("Building:    %s\n", profile.Details.BuildingName)
	}
	if profile.Details.CostCenterID != "" {
		fmt.Printf("Cost center: %s\n", profile.Details.CostCenterID)
	}
	fmt.Printf("Source:      %s\n", profile.Source)
	fmt.Printf("GFBM:        %v\n", profile.IsGFBM)

	var status identity.AdminStatus
	if err := c.get(cmd.Context(), "/api/admin/status", &status); err != nil {
		return err
	}
	if status.IsAdmin {
		fmt.Printf("Admin for:   %s\n", strings.Join(status.ManagedLOBs, ", "))
	}
	return nil
}
