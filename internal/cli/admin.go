package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/output"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage catalog solutions in your lines of business",
	Long: `Administer the shared catalog. Every subcommand requires the agent
to recognize you as an administrator of at least one line of business.

Examples:
  pslvctl admin solutions
  pslvctl admin add --name "Ledger Sync" --lob CORP ...
  pslvctl admin grant 12 U123456`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your administrative rights",
	RunE:  runAdminStatus,
}

var adminSolutionsCmd = &cobra.Command{
	Use:   "solutions",
	Short: "List the solutions you manage",
	RunE:  runAdminSolutions,
}

var adminFieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the catalog entry form fields",
	RunE:  runAdminFields,
}

var adminAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a solution to the catalog",
	RunE:  runAdminAdd,
}

var adminEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a solution you manage",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminEdit,
}

var adminAccessCmd = &cobra.Command{
	Use:   "access <id>",
	Short: "Show who can see a solution",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminAccess,
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <id> <sid>...",
	Short: "Grant users access to a solution",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdminGrant,
}

var adminRevokeCmd = &cobra.Command{
	Use:   "revoke <id> <sid>",
	Short: "Revoke a user's access to a solution",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminRevoke,
}

// Solution form flag values, shared by add and edit.
var (
	solutionName        string
	solutionDescription string
	solutionJIRA        string
	solutionLOB         string
	solutionLead        string
	solutionVersion     string
	solutionRelease     string
	solutionEnv         string
	solutionExePath     string
	solutionDeveloper   string
	solutionTechnology  string
	solutionValidity    string
	solutionAccess      string
)

// solutionFlags maps command flags to catalog list columns. Validation is
// the agent's job; the CLI only collects values.
var solutionFlags = []struct {
	flag   string
	column string
	value  *string
	usage  string
}{
	{"name", catalog.ColName, &solutionName, "application name"},
	{"description", catalog.ColDescription, &solutionDescription, "short description"},
	{"jira", catalog.ColEpicID, &solutionJIRA, "JIRA epic id"},
	{"lob", catalog.ColLOB, &solutionLOB, "line of business"},
	{"lead", catalog.ColLeadID, &solutionLead, "IAMID registration id"},
	{"app-version", catalog.ColVersion, &solutionVersion, "application version"},
	{"release-date", catalog.ColReleaseDate, &solutionRelease, "release date (YYYY-MM-DD)"},
	{"environment", catalog.ColEnvironment, &solutionEnv, "release environment (UAT, BETA or PROD)"},
	{"exe-path", catalog.ColExePath, &solutionExePath, "path to the executable on the deployment share"},
	{"developer", catalog.ColDeveloper, &solutionDeveloper, "developer SID"},
	{"technology", catalog.ColTechnology, &solutionTechnology, "technology stack"},
	{"validity", catalog.ColValidity, &solutionValidity, "validity period in days"},
	{"access", catalog.ColAccess, &solutionAccess, "semicolon separated SIDs, or everyone"},
}

func init() {
	registerSolutionFlags(adminAddCmd)
	registerSolutionFlags(adminEditCmd)

	adminCmd.AddCommand(adminStatusCmd)
	adminCmd.AddCommand(adminSolutionsCmd)
	adminCmd.AddCommand(adminFieldsCmd)
	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminEditCmd)
	adminCmd.AddCommand(adminAccessCmd)
	adminCmd.AddCommand(adminGrantCmd)
	adminCmd.AddCommand(adminRevokeCmd)
	RootCmd.AddCommand(adminCmd)
}

func registerSolutionFlags(cmd *cobra.Command) {
	for _, f := range solutionFlags {
		cmd.Flags().StringVar(f.value, f.flag, "", f.usage)
	}
}

// collectSolutionFields returns the columns for the flags that were set.
func collectSolutionFields(cmd *cobra.Command) map[string]string {
	fields := make(map[string]string)
	for _, f := range solutionFlags {
		if cmd.Flags().Changed(f.flag) {
			fields[f.column] = *f.value
		}
	}
	return fields
}

func runAdminStatus(cmd *cobra.Command, args []string) error {
	var status struct {
		IsAdmin     bool     `json:"isAdmin"`
		ManagedLOBs []string `json:"managedLobs"`
	}
	if err := newClient().get(cmd.Context(), "/api/admin/status", &status); err != nil {
		return err
	}

	if !status.IsAdmin {
		fmt.Println("You are not a catalog administrator.")
		return nil
	}
	fmt.Printf("You administer: %s\n", strings.Join(status.ManagedLOBs, ", "))
	return nil
}

func runAdminSolutions(cmd *cobra.Command, args []string) error {
	var res solutionsResponse
	if err := newClient().get(cmd.Context(), "/api/admin/solutions", &res); err != nil {
		return err
	}

	output.SolutionsTable(os.Stdout, res.Solutions)
	return nil
}

func runAdminFields(cmd *cobra.Command, args []string) error {
	var res fieldsResponse
	if err := newClient().get(cmd.Context(), "/api/admin/fields", &res); err != nil {
		return err
	}

	for _, f := range res.Fields {
		required := ""
		if f.Required {
			required = " (required)"
		}
		fmt.Printf("%-26s %s%s\n", f.Name, f.Label, required)
		if len(f.Options) > 0 {
			fmt.Printf("%-26s   one of: %s\n", "", strings.Join(f.Options, ", "))
		}
	}
	return nil
}

func runAdminAdd(cmd *cobra.Command, args []string) error {
	fields := collectSolutionFields(cmd)
	if len(fields) == 0 {
		return errors.New("no fields given, see 'pslvctl admin fields' for the form")
	}

	var res mutationResponse
	if err := newClient().post(cmd.Context(), "/api/admin/solutions", fields, &res); err != nil {
		return err
	}

	fmt.Printf("Added solution %s\n", res.ID)
	return nil
}

func runAdminEdit(cmd *cobra.Command, args []string) error {
	fields := collectSolutionFields(cmd)
	if len(fields) == 0 {
		return errors.New("nothing to change, pass at least one field flag")
	}

	var res mutationResponse
	path := "/api/admin/solutions/" + url.PathEscape(args[0])
	if err := newClient().put(cmd.Context(), path, fields, &res); err != nil {
		return err
	}

	fmt.Printf("Updated solution %s\n", res.ID)
	return nil
}

func runAdminAccess(cmd *cobra.Command, args []string) error {
	var res accessResponse
	path := "/api/admin/solutions/" + url.PathEscape(args[0]) + "/access"
	if err := newClient().get(cmd.Context(), path, &res); err != nil {
		return err
	}

	if len(res.Access) == 0 {
		fmt.Printf("Solution %s is visible to no one.\n", res.ID)
		return nil
	}
	fmt.Printf("Solution %s is visible to:\n", res.ID)
	for _, sid := range res.Access {
		fmt.Printf("  %s\n", sid)
	}
	return nil
}

func runAdminGrant(cmd *cobra.Command, args []string) error {
	body := map[string][]string{"sids": args[1:]}

	var res mutationResponse
	path := "/api/admin/solutions/" + url.PathEscape(args[0]) + "/access"
	if err := newClient().post(cmd.Context(), path, body, &res); err != nil {
		return err
	}

	fmt.Printf("Granted access to %d user(s) on solution %s\n", len(args)-1, res.ID)
	return nil
}

func runAdminRevoke(cmd *cobra.Command, args []string) error {
	var res mutationResponse
	path := "/api/admin/solutions/" + url.PathEscape(args[0]) + "/access/" + url.PathEscape(args[1])
	if err := newClient().delete(cmd.Context(), path, &res); err != nil {
		return err
	}

	fmt.Printf("Revoked access for %s on solution %s\n", args[1], res.ID)
	return nil
}
