package admin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
)

// Validation kinds applied to form values.
const (
	kindText     = "text"
	kindDropdown = "dropdown"
	kindVersion  = "version"
	kindDate     = "date"
	kindPath     = "path"
)

// Field describes one catalog form field and how to validate it.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
}

// LOBs are the lines of business a solution can belong to.
var LOBs = []string{"AAMI", "CIB-GEFT", "CIB-MS&OPS", "CORP", "FFCGEFSA", "GFSM CPN", "GFSM STO"}

// Environments a solution can be released to.
var Environments = []string{"UAT", "BETA", "PROD"}

// Fields is the catalog entry form, in display order.
var Fields = []Field{
	{Name: catalog.ColEpicID, Label: "JIRA ID", Prompt: "Enter the JIRA ID", Kind: kindText, Required: true},
	{Name: catalog.ColName, Label: "Application Name", Prompt: "Enter the name of the application", Kind: kindText, Required: true},
	{Name: catalog.ColDescription, Label: "Application Description", Prompt: "Enter a brief description", Kind: kindText, Required: true},
	{Name: catalog.ColLOB, Label: "Line of Business", Prompt: "Select line or department", Options: LOBs, Kind: kindDropdown},
	{Name: catalog.ColLeadID, Label: "IAMID ID", Prompt: "Enter the IAMID registration id", Kind: kindText},
	{Name: catalog.ColVersion, Label: "Version", Prompt: "Enter application version", Kind: kindVersion, Required: true},
	{Name: catalog.ColReleaseDate, Label: "Release Date", Prompt: "Enter last update date (YYYY-MM-DD)", Kind: kindDate, Required: true},
	{Name: catalog.ColEnvironment, Label: "Release Environment", Prompt: "Enter application release status", Options: Environments, Kind: kindDropdown},
	{Name: catalog.ColExePath, Label: "Executable Path", Prompt: "Enter the full path to the executable", Kind: kindPath, Required: true},
	{Name: catalog.ColDeveloper, Label: "Developer", Prompt: "Enter Developer's SID", Kind: kindText, Required: true},
	{Name: catalog.ColTechnology, Label: "Technology Stack", Prompt: "Enter technology stack details", Kind: kindText, Required: true},
}

// Problems lists everything wrong with a proposed solution row. An empty
// slice means the row is valid. Unknown columns are rejected so typos do not
// silently create new list columns.
func Problems(fields map[string]string) []string {
	problems := unknownFields(fields)

	for _, f := range Fields {
		problems = append(problems, checkField(f, fields[f.Name])...)
	}
	return problems
}

// PartialProblems validates only the fields present in a partial update.
// A present-but-empty required field is still a problem.
func PartialProblems(fields map[string]string) []string {
	problems := unknownFields(fields)

	for _, f := range Fields {
		if _, present := fields[f.Name]; !present {
			continue
		}
		problems = append(problems, checkField(f, fields[f.Name])...)
	}
	return problems
}

func unknownFields(fields map[string]string) []string {
	known := make(map[string]struct{}, len(Fields))
	for _, f := range Fields {
		known[f.Name] = struct{}{}
	}

	var problems []string
	for name := range fields {
		if _, ok := known[name]; !ok && name != catalog.ColValidity && name != catalog.ColAccess {
			problems = append(problems, fmt.Sprintf("unknown field %q", name))
		}
	}
	return problems
}

func checkField(f Field, raw string) []string {
	value := strings.TrimSpace(raw)

	if value == "" {
		if f.Required {
			return []string{fmt.Sprintf("%s is required", f.Label)}
		}
		return nil
	}

	switch f.Kind {
	case kindDropdown:
		if !contains(f.Options, value) {
			return []string{fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", "))}
		}
	case kindVersion:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return []string{fmt.Sprintf("%s must be a number", f.Label)}
		}
	case kindDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return []string{fmt.Sprintf("%s must be a date in YYYY-MM-DD form", f.Label)}
		}
	case kindPath:
		if !strings.ContainsAny(value, `/\`) {
			return []string{fmt.Sprintf("%s must be a full path", f.Label)}
		}
	}
	return nil
}

// Validate checks a complete solution row against the form rules.
func Validate(fields map[string]string) error {
	if problems := Problems(fields); len(problems) > 0 {
		return microerror.Maskf(validationError, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidatePartial checks the provided subset of fields against the form rules.
func ValidatePartial(fields map[string]string) error {
	if problems := PartialProblems(fields); len(problems) > 0 {
		return microerror.Maskf(validationError, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
