package catalog

import (
	"log/slog"
	"strings"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
)

// Column names of the catalog list.
const (
	ColExpired      = "Expired"
	ColName         = "Solution_Name"
	ColDescription  = "Description"
	ColExePath      = "ApplicationExePath"
	ColEnvironment  = "Status"
	ColReleaseDate  = "Release_Date"
	ColValidity     = "Validity_Period"
	ColVersion      = "Version_Number"
	ColRegistration = "UMAT_IAHub_ID"
	ColAccess       = "SIDs_For_SolutionAccess"
	ColEpicID       = "Solution_Item_Epic_ID"
	ColLOB          = "Line_of_Business"
	ColLeadID       = "AAMI_Lead_ID"
	ColDeveloper    = "Developer_By"
	ColTechnology   = "TechnologyUsed"
)

// Deployment environments of a catalog entry.
const (
	EnvUAT  = "UAT"
	EnvBETA = "BETA"
	EnvPROD = "PROD"
)

// AccessEveryone marks an entry visible to all users.
const AccessEveryone = "everyone"

// Entry is one catalog row. Release date, validity and version stay strings;
// whether they parse is decided at rule evaluation time so a malformed value
// degrades a single check instead of dropping the row.
type Entry struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	ExePath        string   `yaml:"exePath" json:"exePath"`
	Environment    string   `yaml:"environment" json:"environment"`
	ReleaseDate    string   `yaml:"releaseDate" json:"releaseDate"`
	ValidityDays   string   `yaml:"validityDays" json:"validityDays"`
	Version        string   `yaml:"version" json:"version"`
	RegistrationID string   `yaml:"registrationId" json:"registrationId"`
	Access         []string `yaml:"access" json:"access"`
	EpicID         string   `yaml:"epicId,omitempty" json:"epicId,omitempty"`
	LOB            string   `yaml:"lob,omitempty" json:"lob,omitempty"`
	LeadID         string   `yaml:"leadId,omitempty" json:"leadId,omitempty"`
	Developer      string   `yaml:"developer,omitempty" json:"developer,omitempty"`
	Technology     string   `yaml:"technology,omitempty" json:"technology,omitempty"`
}

// Registered reports whether the entry carries an IA Hub registration id.
func (e Entry) Registered() bool {
	return e.RegistrationID != ""
}

// ParseEntry builds an Entry from a list row. Rows without a solution name
// are rejected; every other column is normalized to "" when missing.
func ParseEntry(row listsvc.Row) (Entry, error) {
	name := strings.TrimSpace(row.Field(ColName))
	if name == "" {
		return Entry{}, microerror.Maskf(invalidEntryError, "row %s has no solution name", row.ID)
	}

	return Entry{
		ID:             row.ID,
		Name:           name,
		Description:    row.Field(ColDescription),
		ExePath:        row.Field(ColExePath),
		Environment:    strings.ToUpper(strings.TrimSpace(row.Field(ColEnvironment))),
		ReleaseDate:    strings.TrimSpace(row.Field(ColReleaseDate)),
		ValidityDays:   strings.TrimSpace(row.Field(ColValidity)),
		Version:        strings.TrimSpace(row.Field(ColVersion)),
		RegistrationID: strings.TrimSpace(row.Field(ColRegistration)),
		Access:         SplitAccess(row.Field(ColAccess)),
		EpicID:         row.Field(ColEpicID),
		LOB:            row.Field(ColLOB),
		LeadID:         row.Field(ColLeadID),
		Developer:      row.Field(ColDeveloper),
		Technology:     row.Field(ColTechnology),
	}, nil
}

// ParseEntries converts list rows to entries, skipping invalid rows with a log.
func ParseEntries(logger *slog.Logger, rows []listsvc.Row) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := ParseEntry(row)
		if err != nil {
			logger.Warn("skipping catalog row", "row", row.ID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// SplitAccess splits the access column into lower-cased user ids.
func SplitAccess(access string) []string {
	parts := strings.Split(access, ";")
	sids := make([]string, 0, len(parts))
	for _, part := range parts {
		sid := strings.ToLower(strings.TrimSpace(part))
		if sid != "" {
			sids = append(sids, sid)
		}
	}
	return sids
}

// JoinAccess renders an access list back into the column format.
func JoinAccess(sids []string) string {
	return strings.Join(sids, ";")
}

// VisibleTo returns the entries the given user may see: rows granted to
// everyone plus rows whose access list contains the lower-cased user id.
func VisibleTo(entries []Entry, sid string) []Entry {
	sid = strings.ToLower(strings.TrimSpace(sid))
	visible := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.VisibleTo(sid) {
			visible = append(visible, entry)
		}
	}
	return visible
}

// VisibleTo reports whether the given lower-cased user id may see this entry.
func (e Entry) VisibleTo(sid string) bool {
	for _, granted := range e.Access {
		if granted == AccessEveryone || granted == sid {
			return true
		}
	}
	return false
}

// FilterByName returns the entries whose name contains the query,
// case-insensitively. An empty query returns all entries.
func FilterByName(entries []Entry, query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}

	matched := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), query) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// Columns returns the canonical column set of catalog results. An empty sync
// result still reports these so consumers can render an empty table.
func Columns() []string {
	return []string{
		ColExpired,
		ColName,
		ColDescription,
		ColExePath,
		ColEnvironment,
		ColReleaseDate,
		ColValidity,
		ColVersion,
		ColRegistration,
	}
}
