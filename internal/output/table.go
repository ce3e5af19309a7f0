package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/mewada-madhusudan/cuddly-disco/internal/admin"
	"github.com/mewada-madhusudan/cuddly-disco/internal/api"
	"github.com/mewada-madhusudan/cuddly-disco/internal/store"
	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
)

// ANSI color codes
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// IsColorEnabled returns true when output should be colorized.
// Honors the NO_COLOR convention and disables color for pipes.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps s in the given ANSI code when color is enabled.
func colorize(code, s string) string {
	if !IsColorEnabled() {
		return s
	}
	return code + s + ansiReset
}

// stateColor maps a tile state to its display color.
func stateColor(state string) string {
	switch state {
	case "Launch":
		return ansiGreen
	case "Update":
		return ansiYellow
	case "Expired":
		return ansiRed
	default:
		return ""
	}
}

// CatalogTable renders the catalog tiles the agent returned.
func CatalogTable(w io.Writer, tiles []api.CatalogTile) {
	if len(tiles) == 0 {
		fmt.Fprintln(w, "No applications available.")
		return
	}

	fmt.Fprintf(w, "%-28s %-10s %-12s %-6s %-18s %s\n",
		"NAME", "VERSION", "INSTALLED", "ENV", "LOB", "STATUS")
	fmt.Fprintln(w, strings.Repeat("─", 96))

	installed := 0
	for _, tile := range tiles {
		installedVersion := "-"
		if tile.Installed {
			installed++
			installedVersion = tile.InstalledVersion
			if installedVersion == "" {
				installedVersion = "yes"
			}
		}

		status := tile.Label
		if code := stateColor(tile.State); code != "" {
			status = colorize(code, status)
		}

		fmt.Fprintf(w, "%-28s %-10s %-12s %-6s %-18s %s\n",
			truncate(tile.Name, 28),
			truncate(tile.Version, 10),
			truncate(installedVersion, 12),
			truncate(tile.Environment, 6),
			truncate(tile.LOB, 18),
			status)
	}

	fmt.Fprintf(w, "\n%d application(s), %d installed\n", len(tiles), installed)
}

// InstalledTable renders the local install registry.
func InstalledTable(w io.Writer, apps []*store.InstalledApp) {
	if len(apps) == 0 {
		fmt.Fprintln(w, "No applications installed.")
		return
	}

	fmt.Fprintf(w, "%-28s %-10s %-12s %-16s %s\n",
		"NAME", "VERSION", "STATUS", "INSTALLED", "PATH")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, app := range apps {
		fmt.Fprintf(w, "%-28s %-10s %-12s %-16s %s\n",
			truncate(app.Name, 28),
			truncate(app.Version, 10),
			truncate(app.Status, 12),
			formatRelativeTime(app.InstalledAt),
			truncate(app.InstallPath, 48))
	}
}

// SolutionsTable renders the solutions an administrator manages.
func SolutionsTable(w io.Writer, solutions []admin.Solution) {
	if len(solutions) == 0 {
		fmt.Fprintln(w, "No solutions in your lines of business.")
		return
	}

	fmt.Fprintf(w, "%-6s %-28s %-10s %-6s %-18s %s\n",
		"ID", "NAME", "VERSION", "ENV", "LOB", "ACCESS")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, sol := range solutions {
		access := fmt.Sprintf("%d user(s)", len(sol.Access))
		for _, sid := range sol.Access {
			if sid == "everyone" {
				access = "everyone"
				break
			}
		}

		fmt.Fprintf(w, "%-6s %-28s %-10s %-6s %-18s %s\n",
			truncate(sol.ID, 6),
			truncate(sol.Entry.Name, 28),
			truncate(sol.Entry.Version, 10),
			truncate(sol.Entry.Environment, 6),
			truncate(sol.Entry.LOB, 18),
			access)
	}
}

// SyncHistoryTable renders recent catalog sync outcomes.
func SyncHistoryTable(w io.Writer, records []*store.SyncRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No sync history recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s %-10s %-8s %s\n", "WHEN", "SOURCE", "ENTRIES", "REASON")
	fmt.Fprintln(w, strings.Repeat("─", 70))

	for _, rec := range records {
		reason := rec.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%-20s %-10s %-8d %s\n",
			formatRelativeTime(rec.SyncedAt),
			rec.Source,
			rec.EntryCount,
			truncate(reason, 40))
	}
}

// StorageSummary renders disk usage of the install root.
func StorageSummary(w io.Writer, stats *system.StorageStats) {
	fmt.Fprintf(w, "Install root: %s\n", stats.Path)
	fmt.Fprintf(w, "Disk:         %s used of %s (%d%%), %s free\n",
		formatSize(int64(stats.UsedBytes)),
		formatSize(int64(stats.TotalBytes)),
		stats.UsedPercent,
		formatSize(int64(stats.FreeBytes)))

	if len(stats.Apps) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%-28s %s\n", "NAME", "SIZE")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	for _, app := range stats.Apps {
		fmt.Fprintf(w, "%-28s %s\n", truncate(app.Name, 28), formatSize(app.Bytes))
	}
}

// formatSize formats bytes in human-readable form.
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime formats a timestamp relative to now.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/24/30), "month")
	default:
		return plural(int(d.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate shortens a string to maxLen characters with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
