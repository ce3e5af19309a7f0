package catalog

import (
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/giantswarm/microerror"
)

// TileState is the lifecycle state a catalog entry presents to the user.
type TileState int

const (
	StateInstall TileState = iota
	StateLaunch
	StateUpdate
	StateExpired
)

// String returns the state name.
func (s TileState) String() string {
	switch s {
	case StateLaunch:
		return "Launch"
	case StateUpdate:
		return "Update"
	case StateExpired:
		return "Expired"
	default:
		return "Install"
	}
}

// Rules evaluates entry lifecycle state. Malformed dates and versions never
// fail an evaluation: expiry checks fail open to not-expired and update checks
// to no-update, with the malformed value logged.
type Rules struct {
	logger *slog.Logger
}

// NewRules creates a lifecycle rules evaluator.
func NewRules(logger *slog.Logger) *Rules {
	return &Rules{logger: logger}
}

// IsExpired reports whether the entry's validity window has passed at the
// given instant. Entries whose release date or validity period do not parse
// are treated as not expired.
func (r *Rules) IsExpired(e Entry, now time.Time) bool {
	expiry, err := ExpiryOf(e)
	if err != nil {
		r.logger.Warn("cannot determine expiry, treating entry as not expired", "name", e.Name, "error", err)
		return false
	}
	return now.After(expiry)
}

// DaysRemaining returns the whole days until the entry expires, or 0 when the
// expiry cannot be determined. Negative values mean the entry is past expiry.
func (r *Rules) DaysRemaining(e Entry, now time.Time) int {
	expiry, err := ExpiryOf(e)
	if err != nil {
		return 0
	}
	return int(expiry.Sub(now).Hours() / 24)
}

// UpdateAvailable reports whether the published version is newer than the
// installed one. installedVersion is the local version marker value; an empty
// value on an installed app means the marker is missing, which counts as
// needing an update. Versions compare as floats; malformed versions are
// logged and report no update.
func (r *Rules) UpdateAvailable(e Entry, installed bool, installedVersion string) bool {
	if !installed || e.Version == "" {
		return false
	}
	if installedVersion == "" {
		return true
	}

	published, err := ParseVersion(e.Version)
	if err != nil {
		r.logger.Warn("skipping update check", "name", e.Name, "error", err)
		return false
	}
	local, err := ParseVersion(installedVersion)
	if err != nil {
		r.logger.Warn("skipping update check", "name", e.Name, "error", err)
		return false
	}

	return published > local
}

// StateFor resolves the entry's tile state in priority order: expired beats
// update beats launch beats install.
func (r *Rules) StateFor(e Entry, now time.Time, installed bool, installedVersion string) TileState {
	if r.IsExpired(e, now) {
		return StateExpired
	}
	if r.UpdateAvailable(e, installed, installedVersion) {
		return StateUpdate
	}
	if installed {
		return StateLaunch
	}
	return StateInstall
}

// ButtonLabel returns the action label shown for an entry in the given state.
func ButtonLabel(e Entry, state TileState) string {
	switch state {
	case StateExpired:
		if e.Environment == EnvPROD {
			return "Application Expired"
		}
		return "UAT Period Expired"
	case StateUpdate:
		return "Update"
	case StateLaunch:
		return "Launch"
	default:
		return "Install"
	}
}

// ExpiredNote returns the explanation shown for an expired entry.
func ExpiredNote(e Entry) string {
	if e.Environment == EnvBETA && !e.Registered() {
		return "Kindly register the application at IAHub portal."
	}
	return "Application has expired. Contact Think_STO@restricted.chase.com for renewal."
}

// Sort orders entries for display: current entries first, expired last,
// names ascending within each group.
func (r *Rules) Sort(entries []Entry, now time.Time) {
	type keyed struct {
		entry   Entry
		expired bool
	}

	keys := make([]keyed, len(entries))
	for i, entry := range entries {
		keys[i] = keyed{entry: entry, expired: r.IsExpired(entry, now)}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].expired != keys[j].expired {
			return !keys[i].expired
		}
		return keys[i].entry.Name < keys[j].entry.Name
	})

	for i, k := range keys {
		entries[i] = k.entry
	}
}

// ExpiryOf computes the instant the entry expires: release date plus the
// validity period in days.
func ExpiryOf(e Entry) (time.Time, error) {
	release, err := ParseReleaseDate(e.ReleaseDate)
	if err != nil {
		return time.Time{}, microerror.Mask(err)
	}

	days, err := strconv.ParseFloat(e.ValidityDays, 64)
	if err != nil {
		return time.Time{}, microerror.Maskf(malformedDateError, "validity period %q does not parse", e.ValidityDays)
	}

	return release.Add(time.Duration(days * float64(24*time.Hour))), nil
}

// releaseDateLayouts are the accepted release date formats, tried in order.
var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseReleaseDate parses a release date column value.
func ParseReleaseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, microerror.Maskf(malformedDateError, "release date is empty")
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, microerror.Maskf(malformedDateError, "release date %q does not parse", value)
}

// ParseVersion parses a version column or marker value as a float.
func ParseVersion(value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, microerror.Maskf(malformedVersionError, "version %q does not parse", value)
	}
	return v, nil
}
