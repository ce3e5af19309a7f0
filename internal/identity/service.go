package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
	"github.com/mewada-madhusudan/cuddly-disco/internal/resilience"
)

// UserDetails holds the signed-in user's directory profile.
type UserDetails struct {
	SID          string `json:"sid"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	JobTitle     string `json:"jobTitle"`
	BuildingName string `json:"buildingName"`
	CostCenterID string `json:"costCenterId"`
}

// Sources of a resolved profile.
const (
	SourceUserbase  = "userbase"
	SourcePhonebook = "phonebook"
	SourceFallback  = "fallback"
)

// Profile is the identity summary served to clients.
type Profile struct {
	Details UserDetails `json:"details"`
	Source  string      `json:"source"`
	IsGFBM  bool        `json:"isGfbm"`
}

// AdminStatus describes a user's administrative rights.
type AdminStatus struct {
	IsAdmin     bool     `json:"isAdmin"`
	ManagedLOBs []string `json:"managedLobs"`
}

// Config holds Service configuration.
type Config struct {
	Lists          listsvc.Service
	Phonebook      PhonebookInterface
	UserbaseList   string
	CostCenterList string
	AdminsList     string
	UserSID        string
	Logger         *slog.Logger
}

// Service resolves who the current user is. The userbase list is the primary
// source; unknown users are looked up in the phonebook and registered.
type Service struct {
	lists          listsvc.Service
	phonebook      PhonebookInterface
	userbaseList   string
	costCenterList string
	adminsList     string
	userSID        string
	logger         *slog.Logger
}

// NewService creates an identity service.
func NewService(cfg Config) *Service {
	return &Service{
		lists:          cfg.Lists,
		phonebook:      cfg.Phonebook,
		userbaseList:   cfg.UserbaseList,
		costCenterList: cfg.CostCenterList,
		adminsList:     cfg.AdminsList,
		userSID:        cfg.UserSID,
		logger:         cfg.Logger,
	}
}

// Lookup resolves the current user's profile. It never fails outright: when
// both the userbase and the phonebook are unreachable a placeholder profile
// carrying only the SID is returned so the launcher stays usable.
func (s *Service) Lookup(ctx context.Context) (UserDetails, string) {
	primary := func(ctx context.Context) (UserDetails, error) {
		return s.fromUserbase(ctx)
	}
	fallback := func(ctx context.Context) (UserDetails, error) {
		return s.fromPhonebook(ctx)
	}

	result, err := resilience.Fetch(ctx, s.logger, "user profile", primary, fallback)
	if err != nil {
		s.logger.Warn("user profile unavailable, using placeholder", "sid", s.userSID, "error", err)
		return UserDetails{SID: s.userSID}, SourceFallback
	}

	if result.Fallback {
		// First sighting of this user; register them so the next start
		// skips the phonebook
		s.register(ctx, result.Value)
		return result.Value, SourcePhonebook
	}
	return result.Value, SourceUserbase
}

// Profile resolves the user's details plus their GFBM membership.
func (s *Service) Profile(ctx context.Context) Profile {
	details, source := s.Lookup(ctx)
	return Profile{
		Details: details,
		Source:  source,
		IsGFBM:  s.IsGFBM(ctx, details.CostCenterID),
	}
}

// IsGFBM reports whether the cost center belongs to the GFBM organization.
// Lookup failures count as not a member.
func (s *Service) IsGFBM(ctx context.Context, costCenterID string) bool {
	if costCenterID == "" {
		return false
	}

	var rows []listsvc.Row
	op := func() error {
		var err error
		rows, err = s.lists.Items(ctx, s.costCenterList, nil)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "cost center fetch", op); err != nil {
		s.logger.Warn("failed to fetch cost centers", "error", err)
		return false
	}

	for _, row := range rows {
		if row.Field("cost_center_code") == costCenterID {
			return true
		}
	}
	return false
}

// AdminStatus reports whether the user administers any line of business.
// Lookup failures count as not an admin.
func (s *Service) AdminStatus(ctx context.Context) AdminStatus {
	filter := &listsvc.Filter{Column: "sid", Contains: strings.ToLower(s.userSID)}

	var rows []listsvc.Row
	op := func() error {
		var err error
		rows, err = s.lists.Items(ctx, s.adminsList, filter)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "admin status fetch", op); err != nil {
		s.logger.Warn("failed to check admin privileges", "sid", s.userSID, "error", err)
		return AdminStatus{ManagedLOBs: []string{}}
	}

	var lobs []string
	for _, row := range rows {
		if lob := row.Field("lob"); lob != "" {
			lobs = append(lobs, lob)
		}
	}
	if lobs == nil {
		lobs = []string{}
	}

	return AdminStatus{
		IsAdmin:     len(lobs) > 0,
		ManagedLOBs: lobs,
	}
}

// fromUserbase reads the user's row from the userbase list. A missing row is
// an error so the caller falls through to the phonebook.
func (s *Service) fromUserbase(ctx context.Context) (UserDetails, error) {
	filter := &listsvc.Filter{Column: "sid", Contains: strings.ToLower(s.userSID)}

	var rows []listsvc.Row
	op := func() error {
		var err error
		rows, err = s.lists.Items(ctx, s.userbaseList, filter)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "userbase fetch", op); err != nil {
		return UserDetails{}, microerror.Mask(err)
	}

	if len(rows) == 0 {
		return UserDetails{}, microerror.Maskf(notFoundError, "user %s is not in the userbase", s.userSID)
	}

	row := rows[0]
	return UserDetails{
		SID:          row.Field("sid"),
		DisplayName:  row.Field("display_name"),
		Email:        row.Field("email"),
		JobTitle:     row.Field("job_title"),
		BuildingName: row.Field("building_name"),
		CostCenterID: row.Field("cost_center_id"),
	}, nil
}

func (s *Service) fromPhonebook(ctx context.Context) (UserDetails, error) {
	details, err := s.phonebook.Lookup(ctx, s.userSID)
	if err != nil {
		return UserDetails{}, microerror.Mask(err)
	}
	return details, nil
}

// register adds a newly seen user to the userbase. Best effort.
func (s *Service) register(ctx context.Context, details UserDetails) {
	fields := map[string]string{
		"sid":            details.SID,
		"display_name":   details.DisplayName,
		"email":          details.Email,
		"job_title":      details.JobTitle,
		"building_name":  details.BuildingName,
		"cost_center_id": details.CostCenterID,
	}

	op := func() error {
		_, err := s.lists.AddItem(ctx, s.userbaseList, fields)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "userbase registration", op); err != nil {
		s.logger.Warn("could not add user to userbase", "sid", details.SID, "error", err)
		return
	}
	s.logger.Info("user added to userbase", "sid", details.SID)
}
