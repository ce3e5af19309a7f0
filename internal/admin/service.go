package admin

import (
	"context"
	"log/slog"
	"strings"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/catalog"
	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
	"github.com/mewada-madhusudan/cuddly-disco/internal/resilience"
)

// Solution is a catalog row as seen by an administrator, including the raw
// access list that regular sync results never expose.
type Solution struct {
	ID     string        `json:"id"`
	Entry  catalog.Entry `json:"entry"`
	Access []string      `json:"access"`
}

// Service manages the shared catalog list on behalf of LOB administrators.
// Authorization is per line of business: an admin only touches solutions in
// the LOBs they manage.
type Service struct {
	lists  listsvc.Service
	list   string
	logger *slog.Logger
}

// NewService creates an admin service over the given catalog list.
func NewService(lists listsvc.Service, list string, logger *slog.Logger) *Service {
	return &Service{
		lists:  lists,
		list:   list,
		logger: logger,
	}
}

// Solutions returns the catalog rows in the given LOBs. Rows without a line
// of business are visible to every admin.
func (s *Service) Solutions(ctx context.Context, managedLOBs []string) ([]Solution, error) {
	rows, err := s.fetchAll(ctx)
	if err != nil {
		return nil, microerror.Mask(err)
	}

	var solutions []Solution
	for _, row := range rows {
		entry, err := catalog.ParseEntry(row)
		if err != nil {
			s.logger.Warn("skipping malformed catalog row", "id", row.ID, "error", err)
			continue
		}
		if !lobManaged(entry.LOB, managedLOBs) {
			continue
		}
		solutions = append(solutions, Solution{
			ID:     row.ID,
			Entry:  entry,
			Access: catalog.SplitAccess(row.Field(catalog.ColAccess)),
		})
	}
	return solutions, nil
}

// AddSolution validates a new catalog row and appends it. The creating admin
// must manage the row's line of business.
func (s *Service) AddSolution(ctx context.Context, fields map[string]string, managedLOBs []string) (string, error) {
	if err := Validate(fields); err != nil {
		return "", microerror.Mask(err)
	}
	if !lobManaged(fields[catalog.ColLOB], managedLOBs) {
		return "", microerror.Maskf(notAuthorizedError, "not an administrator of %q", fields[catalog.ColLOB])
	}

	var id string
	op := func() error {
		var err error
		id, err = s.lists.AddItem(ctx, s.list, fields)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "catalog add", op); err != nil {
		return "", microerror.Mask(err)
	}

	s.logger.Info("solution added", "id", id, "name", fields[catalog.ColName])
	return id, nil
}

// UpdateSolution validates the changed fields of an existing row and applies
// them.
func (s *Service) UpdateSolution(ctx context.Context, id string, fields map[string]string, managedLOBs []string) error {
	if err := ValidatePartial(fields); err != nil {
		return microerror.Mask(err)
	}

	row, err := s.findRow(ctx, id)
	if err != nil {
		return microerror.Mask(err)
	}
	if !lobManaged(row.Field(catalog.ColLOB), managedLOBs) {
		return microerror.Maskf(notAuthorizedError, "not an administrator of %q", row.Field(catalog.ColLOB))
	}

	op := func() error {
		return s.lists.UpdateItem(ctx, s.list, id, fields)
	}
	if err := resilience.Retry(ctx, s.logger, "catalog update", op); err != nil {
		return microerror.Mask(err)
	}

	s.logger.Info("solution updated", "id", id)
	return nil
}

// AccessList returns who can see the identified solution.
func (s *Service) AccessList(ctx context.Context, id string) ([]string, error) {
	row, err := s.findRow(ctx, id)
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return catalog.SplitAccess(row.Field(catalog.ColAccess)), nil
}

// Grant adds SIDs to a solution's access list. Granting to "everyone" opens
// the solution to all users.
func (s *Service) Grant(ctx context.Context, id string, sids []string, managedLOBs []string) error {
	return s.modifyAccess(ctx, id, managedLOBs, func(access []string) []string {
		for _, sid := range sids {
			sid = strings.ToLower(strings.TrimSpace(sid))
			if sid == "" || contains(access, sid) {
				continue
			}
			access = append(access, sid)
		}
		return access
	})
}

// Revoke removes SIDs from a solution's access list.
func (s *Service) Revoke(ctx context.Context, id string, sids []string, managedLOBs []string) error {
	return s.modifyAccess(ctx, id, managedLOBs, func(access []string) []string {
		remove := make(map[string]struct{}, len(sids))
		for _, sid := range sids {
			remove[strings.ToLower(strings.TrimSpace(sid))] = struct{}{}
		}

		var kept []string
		for _, sid := range access {
			if _, drop := remove[sid]; !drop {
				kept = append(kept, sid)
			}
		}
		return kept
	})
}

// modifyAccess performs a read-modify-write of the access column.
func (s *Service) modifyAccess(ctx context.Context, id string, managedLOBs []string, change func([]string) []string) error {
	row, err := s.findRow(ctx, id)
	if err != nil {
		return microerror.Mask(err)
	}
	if !lobManaged(row.Field(catalog.ColLOB), managedLOBs) {
		return microerror.Maskf(notAuthorizedError, "not an administrator of %q", row.Field(catalog.ColLOB))
	}

	access := change(catalog.SplitAccess(row.Field(catalog.ColAccess)))
	fields := map[string]string{catalog.ColAccess: catalog.JoinAccess(access)}

	op := func() error {
		return s.lists.UpdateItem(ctx, s.list, id, fields)
	}
	if err := resilience.Retry(ctx, s.logger, "access update", op); err != nil {
		return microerror.Mask(err)
	}

	s.logger.Info("access list updated", "id", id, "size", len(access))
	return nil
}

func (s *Service) findRow(ctx context.Context, id string) (listsvc.Row, error) {
	rows, err := s.fetchAll(ctx)
	if err != nil {
		return listsvc.Row{}, microerror.Mask(err)
	}

	for _, row := range rows {
		if row.ID == id {
			return row, nil
		}
	}
	return listsvc.Row{}, microerror.Maskf(solutionNotFoundError, "no solution with id %q", id)
}

func (s *Service) fetchAll(ctx context.Context) ([]listsvc.Row, error) {
	var rows []listsvc.Row
	op := func() error {
		var err error
		rows, err = s.lists.Items(ctx, s.list, nil)
		return err
	}
	if err := resilience.Retry(ctx, s.logger, "catalog fetch", op); err != nil {
		return nil, microerror.Mask(err)
	}
	return rows, nil
}

// lobManaged reports whether a row's line of business is one the admin
// manages. Rows without an LOB are open to every admin.
func lobManaged(lob string, managedLOBs []string) bool {
	if strings.TrimSpace(lob) == "" {
		return true
	}
	return contains(managedLOBs, lob)
}
