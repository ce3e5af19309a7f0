package listsvc

import "context"

// Service defines the list service operations the agent depends on.
// This interface enables mocking for testing.
type Service interface {
	// Items returns all rows of the named list, optionally filtered
	Items(ctx context.Context, list string, filter *Filter) ([]Row, error)

	// AddItem appends a new row and returns its id
	AddItem(ctx context.Context, list string, fields map[string]string) (string, error)

	// UpdateItem overwrites columns of an existing row
	UpdateItem(ctx context.Context, list, id string, fields map[string]string) error

	// Ping checks service reachability
	Ping(ctx context.Context) error
}

// Compile-time assertion that Client implements Service
var _ Service = (*Client)(nil)
