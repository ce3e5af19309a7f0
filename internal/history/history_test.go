package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewada-madhusudan/cuddly-disco/internal/listsvc"
)

type fakeService struct {
	listsvc.Service

	failures int
	calls    int
	list     string
	fields   map[string]string
}

func (f *fakeService) AddItem(ctx context.Context, list string, fields map[string]string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", fmt.Errorf("list service unavailable")
	}
	f.list = list
	f.fields = fields
	return "1", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecord(t *testing.T) {
	svc := &fakeService{}
	logger := NewLogger(svc, "action_history", "u123456", testLogger())

	err := logger.Record(context.Background(), "Installing Budget Tracker")
	require.NoError(t, err)

	assert.Equal(t, "action_history", svc.list)
	assert.Equal(t, "u123456", svc.fields["SID"])
	assert.Equal(t, "Installing Budget Tracker", svc.fields["action"])
}

func TestRecordRetriesTransientFailure(t *testing.T) {
	svc := &fakeService{failures: 2}
	logger := NewLogger(svc, "action_history", "u123456", testLogger())

	err := logger.Record(context.Background(), "Launched Budget Tracker")
	require.NoError(t, err)
	assert.Equal(t, 3, svc.calls)
}

func TestRecordGivesUpAfterRetries(t *testing.T) {
	svc := &fakeService{failures: 100}
	logger := NewLogger(svc, "action_history", "u123456", testLogger())

	err := logger.Record(context.Background(), "Uninstalled Budget Tracker")
	require.Error(t, err)
	assert.GreaterOrEqual(t, svc.calls, 3)
}

func TestActionText(t *testing.T) {
	assert.Equal(t, "Installing RiskView", Installing("RiskView"))
	assert.Equal(t, "Launched RiskView", Launched("RiskView"))
	assert.Equal(t, "Uninstalled RiskView", Uninstalled("RiskView"))
}
