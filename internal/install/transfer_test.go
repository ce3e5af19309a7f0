package install

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, size int) string {
	t.Helper()
	data := bytes.Repeat([]byte{'x'}, size)
	path := filepath.Join(t.TempDir(), "source.exe")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestCopyChunkedProgress(t *testing.T) {
	src := writeSource(t, 10000)
	dst := filepath.Join(t.TempDir(), "app.exe")

	var percents []int
	err := CopyChunked(context.Background(), src, dst, func(p int) {
		percents = append(percents, p)
	})
	require.NoError(t, err)

	// 10,000 bytes in 1 KiB chunks: one emission per chunk, ending at 100
	assert.Equal(t, []int{10, 20, 30, 40, 51, 61, 71, 81, 92, 100}, percents)

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Len(t, copied, 10000)
}

func TestCopyChunkedProgressNeverDecreases(t *testing.T) {
	src := writeSource(t, 2500)
	dst := filepath.Join(t.TempDir(), "app.exe")

	var percents []int
	err := CopyChunked(context.Background(), src, dst, func(p int) {
		percents = append(percents, p)
	})
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestCopyChunkedEmptySource(t *testing.T) {
	src := writeSource(t, 0)
	dst := filepath.Join(t.TempDir(), "app.exe")

	var percents []int
	err := CopyChunked(context.Background(), src, dst, func(p int) {
		percents = append(percents, p)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{100}, percents)
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCopyChunkedSourceMissing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "app.exe")

	err := CopyChunked(context.Background(), filepath.Join(dir, "missing.exe"), dst, nil)
	require.Error(t, err)
	assert.True(t, IsSourceMissing(err))

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyChunkedDestinationFailure(t *testing.T) {
	src := writeSource(t, 100)
	dst := filepath.Join(t.TempDir(), "no-such-dir", "app.exe")

	err := CopyChunked(context.Background(), src, dst, nil)
	require.Error(t, err)
	assert.True(t, IsIOFailure(err))
}

func TestCopyChunkedCancellation(t *testing.T) {
	src := writeSource(t, 64*1024)
	dst := filepath.Join(t.TempDir(), "app.exe")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := CopyChunked(ctx, src, dst, func(p int) {
		calls++
		if calls == 3 {
			cancel()
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)

	// The partial destination is left behind for the caller to clean up
	info, statErr := os.Stat(dst)
	require.NoError(t, statErr)
	assert.Less(t, info.Size(), int64(64*1024))
}
