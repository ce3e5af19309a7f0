package system

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats represents system resource usage (percentages as integers)
type Stats struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
	Disk   int `json:"disk"`
}

// statsCache holds cached system stats updated in background
var (
	statsCache   *Stats
	statsCacheMu sync.RWMutex
	statsOnce    sync.Once
)

// StartStatsCollector starts background stats collection
// Call this once at startup
func StartStatsCollector(ctx context.Context) {
	statsOnce.Do(func() {
		// Initialize with zeros
		statsCacheMu.Lock()
		statsCache = &Stats{}
		statsCacheMu.Unlock()

		// Start background collector
		go collectStatsLoop(ctx)
	})
}

// collectStatsLoop runs in background and updates cached stats
func collectStatsLoop(ctx context.Context) {
	// Do initial collection immediately
	collectStats()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collectStats()
		}
	}
}

// collectStats updates the cached stats
func collectStats() {
	stats := &Stats{}

	// Get CPU usage (1 second sample - this blocks but runs in background)
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err == nil && len(cpuPercent) > 0 {
		stats.CPU = int(math.Round(cpuPercent[0]))
	}

	// Get memory usage
	memStats, err := mem.VirtualMemory()
	if err == nil {
		stats.Memory = int(math.Round(memStats.UsedPercent))
	}

	// Get disk usage for root partition
	diskStats, err := disk.Usage("/")
	if err == nil {
		stats.Disk = int(math.Round(diskStats.UsedPercent))
	}

	statsCacheMu.Lock()
	statsCache = stats
	statsCacheMu.Unlock()
}

// GetStats returns cached system resource usage (instant response)
func GetStats() (*Stats, error) {
	statsCacheMu.RLock()
	defer statsCacheMu.RUnlock()

	if statsCache == nil {
		return &Stats{}, nil
	}

	// Return a copy
	return &Stats{
		CPU:    statsCache.CPU,
		Memory: statsCache.Memory,
		Disk:   statsCache.Disk,
	}, nil
}

// AppUsage is the on-disk footprint of one installed application
type AppUsage struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// StorageStats describes the volume holding the install root plus a
// per-application size breakdown
type StorageStats struct {
	Path        string     `json:"path"`
	TotalBytes  uint64     `json:"totalBytes"`
	FreeBytes   uint64     `json:"freeBytes"`
	UsedBytes   uint64     `json:"usedBytes"`
	UsedPercent int        `json:"usedPercent"`
	Apps        []AppUsage `json:"apps"`
}

// GetStorageStats reports usage of the volume that holds root and the size of
// each application directory directly under it. A missing root yields empty
// app usage rather than an error.
func GetStorageStats(root string) (*StorageStats, error) {
	usage, err := disk.Usage(nearestExisting(root))
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage for %s: %w", root, err)
	}

	stats := &StorageStats{
		Path:        root,
		TotalBytes:  usage.Total,
		FreeBytes:   usage.Free,
		UsedBytes:   usage.Used,
		UsedPercent: int(math.Round(usage.UsedPercent)),
		Apps:        []AppUsage{},
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to read install root %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		size, err := DirSize(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		stats.Apps = append(stats.Apps, AppUsage{Name: entry.Name(), Bytes: size})
	}

	// Largest first
	sort.Slice(stats.Apps, func(i, j int) bool {
		return stats.Apps[i].Bytes > stats.Apps[j].Bytes
	})

	return stats, nil
}

// DirSize returns the total size in bytes of all regular files under path
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// FreeBytes returns free space on the volume holding path. The path itself
// does not need to exist; the nearest existing parent is measured.
func FreeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(nearestExisting(path))
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}

// nearestExisting walks up from path until it finds a directory that exists,
// so usage can be measured before the install root is first created
func nearestExisting(path string) string {
	for p := path; ; {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
