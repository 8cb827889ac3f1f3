package service

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"heartbridge/internal/logger"
	"heartbridge/internal/models"
)

// HostStatsReader samples machine figures for the admin console
type HostStatsReader interface {
	Read(ctx context.Context) (models.HostStats, error)
}

// SystemHostStats reads memory and the disk holding path via gopsutil
type SystemHostStats struct {
	path string
}

// NewSystemHostStats creates a reader for the filesystem containing path
func NewSystemHostStats(path string) *SystemHostStats {
	if path == "" {
		path = "."
	}
	return &SystemHostStats{path: path}
}

// Read samples memory and disk usage
func (h *SystemHostStats) Read(ctx context.Context) (models.HostStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.HostStats{}, err
	}
	du, err := disk.UsageWithContext(ctx, h.path)
	if err != nil {
		return models.HostStats{}, err
	}
	return models.HostStats{
		Available:   true,
		MemoryUsed:  vm.Used,
		MemoryTotal: vm.Total,
		MemoryPct:   vm.UsedPercent,
		DiskUsed:    du.Used,
		DiskTotal:   du.Total,
		DiskPct:     du.UsedPercent,
	}, nil
}

// StatsService assembles the admin dashboard figures
type StatsService struct {
	store StatsStore
	host  HostStatsReader
}

// NewStatsService creates a new stats service. host may be nil.
func NewStatsService(store StatsStore, host HostStatsReader) *StatsService {
	return &StatsService{store: store, host: host}
}

// Collect returns table totals plus host figures. A host sampling failure
// is logged and leaves Host.Available false.
func (s *StatsService) Collect(ctx context.Context) (*models.Stats, error) {
	stats, err := s.store.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.host == nil {
		return stats, nil
	}

	host, err := s.host.Read(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read host stats")
		return stats, nil
	}
	stats.Host = host
	return stats, nil
}
