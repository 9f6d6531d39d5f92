package health

import (
	"context"
	"fmt"
	"time"

	"land-backend/internal/cache"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
	StatusDisabled  = "disabled"
)

// Pinger is anything with a cheap liveness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db      Pinger
	storage Pinger // nil when object storage is not configured
	started time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// DetailedStatus adds optional dependencies and host figures
type DetailedStatus struct {
	HealthStatus
	Redis   ComponentHealth `json:"redis"`
	Storage ComponentHealth `json:"storage"`
	System  SystemStats     `json:"system"`
	Uptime  string          `json:"uptime"`
}

type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
}

func NewHealthChecker(db Pinger, storage Pinger) *HealthChecker {
	return &HealthChecker{db: db, storage: storage, started: time.Now()}
}

// CheckBasic reports readiness, which depends on the database only
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	db := probe(ctx, h.db)
	status := StatusHealthy
	if db.Status != StatusHealthy {
		status = StatusUnhealthy
	}
	return HealthStatus{Status: status, Database: db}
}

// CheckDetailed also probes Redis and object storage. Their failure degrades
// the service without making it unready.
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	out := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Redis:        redisHealth(),
		System:       systemStats(),
		Uptime:       formatUptime(time.Since(h.started)),
	}
	if h.storage == nil {
		out.Storage = ComponentHealth{Status: StatusDisabled}
	} else {
		out.Storage = probe(ctx, h.storage)
	}

	if out.Status == StatusHealthy &&
		(out.Redis.Status == StatusUnhealthy || out.Storage.Status == StatusUnhealthy) {
		out.Status = StatusDegraded
	}
	return out
}

func probe(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return ComponentHealth{Status: StatusUnhealthy, ResponseTime: elapsed, Error: err.Error()}
	}
	return ComponentHealth{Status: StatusHealthy, ResponseTime: elapsed}
}

func redisHealth() ComponentHealth {
	if cache.GetClient() == nil {
		return ComponentHealth{Status: StatusDisabled}
	}
	start := time.Now()
	ok := cache.IsHealthy()
	elapsed := time.Since(start).Milliseconds()
	if !ok {
		return ComponentHealth{Status: StatusUnhealthy, ResponseTime: elapsed}
	}
	return ComponentHealth{Status: StatusHealthy, ResponseTime: elapsed}
}

func systemStats() SystemStats {
	var s SystemStats
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if m, err := mem.VirtualMemory(); err == nil {
		s.MemoryPercent = m.UsedPercent
		s.MemoryUsed = formatBytes(m.Used)
		s.MemoryTotal = formatBytes(m.Total)
	}
	if d, err := disk.Usage("/"); err == nil {
		s.DiskPercent = d.UsedPercent
		s.DiskUsed = formatBytes(d.Used)
		s.DiskTotal = formatBytes(d.Total)
	}
	return s
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
