package models

// ContainerStatsSnapshot is a point-in-time derived metrics reading for
// one container. Computed on demand, never stored.
type ContainerStatsSnapshot struct {
	ID            string  `json:"id"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemUsageBytes uint64  `json:"memUsageBytes"`
	MemLimitBytes uint64  `json:"memLimitBytes"`
	MemPercent    float64 `json:"memPercent"`
	PIDs          *uint64 `json:"pids,omitempty"`
}

// HostMetrics is a point-in-time reading of the Docker host itself.
type HostMetrics struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemUsedBytes  int64   `json:"memUsedBytes"`
	MemTotalBytes int64   `json:"memTotalBytes"`
	MemPercent    float64 `json:"memPercent"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
}
