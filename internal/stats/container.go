// Package stats derives instantaneous resource percentages from the raw
// cumulative counters reported by the Docker daemon and the host kernel.
// Degenerate inputs (counter resets, zero deltas, missing fields) always
// map to 0, never to an error.
package stats

import (
	"quayside/models"
)

// Raw is one stats reading for a container as reported by the daemon.
// The daemon embeds the immediately preceding sample in PreCPU, which is
// what makes a single reading enough to derive a CPU percentage.
//
// Fields the daemon may omit (online_cpus, percpu_usage, pids current)
// are modeled explicitly so every fallback branch is testable.
type Raw struct {
	CPU    CPUSample    `json:"cpu_stats"`
	PreCPU CPUSample    `json:"precpu_stats"`
	Memory MemorySample `json:"memory_stats"`
	PIDs   PIDsSample   `json:"pids_stats"`
}

// CPUSample holds the cumulative CPU counters of one sample.
type CPUSample struct {
	Usage       CPUUsage `json:"cpu_usage"`
	SystemUsage uint64   `json:"system_cpu_usage"`
	OnlineCPUs  uint32   `json:"online_cpus"`
}

// CPUUsage holds the container's own cumulative usage counters.
type CPUUsage struct {
	Total  uint64   `json:"total_usage"`
	PerCPU []uint64 `json:"percpu_usage"`
}

// MemorySample holds the memory counters of one sample. Limit may
// legitimately be 0 when the container is unlimited.
type MemorySample struct {
	Usage uint64 `json:"usage"`
	Limit uint64 `json:"limit"`
}

// PIDsSample holds the process count, absent on runtimes that do not
// report it.
type PIDsSample struct {
	Current *uint64 `json:"current,omitempty"`
}

// OnlineCPUs resolves the CPU count used for normalization. Preference
// order: reported online_cpus, then the per-CPU usage array length, then 1.
func (r *Raw) OnlineCPUs() int {
	if r.CPU.OnlineCPUs > 0 {
		return int(r.CPU.OnlineCPUs)
	}
	if n := len(r.CPU.Usage.PerCPU); n > 0 {
		return n
	}
	return 1
}

// CPUPercent computes the container CPU percentage from the current and
// embedded previous sample: (cpuDelta/systemDelta) * onlineCPUs * 100.
// Any non-positive delta, which happens on counter resets and on the
// very first sample after a container starts, yields 0.
func (r *Raw) CPUPercent() float64 {
	cpuDelta := float64(r.CPU.Usage.Total) - float64(r.PreCPU.Usage.Total)
	systemDelta := float64(r.CPU.SystemUsage) - float64(r.PreCPU.SystemUsage)

	if cpuDelta <= 0 || systemDelta <= 0 {
		return 0
	}
	return (cpuDelta / systemDelta) * float64(r.OnlineCPUs()) * 100
}

// MemPercent computes usage/limit*100, or 0 when either counter is
// missing or the container is unlimited.
func (r *Raw) MemPercent() float64 {
	if r.Memory.Usage == 0 || r.Memory.Limit == 0 {
		return 0
	}
	return float64(r.Memory.Usage) / float64(r.Memory.Limit) * 100
}

// Snapshot derives the caller-facing metrics reading for one container.
func Snapshot(id string, raw *Raw) models.ContainerStatsSnapshot {
	return models.ContainerStatsSnapshot{
		ID:            id,
		CPUPercent:    raw.CPUPercent(),
		MemUsageBytes: raw.Memory.Usage,
		MemLimitBytes: raw.Memory.Limit,
		MemPercent:    raw.MemPercent(),
		PIDs:          raw.PIDs.Current,
	}
}
