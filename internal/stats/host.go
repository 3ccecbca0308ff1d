package stats

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"quayside/models"
)

// hostSampleWindow is the wall-clock delay between the two /proc/stat
// reads that a host CPU measurement spans. The caller is suspended for
// the whole window.
const hostSampleWindow = 500 * time.Millisecond

// cpuStat holds the aggregate CPU time counters from the first line of
// /proc/stat.
type cpuStat struct {
	user    uint64
	nice    uint64
	system  uint64
	idle    uint64
	iowait  uint64
	irq     uint64
	softirq uint64
	steal   uint64
}

func (s cpuStat) total() uint64 {
	return s.user + s.nice + s.system + s.idle + s.iowait + s.irq + s.softirq + s.steal
}

// hostCPUPercent computes the busy percentage between two samples,
// rounded to one decimal. A non-positive total delta yields 0.
func hostCPUPercent(prev, cur cpuStat) float64 {
	totalDelta := float64(cur.total()) - float64(prev.total())
	if totalDelta <= 0 {
		return 0
	}
	idleDelta := float64(cur.idle) - float64(prev.idle)
	usage := 100 - (idleDelta/totalDelta)*100
	return math.Round(usage*10) / 10
}

// HostMetrics samples host CPU, memory and uptime. The CPU reading is a
// blocking, time-boxed measurement over a 500ms window.
func HostMetrics() (*models.HostMetrics, error) {
	metrics := &models.HostMetrics{}

	cpu, err := sampleHostCPU()
	if err == nil {
		metrics.CPUPercent = cpu
	}

	used, total, err := readMemInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory usage: %w", err)
	}
	metrics.MemUsedBytes = used
	metrics.MemTotalBytes = total
	if total > 0 {
		metrics.MemPercent = math.Round(float64(used)/float64(total)*1000) / 10
	}

	if uptime, err := readUptime(); err == nil {
		metrics.UptimeSeconds = uptime
	}

	return metrics, nil
}

func sampleHostCPU() (float64, error) {
	prev, err := readCPUStat()
	if err != nil {
		return 0, err
	}

	time.Sleep(hostSampleWindow)

	cur, err := readCPUStat()
	if err != nil {
		return 0, err
	}

	return hostCPUPercent(prev, cur), nil
}

// readCPUStat reads the aggregate cpu line from /proc/stat.
func readCPUStat() (cpuStat, error) {
	file, err := os.Open("/proc/stat")
	if err != nil {
		return cpuStat{}, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return cpuStat{}, fmt.Errorf("failed to read /proc/stat")
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 9 || fields[0] != "cpu" {
		return cpuStat{}, fmt.Errorf("invalid /proc/stat format")
	}

	values := make([]uint64, 8)
	for i := 0; i < 8; i++ {
		values[i], err = strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return cpuStat{}, fmt.Errorf("failed to parse CPU stat: %w", err)
		}
	}

	return cpuStat{
		user:    values[0],
		nice:    values[1],
		system:  values[2],
		idle:    values[3],
		iowait:  values[4],
		irq:     values[5],
		softirq: values[6],
		steal:   values[7],
	}, nil
}

// readMemInfo reads used and total memory in bytes from /proc/meminfo.
// Used = Total - Free - Buffers - Cached.
func readMemInfo() (used int64, total int64, err error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	var memTotal, memFree, buffers, cached int64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		value *= 1024 // /proc/meminfo reports kB

		switch strings.TrimSuffix(fields[0], ":") {
		case "MemTotal":
			memTotal = value
		case "MemFree":
			memFree = value
		case "Buffers":
			buffers = value
		case "Cached":
			cached = value
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}

	return memTotal - memFree - buffers - cached, memTotal, nil
}

// readUptime reads the host uptime in whole seconds from /proc/uptime.
func readUptime() (int64, error) {
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(string(data))
	if len(fields) < 1 {
		return 0, fmt.Errorf("invalid /proc/uptime format")
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	return int64(seconds), nil
}
