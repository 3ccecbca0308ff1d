package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostCPUPercent(t *testing.T) {
	t.Run("half busy", func(t *testing.T) {
		prev := cpuStat{user: 100, idle: 100}
		cur := cpuStat{user: 200, idle: 200}
		// 200 total delta, 100 idle delta: 50% busy.
		assert.InDelta(t, 50.0, hostCPUPercent(prev, cur), 0.0001)
	})

	t.Run("fully idle", func(t *testing.T) {
		prev := cpuStat{idle: 100}
		cur := cpuStat{idle: 300}
		assert.Zero(t, hostCPUPercent(prev, cur))
	})

	t.Run("zero total delta", func(t *testing.T) {
		s := cpuStat{user: 100, idle: 100}
		assert.Zero(t, hostCPUPercent(s, s))
	})

	t.Run("counter went backwards", func(t *testing.T) {
		prev := cpuStat{user: 500, idle: 500}
		cur := cpuStat{user: 100, idle: 100}
		assert.Zero(t, hostCPUPercent(prev, cur))
	})

	t.Run("rounded to one decimal", func(t *testing.T) {
		prev := cpuStat{user: 0, idle: 0}
		cur := cpuStat{user: 1, idle: 2}
		// busy = 100 - (2/3)*100 = 33.333... -> 33.3
		assert.Equal(t, 33.3, hostCPUPercent(prev, cur))
	})

	t.Run("all counter categories contribute to total", func(t *testing.T) {
		prev := cpuStat{}
		cur := cpuStat{user: 10, nice: 10, system: 10, idle: 10, iowait: 10, irq: 10, softirq: 10, steal: 10}
		// 80 total, 10 idle: 87.5% busy.
		assert.InDelta(t, 87.5, hostCPUPercent(prev, cur), 0.0001)
	})
}
