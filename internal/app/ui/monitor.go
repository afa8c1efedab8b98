package ui

import (
	"math"

	"github.com/shirou/gopsutil/v4/process"
)

// Stats contains resource usage of the watching process
type Stats struct {
	CPU float64
	MEM float64 // in MB
}

// Monitor samples process resource usage
type Monitor interface {
	GetStats(pid int) (Stats, error)
}

type monitor struct{}

// NewMonitor creates a Monitor backed by gopsutil
func NewMonitor() Monitor {
	return &monitor{}
}

func (m *monitor) GetStats(pid int) (Stats, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return Stats{}, nil
	}

	proc, err := process.NewProcess(int32(pid)) // #nosec G115 -- PID range checked above
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{}

	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPU = cpu
	}

	if mem, err := proc.MemoryInfo(); err == nil {
		stats.MEM = float64(mem.RSS) / 1024 / 1024
	}

	return stats, nil
}
