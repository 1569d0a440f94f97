package monitor

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// PressureFunc returns the current used-memory fraction in [0,1].
type PressureFunc func() float64

// MemoryMonitor answers "are we under memory pressure" against a configured
// threshold. The reading is pluggable so tests can inject a func; the default
// reads real system memory via gopsutil.
type MemoryMonitor struct {
	read      PressureFunc
	threshold float64
}

// NewMemoryMonitor builds a monitor with the given threshold in (0,1].
// A nil read func selects the system reader; a non-positive threshold
// defaults to 0.8.
func NewMemoryMonitor(threshold float64, read PressureFunc) *MemoryMonitor {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	if read == nil {
		read = systemPressure
	}
	return &MemoryMonitor{read: read, threshold: threshold}
}

// Pressure returns the current reading clamped to [0,1].
func (m *MemoryMonitor) Pressure() float64 {
	p := m.read()
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// UnderPressure reports whether the reading is at or above the threshold.
func (m *MemoryMonitor) UnderPressure() bool {
	return m.Pressure() >= m.threshold
}

// Threshold returns the configured pressure threshold.
func (m *MemoryMonitor) Threshold() float64 { return m.threshold }

func systemPressure() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.UsedPercent / 100
}
