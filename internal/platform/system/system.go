// Package system reports host resource usage for health probes.
package system

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryUsage returns the used physical memory as a percentage.
func MemoryUsage() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// CPUUsage returns the aggregate CPU utilisation as a percentage. The zero
// interval makes gopsutil compare against the previous call instead of
// blocking.
func CPUUsage() (float64, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}
