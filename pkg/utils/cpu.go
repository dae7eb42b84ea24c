package utils

import "github.com/shirou/gopsutil/cpu"

// CheckCPUUsage reports whether current host CPU usage is below the
// given ceiling, along with the measured usage percentage. A failed
// measurement counts as below the ceiling so work is never starved by
// a broken probe.
func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		return true, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}
