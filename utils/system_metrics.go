package utils

import (
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// GetCPUUsage returns the current CPU usage as a percentage and records it in
// the CPUUsage gauge.
func GetCPUUsage() float64 {
	percentage, err := cpu.Percent(200*time.Millisecond, false)
	if err != nil {
		Log.WithError(err).Warn("cpu usage sample failed")
		return 0
	}
	if len(percentage) == 0 {
		return 0
	}
	CPUUsage.Set(percentage[0])
	return percentage[0]
}
