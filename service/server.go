package service

import (
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/pasarfleet/p-ui/config"
	"github.com/pasarfleet/p-ui/logger"
)

// ServerService reports the panel host's own status, not node status.
type ServerService struct {
}

func (s *ServerService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"appVersion": config.GetVersion(),
		"goVersion":  runtime.Version(),
		"numCpus":    runtime.NumCPU(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpuUsage"] = percents[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		status["memTotal"] = memInfo.Total
		status["memUsed"] = memInfo.Used
	}
	if uptime, err := host.Uptime(); err == nil {
		status["hostUptime"] = uptime
	}
	status["uptime"] = uint64(time.Since(startTime).Seconds())

	return status
}

var startTime = time.Now()

func (s *ServerService) GetLogs(limit string, level string) []string {
	count := 100
	if limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			count = n
		}
	}
	if level == "" {
		level = "info"
	}
	return logger.GetLogs(count, level)
}
