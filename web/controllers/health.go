package controllers

import (
	"net/http"

	"punchme/web/logs"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Health reports host load. It never touches the database.
func Health(c *gin.Context) {
	info := gin.H{"status": "ok"}

	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		info["cpu_usage"] = usage[0]
	} else if err != nil {
		logs.Log.WithError(err).Warn("read cpu usage")
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		info["memory_total"] = memInfo.Total
		info["memory_used"] = memInfo.Used
		info["memory_used_percent"] = memInfo.UsedPercent
	} else {
		logs.Log.WithError(err).Warn("read memory usage")
	}

	c.JSON(http.StatusOK, info)
}
