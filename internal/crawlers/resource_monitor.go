package crawlers

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitor 浏览器启动前的系统资源预检
// 人工辅助的浏览器会话整个运行期只启动一次,预检只提示不阻断
type ResourceMonitor struct {
	config ResourceMonitorConfig

	// 系统总内存(字节)
	totalMemory uint64
}

// ResourceMonitorConfig 资源预检配置
type ResourceMonitorConfig struct {
	SafetyReserveMemory int64 // 安全保留内存(字节)
	SafetyThreshold     int64 // 可用内存安全阈值(字节)
	CPULoadThreshold    int   // CPU负载阈值(%), >=200视为禁用检查
}

// NewResourceMonitor 创建资源预检器
func NewResourceMonitor(config ResourceMonitorConfig) *ResourceMonitor {
	// 获取系统总内存(使用gopsutil获取真实系统内存)
	vmStat, err := mem.VirtualMemory()
	var totalMem uint64
	if err != nil {
		log.Warn().Err(err).Msg("获取系统内存失败,使用默认值")
		totalMem = 4 * 1024 * 1024 * 1024 // 默认4GB
	} else {
		totalMem = vmStat.Total
		log.Debug().Msgf("系统总内存: %.2f GB", float64(totalMem)/(1024*1024*1024))
	}

	return &ResourceMonitor{
		config:      config,
		totalMemory: totalMem,
	}
}

// getCPUUsage 获取系统CPU使用率(百分比)
func (rm *ResourceMonitor) getCPUUsage() float64 {
	// 100毫秒采样间隔,避免阻塞过久; perCPU=false返回所有核心的平均值
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("获取CPU使用率失败")
		return 0.0
	}
	if len(percentages) == 0 {
		log.Warn().Msg("CPU使用率数据为空")
		return 0.0
	}
	return percentages[0]
}

// CheckResourceAvailability 检查当前资源是否适合启动浏览器
// 返回canLaunch(是否充足)和reason(不足时的原因)
func (rm *ResourceMonitor) CheckResourceAvailability() (canLaunch bool, reason string) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// 计算可用内存
	allocatedMemory := memStats.Alloc
	availableMemory := int64(rm.totalMemory) - int64(allocatedMemory) - rm.config.SafetyReserveMemory

	if availableMemory < rm.config.SafetyThreshold {
		availableMemoryMB := availableMemory / (1024 * 1024)
		return false, fmt.Sprintf("可用内存不足(当前%dMB)", availableMemoryMB)
	}

	// 配置的阈值 >= 200 时跳过CPU检查(视为禁用)
	if rm.config.CPULoadThreshold < 200 {
		cpuUsage := rm.getCPUUsage()
		if cpuUsage > float64(rm.config.CPULoadThreshold) {
			return false, fmt.Sprintf("CPU负载过高(当前%.1f%%)", cpuUsage)
		}
	}

	return true, ""
}
