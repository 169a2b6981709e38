package crawlers

import (
	"runtime"

	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	// MaxDetailWorkers 详情页并发的绝对上限
	MaxDetailWorkers = 16
	// workerMemoryUsage 单个worker预估内存占用
	workerMemoryUsage = 32 * 1024 * 1024
	// safetyReserveMemory 始终为系统保留的内存
	safetyReserveMemory = 512 * 1024 * 1024
)

// ClampWorkers 根据主机CPU核数和可用内存限制worker数量
// 结果在 [1, MaxDetailWorkers] 之间
func ClampWorkers(requested int) int {
	if requested < 1 {
		requested = 1
	}

	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = runtime.NumCPU()
	}

	byMemory := MaxDetailWorkers
	if vm, err := mem.VirtualMemory(); err != nil {
		utils.Debugf("获取可用内存失败, 忽略内存限制: %v", err)
	} else {
		available := int64(vm.Available) - safetyReserveMemory
		byMemory = int(available / workerMemoryUsage)
		if byMemory < 1 {
			byMemory = 1
		}
	}

	result := requested
	for _, limit := range []int{cpus * 2, byMemory, MaxDetailWorkers} {
		if limit < result {
			result = limit
		}
	}
	if result < 1 {
		result = 1
	}

	if result != requested {
		utils.Warnf("worker数量从 %d 调整为 %d (CPU=%d, 内存上限=%d)", requested, result, cpus, byMemory)
	}
	return result
}
