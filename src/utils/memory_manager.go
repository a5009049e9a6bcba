package utils

import (
	"math"
	"runtime"
	"runtime/debug"

	"stock-predictor/src/helpers"
	"stock-predictor/src/logger"
)

// MemoryManager applies a process-wide soft memory limit and hands heap back
// to the OS after large training runs.
type MemoryManager struct {
	MaxMemoryMB int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

// NewMemoryManager installs the soft limit. maxMemoryMB <= 0 derives it from
// the machine's memory.
func NewMemoryManager(maxMemoryMB int, log *logger.Logger) *MemoryManager {
	if maxMemoryMB <= 0 {
		maxMemoryMB = helpers.GetRecommendedMemoryLimit()
	}

	mm := &MemoryManager{MaxMemoryMB: maxMemoryMB, Logger: log}
	debug.SetMemoryLimit(int64(maxMemoryMB) << 20)
	if log != nil {
		log.Info("Memory limit set to %dMB", maxMemoryMB)
	}
	return mm
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB returns the live heap in MB.
func (mm *MemoryManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return math.Round(float64(m.HeapAlloc)/1024/1024*100) / 100
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits releases memory to the OS when the heap is above the limit.
func (mm *MemoryManager) CheckMemoryLimits() {
	current := mm.GetProcessMemoryMB()
	if current <= float64(mm.MaxMemoryMB) {
		return
	}

	if mm.Logger != nil {
		mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Releasing.", current, mm.MaxMemoryMB)
	}
	debug.FreeOSMemory()
}
