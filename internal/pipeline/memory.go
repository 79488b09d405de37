package pipeline

import (
	"runtime"
	"runtime/debug"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/LuckVd/AIVoice/internal/observability"
)

// memoryUsedPercent reports system memory utilization. Swappable in tests
// to simulate pressure without actually consuming memory.
var memoryUsedPercent = func() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.UsedPercent
}

// underPressure reports whether system memory use exceeds the ceiling.
func underPressure(ceilingPercent float64) bool {
	if ceilingPercent <= 0 {
		return false
	}
	return memoryUsedPercent() > ceilingPercent
}

// reclaimMemory asks the runtime to return freed pages to the OS. Called
// between batches when the job is running under pressure.
func reclaimMemory() {
	runtime.GC()
	debug.FreeOSMemory()
	observability.RecordMemoryReclaim()
}
