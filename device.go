package parcore

import (
	"runtime"
	"strings"

	"github.com/pbnjay/memory"
	"golang.org/x/sys/cpu"
)

// Device describes the host the pool executes on. There is exactly one
// device in this backend: the CPU with its cores and physical memory.
type Device struct {
	Name     string // human-readable device name
	Cores    int    // number of logical CPU cores
	TotalMem uint64 // total physical memory in bytes
	Features string // detected instruction set extensions
}

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool
	HasSVE     bool
}

var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
		HasSVE:     cpu.ARM64.HasSVE,
	}
}

// featureString summarizes detected extensions for logging and Device info
func featureString() string {
	var features []string
	if cpuFeatures.HasSSE4 {
		features = append(features, "SSE4")
	}
	if cpuFeatures.HasAVX {
		features = append(features, "AVX")
	}
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}
	if cpuFeatures.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpuFeatures.HasNEON {
		features = append(features, "NEON")
	}
	if cpuFeatures.HasSVE {
		features = append(features, "SVE")
	}
	if len(features) == 0 {
		return "scalar"
	}
	return strings.Join(features, ",")
}

// detectDevice builds the Device info block for a new runtime
func detectDevice() Device {
	return Device{
		Name:     "CPU",
		Cores:    runtime.NumCPU(),
		TotalMem: memory.TotalMemory(),
		Features: featureString(),
	}
}
