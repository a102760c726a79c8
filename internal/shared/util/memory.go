package util

import (
	"runtime"
)

const mib = 1 << 20

// MemStats is the part of runtime.MemStats logged after a run.
type MemStats struct {
	HeapAllocMB uint64
	SysMB       uint64
	NumGC       uint32
}

func ReadMemStats() MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemStats{
		HeapAllocMB: m.HeapAlloc / mib,
		SysMB:       m.Sys / mib,
		NumGC:       m.NumGC,
	}
}
