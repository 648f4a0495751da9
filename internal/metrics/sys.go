package metrics

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"
)

var startedAt = time.Now()

// SysHealth is a snapshot of the running process.
type SysHealth struct {
	AllocMB    uint64 `json:"allocMb"`
	SysMB      uint64 `json:"sysMb"`
	NumGC      uint32 `json:"numGc"`
	Goroutines int    `json:"goroutines"`
	Uptime     string `json:"uptime"`
	DataDir    string `json:"dataDir"`
	DataSize   string `json:"dataSize"`
}

// GetSysHealth collects memory, goroutine and data directory figures.
func GetSysHealth(dataDir string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(startedAt).Round(time.Second).String(),
		DataDir:    dataDir,
		DataSize:   FormatBytes(dirSize(dataDir)),
	}
}

// dirSize sums regular file sizes below path. Unreadable entries count as 0.
func dirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}

// FormatBytes renders n with a binary unit, e.g. "1.5 KB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
