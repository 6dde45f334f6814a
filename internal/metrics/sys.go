package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var processStart = time.Now()

// SysHealth represents real-time process and data directory figures.
type SysHealth struct {
	AllocMB    uint64
	SysMB      uint64
	NumGC      uint32
	Goroutines int
	Uptime     time.Duration
	DataFiles  int
	DataSize   string
}

// GetSysHealth collects real-time health data for the given data directory.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	files, size := dirUsage(dataPath)
	return SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(processStart).Truncate(time.Second),
		DataFiles:  files,
		DataSize:   humanBytes(size),
	}
}

func (h SysHealth) String() string {
	return fmt.Sprintf("uptime %s, heap %d MB (sys %d MB), %d goroutines, %d GCs, data %s in %d files",
		h.Uptime, h.AllocMB, h.SysMB, h.Goroutines, h.NumGC, h.DataSize, h.DataFiles)
}

func dirUsage(path string) (int, int64) {
	var (
		files int
		size  int64
	)
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size
}

func humanBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
