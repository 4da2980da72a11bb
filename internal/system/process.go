package system

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessStats는 게이트웨이 프로세스 자체의 자원 사용량
type ProcessStats struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rssBytes"`
	Threads       int32   `json:"threads"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func CurrentProcessStats(ctx context.Context) (*ProcessStats, error) {
	pid := int32(os.Getpid())
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, err
	}

	stats := &ProcessStats{
		PID:        pid,
		Goroutines: runtime.NumGoroutine(),
	}

	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	stats.RSSBytes = mem.RSS

	if threads, err := proc.NumThreadsWithContext(ctx); err == nil {
		stats.Threads = threads
	}
	if createdMs, err := proc.CreateTimeWithContext(ctx); err == nil {
		stats.UptimeSeconds = time.Since(time.UnixMilli(createdMs)).Seconds()
	}

	return stats, nil
}
