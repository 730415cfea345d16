package debug

// Periodic runtime and pipeline metrics logger. Started only when config.Debug
// is true. Emits goroutine count, heap and stack usage, process working set
// where available, and the pipeline counters at a fixed interval.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
)

// StatsFunc supplies the pipeline counters to log alongside runtime metrics.
type StatsFunc func() pipeline.Stats

// StartRuntimeLogger launches a ticker that logs one "runtime-stats" record
// per interval until ctx is done. stats may be nil.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, stats StatsFunc) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []slog.Attr{
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			}
			rss, err := processRSS()
			switch {
			case err == nil:
				attrs = append(attrs, slog.Uint64("rss", rss))
			case !rssErrLogged:
				logger.Warn("runtime-stats: working set unavailable", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			if stats != nil {
				s := stats()
				attrs = append(attrs, slog.Group("pipeline",
					slog.Uint64("ticks", s.Ticks),
					slog.Uint64("capture_failures", s.CaptureFailures),
					slog.Uint64("triggers", s.Triggers),
					slog.Uint64("dropped", s.Dropped),
					slog.Duration("avg_tick", s.AvgTick),
				))
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "runtime-stats", attrs...)
		}
	}()
}
