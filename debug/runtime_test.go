package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/skillcheck-bot-go/domain/pipeline"
)

// syncBuffer guards the log buffer shared with the logger goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartRuntimeLogger_LogsUntilCancelled(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))
	ctx, cancel := context.WithCancel(context.Background())
	StartRuntimeLogger(ctx, 10*time.Millisecond, logger, func() pipeline.Stats {
		return pipeline.Stats{Ticks: 42, Triggers: 3}
	})

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), `"runtime-stats"`) {
		if time.Now().After(deadline) {
			t.Fatalf("no runtime-stats record logged: %s", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	logs := out.String()
	if !strings.Contains(logs, `"ticks":42`) || !strings.Contains(logs, `"triggers":3`) {
		t.Fatalf("pipeline counters missing: %s", logs)
	}
	if !strings.Contains(logs, `"goroutines":`) {
		t.Fatalf("goroutine count missing: %s", logs)
	}
}
