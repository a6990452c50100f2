package log

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewContextWithOptions_WritesToOut(t *testing.T) {
	var buf syncBuffer
	ctx, flush := NewContextWithOptions(context.Background(), Options{Out: &buf})

	FromCtx(WithComponent(ctx, "sweeper")).Info().Msg("swept sessions")
	flush()

	// diode flushes on its own poll interval
	assert.Eventually(t, func() bool {
		out := buf.String()
		return strings.Contains(out, "swept sessions") && strings.Contains(out, "component=sweeper")
	}, time.Second, 10*time.Millisecond)
}

func TestFromCtx_WithoutLogger(t *testing.T) {
	logger := FromCtx(context.Background())
	assert.NotNil(t, logger)
}

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
