package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	require.NotNil(t, Logger())

	core, logs := observer.New(zapcore.WarnLevel)
	l := zap.New(core)
	SetLogger(l)
	assert.Same(t, l, Logger())

	// Serializers without WithLogger pick up the package logger
	s := mustNew(t, headerFormat())
	_ = s.SetField("missing", 1)
	assert.Equal(t, 1, logs.Len())

	SetLogger(nil)
	assert.NotNil(t, Logger())
}

func TestLoggerConcurrentAccess(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(zap.NewNop())
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, Logger())
		}()
	}
	wg.Wait()
}
