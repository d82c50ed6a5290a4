package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(Options{Prefix: "train", Out: &out, ErrOut: &errOut})

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String(), "debug output should be suppressed while debug is off")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("epoch %d", 3)
	assert.Contains(t, out.String(), "[train] DEBUG: epoch 3")

	l.Infof("converged")
	assert.Contains(t, out.String(), "[train] INFO: converged")

	l.Warnf("slow")
	l.Errorf("nan loss")
	assert.Contains(t, errOut.String(), "[train] WARN: slow")
	assert.Contains(t, errOut.String(), "[train] ERROR: nan loss")
	assert.NotContains(t, out.String(), "WARN")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := New(Options{Debug: true, Out: &out, ErrOut: &out})
	l.Logf(LevelInfo, "hello")
	l.Logf(Level(9), "odd")
	assert.Contains(t, out.String(), "INFO: hello")
	assert.Contains(t, out.String(), "LEVEL(9): odd")
	assert.NotContains(t, out.String(), "[")
}

func TestDefaultLogger_ToggleWhileLogging(t *testing.T) {
	var out bytes.Buffer
	var mu sync.Mutex
	l := New(Options{Out: writerFunc(func(p []byte) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		return out.Write(p)
	})})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.SetDebug(on)
				l.Debugf("tick %d", j)
			}
		}(i%2 == 0)
	}
	wg.Wait()
	l.SetDebug(false)
	assert.False(t, l.DebugEnabled())
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	if l == nil {
		t.Fatal("OrNop must never return nil")
	}
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled(), "nop logger never enables debug")

	d := NewDefaultLogger("x", false)
	assert.Same(t, d, OrNop(d))
}
