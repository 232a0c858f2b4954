package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_RecoversAndRestoresScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())

	var out bytes.Buffer
	codes := make(chan int, 1)
	prevOut, prevExit := crashOut, exit
	crashOut, exit = &out, func(code int) { codes <- code }
	t.Cleanup(func() {
		crashOut, exit = prevOut, prevExit
	})

	RegisterScreen(screen)
	Go(func() { panic("heart broke") })

	select {
	case code := <-codes:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("crash handler not invoked")
	}

	assert.Contains(t, out.String(), "CRASH DETECTED: heart broke")
	assert.Contains(t, out.String(), "Stack Trace:")

	// Screen was consumed by the handler
	crashMu.Lock()
	assert.Nil(t, crashScreen)
	crashMu.Unlock()
}

func TestHandleCrash_NilIsNoop(t *testing.T) {
	called := false
	prev := exit
	exit = func(int) { called = true }
	t.Cleanup(func() { exit = prev })

	HandleCrash(nil)
	assert.False(t, called)
}

func TestGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not run")
	}
}
