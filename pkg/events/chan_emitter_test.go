package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanEmitterDeliversEvents(t *testing.T) {
	emitter := NewChanEmitter(4)
	sub := emitter.Subscribe()

	Emit(context.Background(), emitter, EventAnalyzeProgress, ProgressData{Item: "a.jpg", Processed: 1, Total: 2, Percent: 50})
	emitter.Close()

	var got []Event
	for event := range sub.Events() {
		got = append(got, event)
	}

	require.Len(t, got, 1)
	assert.Equal(t, EventAnalyzeProgress, got[0].Type)
	data, ok := got[0].Data.(ProgressData)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", data.Item)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestChanEmitterEmitAfterClose(t *testing.T) {
	emitter := NewChanEmitter(1)
	emitter.Close()

	// Не должно паниковать и не должно блокировать.
	emitter.Emit(context.Background(), Event{Type: EventDone, Timestamp: time.Now()})
}

func TestChanEmitterRespectsContext(t *testing.T) {
	emitter := NewChanEmitter(0) // небуферизованный, некому читать
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		emitter.Emit(ctx, Event{Type: EventDone})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit must return when context is cancelled")
	}
}

func TestEmitHelperNilSafe(t *testing.T) {
	// nil эмиттер — событие молча отбрасывается.
	Emit(context.Background(), nil, EventDone, DoneData{})
}
