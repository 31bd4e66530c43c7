package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ msg string }

func (testEvent) Type() string { return "test.event" }

func newTestBus() *MemoryBus {
	return NewMemoryBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryBus_DispatchesInOrder(t *testing.T) {
	bus := newTestBus()
	var got []string
	bus.Register("test.event", func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.(testEvent).msg)
		return nil
	})
	bus.Register("test.event", func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.(testEvent).msg)
		return nil
	})
	bus.Register("other.event", func(context.Context, Event) error {
		t.Fatal("unexpected dispatch")
		return nil
	})

	require.NoError(t, bus.Emit(context.Background(), testEvent{msg: "hi"}))
	assert.Equal(t, []string{"first:hi", "second:hi"}, got)
	assert.Len(t, bus.Published(), 1)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryBus_HandlerFailuresAreContained(t *testing.T) {
	bus := newTestBus()
	reached := false
	bus.Register("test.event", func(context.Context, Event) error {
		return errors.New("boom")
	})
	bus.Register("test.event", func(context.Context, Event) error {
		panic("handler panic")
	})
	bus.Register("test.event", func(context.Context, Event) error {
		reached = true
		return nil
	})

	assert.NoError(t, bus.Emit(context.Background(), testEvent{}))
	assert.True(t, reached)
}

func TestMemoryBus_HandlerMayRegister(t *testing.T) {
	bus := newTestBus()
	bus.Register("test.event", func(context.Context, Event) error {
		bus.Register("test.event", func(context.Context, Event) error { return nil })
		return nil
	})
	assert.NoError(t, bus.Emit(context.Background(), testEvent{}))
}

func TestMemoryBus_PublishedIsBounded(t *testing.T) {
	bus := newTestBus()
	for i := range PublishedLimit + 10 {
		require.NoError(t, bus.Emit(context.Background(), testEvent{msg: strconv.Itoa(i)}))
	}

	published := bus.Published()
	require.Len(t, published, PublishedLimit)
	assert.Equal(t, "10", published[0].(testEvent).msg)
	assert.Equal(t, strconv.Itoa(PublishedLimit+9), published[PublishedLimit-1].(testEvent).msg)
}
