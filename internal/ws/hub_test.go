package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{hub: h, send: make(chan []byte, buffer)}
}

func recvOrTimeout(t *testing.T, ch chan []byte) ([]byte, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting on send channel")
		return nil, false
	}
}

func waitClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	for {
		msg, ok := recvOrTimeout(t, ch)
		if !ok {
			return
		}
		_ = msg
	}
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newTestClient(h, 16)
	b := newTestClient(h, 16)
	h.RegisterClient(a)
	h.RegisterClient(b)

	h.Broadcast([]byte(`[{"name":"Furnace Room"}]`))

	msg, ok := recvOrTimeout(t, a.send)
	require.True(t, ok)
	assert.Equal(t, `[{"name":"Furnace Room"}]`, string(msg))
	msg, ok = recvOrTimeout(t, b.send)
	require.True(t, ok)
	assert.Equal(t, `[{"name":"Furnace Room"}]`, string(msg))
}

func TestSlowSubscriberDropped(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := newTestClient(h, 1)
	h.RegisterClient(slow)

	// First fills the buffer, second finds it full and drops the client,
	// closing its send channel.
	h.Broadcast([]byte("tick-1"))
	h.Broadcast([]byte("tick-2"))

	msg, ok := recvOrTimeout(t, slow.send)
	require.True(t, ok)
	assert.Equal(t, "tick-1", string(msg))
	_, ok = recvOrTimeout(t, slow.send)
	assert.False(t, ok)
}

func TestShutdownClosesSubscribers(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	client := newTestClient(h, 16)
	h.RegisterClient(client)

	cancel()
	waitClosed(t, client.send)
}

func TestRegisterAfterShutdownDoesNotBlock(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()
	<-h.done

	late := newTestClient(h, 16)
	finished := make(chan struct{})
	go func() {
		h.RegisterClient(late)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("RegisterClient blocked after hub shutdown")
	}

	// The send channel was closed so the write pump would exit.
	_, ok := recvOrTimeout(t, late.send)
	assert.False(t, ok)
}

func TestUnregisterAfterShutdownDoesNotBlock(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	client := newTestClient(h, 16)
	h.RegisterClient(client)

	cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.unregisterClient(client)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after hub shutdown")
	}
}
