package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Mock client 1
	client1 := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
	hub.register <- client1

	// Mock client 2
	client2 := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}
	hub.register <- client2

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	// Broadcast message
	msgBytes := ServerShutdownEvent()
	hub.broadcast <- msgBytes

	// Verify clients received message
	select {
	case received := <-client1.send:
		assert.Equal(t, msgBytes, received)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Client 1 did not receive message")
	}

	select {
	case received := <-client2.send:
		assert.Equal(t, msgBytes, received)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Client 2 did not receive message")
	}

	// Unregister client 1
	hub.unregister <- client1
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	// Broadcast another message
	msg2 := []byte("second message")
	hub.Broadcast(msg2)

	// Client 1 should NOT receive it (channel closed or nothing sent)
	select {
	case msg, ok := <-client1.send:
		if ok {
			t.Fatalf("Client 1 received message after unregister: %s", msg)
		}
	case <-time.After(50 * time.Millisecond):
		// Success
	}

	// Client 2 SHOULD receive it
	select {
	case received := <-client2.send:
		assert.Equal(t, msg2, received)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Client 2 did not receive second message")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.add(slow))

	hub.Broadcast([]byte("one"))
	hub.Broadcast([]byte("two"))

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte("one"), <-slow.send)
	_, ok := <-slow.send
	assert.False(t, ok, "send should be closed once the client is dropped")
}

func TestHub_StopDeliversQueuedBroadcasts(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 8)}
	require.True(t, hub.add(client))

	hub.Broadcast(ServerShutdownEvent())
	hub.Stop()

	select {
	case msg := <-client.send:
		assert.Equal(t, ServerShutdownEvent(), msg)
	case <-time.After(time.Second):
		t.Fatal("queued broadcast was not delivered")
	}

	select {
	case _, ok := <-client.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send was not closed on stop")
	}

	assert.False(t, hub.add(&Client{hub: hub, send: make(chan []byte, 1)}), "stopped hub accepts no clients")
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_TrySendReportsCause(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	assert.NoError(t, c.trySend([]byte("a")))
	assert.ErrorIs(t, c.trySend([]byte("b")), errClientSlow)

	c.closeSend()
	c.closeSend()
	assert.ErrorIs(t, c.trySend([]byte("c")), errClientClosed)
}

func TestClient_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.add(c))
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	c.unregister()

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.trySend([]byte("late")), errClientClosed)
}
