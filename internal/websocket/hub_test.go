package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// register 注册一个假客户端并等待 Hub 收编
func register(t *testing.T, hub *Hub, userID string, sendBuffer int) *Client {
	t.Helper()
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
	hub.Register <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() > 0
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestPushToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	val := register(t, hub, "u-val", 4)
	other := &Client{UserID: "u-other", Send: make(chan []byte, 4)}
	hub.Register <- other
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.PushToUser("u-val", []byte(`{"title":"assigned"}`))

	select {
	case msg := <-val.Send:
		assert.JSONEq(t, `{"title":"assigned"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("expected message for u-val")
	}

	select {
	case <-other.Send:
		t.Fatal("u-other should not receive a targeted push")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := register(t, hub, "u-a", 4)
	b := &Client{UserID: "u-b", Send: make(chan []byte, 4)}
	hub.Register <- b
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast <- []byte("system notice")

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "system notice", string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive broadcast", c.UserID)
		}
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// 缓冲为 1,第二次推送时发送阻塞,客户端被踢出
	register(t, hub, "u-slow", 1)
	hub.PushToUser("u-slow", []byte("one"))
	hub.PushToUser("u-slow", []byte("two"))

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := register(t, hub, "u-val", 4)
	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}
