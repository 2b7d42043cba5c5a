package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, Event{Type: EventHello, Live: true})
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubHelloAndBroadcast(t *testing.T) {
	hub, url := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readEvent(t, conn)
	assert.Equal(t, EventHello, hello.Type)
	assert.True(t, hello.Live)

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(Event{Type: EventGalleryChanged, Live: false})

	ev := readEvent(t, conn)
	assert.Equal(t, EventGalleryChanged, ev.Type)
	assert.False(t, ev.Live)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
