package hub

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

func (fakeAuth) ValidateToken(raw string) error {
	if raw != "good" {
		return errors.New("invalid token")
	}
	return nil
}

func testHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := New(fakeAuth{}, hclog.NewNullLogger())
	server := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(server.Close)
	return h, server
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConnectRequiresToken(t *testing.T) {
	_, server := testHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=bad"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotifyBusyBroadcast(t *testing.T) {
	h, server := testHub(t)

	a := dial(t, server, "good")
	b := dial(t, server, "good")

	require.Eventually(t, func() bool { return h.Observers() == 2 },
		time.Second, 10*time.Millisecond)

	h.NotifyBusy(true)

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Busy bool `json:"busy"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.True(t, msg.Busy)
	}
}

func TestDisconnectedObserverDropped(t *testing.T) {
	h, server := testHub(t)

	a := dial(t, server, "good")
	b := dial(t, server, "good")

	require.Eventually(t, func() bool { return h.Observers() == 2 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close())

	// The read loop notices the close; the broadcast still reaches the
	// surviving observer.
	require.Eventually(t, func() bool { return h.Observers() == 1 },
		time.Second, 10*time.Millisecond)

	h.NotifyBusy(false)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(time.Second)))
	_, raw, err := b.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Busy bool `json:"busy"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.False(t, msg.Busy)
}
