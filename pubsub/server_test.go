// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dial(t *testing.T, url string) *websocket.Conn {
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return conn
}

func TestServerBroadcast(t *testing.T) {
	require := require.New(t)

	s := New(zap.NewNop(), NewDefaultServerConfig(), nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts.URL)
	require.Eventually(func() bool { return s.Len() == 1 }, time.Second, 10*time.Millisecond)

	s.Broadcast([]byte("dummy_msg"))
	_, msg, err := conn.ReadMessage()
	require.NoError(err)
	require.Equal([]byte("dummy_msg"), msg)

	// the server forgets clients that hang up
	require.NoError(conn.Close())
	require.Eventually(func() bool { return s.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServerCallback(t *testing.T) {
	require := require.New(t)

	s := New(zap.NewNop(), NewDefaultServerConfig(), func(msg []byte, c *Connection) {
		c.Send(append([]byte("echo:"), msg...))
	})
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts.URL)
	defer conn.Close()

	require.NoError(conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	_, msg, err := conn.ReadMessage()
	require.NoError(err)
	require.Equal("echo:hello", string(msg))
}

func TestServerClose(t *testing.T) {
	require := require.New(t)

	s := New(zap.NewNop(), NewDefaultServerConfig(), nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	conn := dial(t, ts.URL)
	defer conn.Close()
	require.Eventually(func() bool { return s.Len() == 1 }, time.Second, 10*time.Millisecond)

	s.Close()
	_, _, err := conn.ReadMessage()
	require.True(websocket.IsCloseError(err, websocket.CloseGoingAway))
	require.Eventually(func() bool { return s.Len() == 0 }, time.Second, 10*time.Millisecond)
}
