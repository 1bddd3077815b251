package wsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer responde a cada trama binaria con un Reply fijo y publica lo
// recibido en got.
func echoServer(t *testing.T, got chan<- []byte) string {
	t.Helper()
	up := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			got <- msg
			_ = conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"status":"processed","success":true,"message":"ok","algorithm":"crc","corrections":0,"processing_time":0.001}`))
		}
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestSendFrame(t *testing.T) {
	got := make(chan []byte, 1)
	url := echoServer(t, got)

	require.NoError(t, SendFrame(context.Background(), url, []byte{0x01, 0x02}))
	select {
	case b := <-got:
		assert.Equal(t, []byte{0x01, 0x02}, b)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not received")
	}
}

func TestClient_Exchange(t *testing.T) {
	got := make(chan []byte, 2)
	c, err := Dial(context.Background(), echoServer(t, got))
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 2; i++ {
		reply, err := c.Exchange([]byte{byte(i)})
		require.NoError(t, err)
		assert.Equal(t, &Reply{Status: "processed", Success: true, Message: "ok", Algorithm: "crc", ProcessingTime: 0.001}, reply)
	}
}

func TestDial_Failure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/")
	assert.Error(t, err)
}
