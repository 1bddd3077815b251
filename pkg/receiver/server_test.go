package receiver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/wsclient"
)

func testConfig() config.ReceiverConfig {
	return config.ReceiverConfig{
		Listen:          "127.0.0.1:0",
		Path:            "/",
		MetricsPath:     "/metrics",
		RecentLimit:     10,
		MaxFrameBytes:   1 << 16,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	svc := NewService()
	srv := NewServer(testConfig(), svc, log.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return svc, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestServer_BinaryFrame(t *testing.T) {
	svc, ts := newTestServer(t)
	conn := dial(t, ts)

	f, err := link.EncodeMessage("Hola", link.AlgorithmHamming)
	require.NoError(t, err)
	f[8] ^= 0x04

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, f))
	reply := readReply(t, conn)

	assert.Equal(t, "processed", reply["status"])
	assert.Equal(t, true, reply["success"])
	assert.Equal(t, "Hola", reply["message"])
	assert.Equal(t, "hamming", reply["algorithm"])
	assert.Equal(t, 1.0, reply["corrections"])
	assert.Contains(t, reply, "processing_time")
	assert.Equal(t, 1, svc.Stats().Total)
}

func TestServer_TextFrames(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	f, err := link.EncodeMessage("Hi", link.AlgorithmCRC)
	require.NoError(t, err)
	h := hex.EncodeToString(f)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"frame_hex":"`+h+`"}`)))
	reply := readReply(t, conn)
	assert.Equal(t, true, reply["success"])
	assert.Equal(t, "Hi", reply["message"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(h)))
	reply = readReply(t, conn)
	assert.Equal(t, true, reply["success"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("zz-not-hex")))
	reply = readReply(t, conn)
	assert.Equal(t, "error", reply["status"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"other":1}`)))
	reply = readReply(t, conn)
	assert.Equal(t, "error", reply["status"])
}

func TestServer_FailedFrameReplyCarriesCause(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	f, err := link.EncodeMessage("Hola", link.AlgorithmCRC)
	require.NoError(t, err)
	f[4] ^= 0xFF

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, f))
	reply := readReply(t, conn)
	assert.Equal(t, false, reply["success"])
	assert.Equal(t, "CRC validation failed", reply["message"])
}

func TestServer_WSClientExchange(t *testing.T) {
	_, ts := newTestServer(t)

	c, err := wsclient.Dial(context.Background(), wsURL(ts))
	require.NoError(t, err)
	defer c.Close()

	for _, text := range []string{"uno", "dos"} {
		f, err := link.EncodeMessage(text, link.AlgorithmCRC)
		require.NoError(t, err)

		reply, err := c.Exchange(f)
		require.NoError(t, err)
		assert.True(t, reply.Success)
		assert.Equal(t, text, reply.Message)
		assert.Equal(t, "crc", reply.Algorithm)
	}
}

func TestServer_HTTPEndpoints(t *testing.T) {
	svc, ts := newTestServer(t)

	f, err := link.EncodeMessage("stats", link.AlgorithmCRC)
	require.NoError(t, err)
	svc.Handle(f)
	svc.Handle([]byte{0x00})

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Successful)

	resp, err = http.Get(ts.URL + "/recent?limit=1")
	require.NoError(t, err)
	var recent []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recent))
	resp.Body.Close()
	require.Len(t, recent, 1)
	assert.Equal(t, "frame_too_short", recent[0]["error_kind"])

	resp, err = http.Get(ts.URL + "/recent?limit=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/reset")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, svc.Stats().Total)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "linklab_receiver_frames_total")
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	svc := NewService()
	srv := NewServer(testConfig(), svc, log.Discard())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/", nil)
	require.NoError(t, err)
	defer conn.Close()

	f, err := link.EncodeMessage("bye", link.AlgorithmCRC)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, f))
	readReply(t, conn)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 1, svc.Stats().Total)
}

func TestServer_ServeListenerErrorStopsStatsLogger(t *testing.T) {
	cfg := testConfig()
	cfg.StatsInterval = 10 * time.Millisecond
	srv := NewServer(cfg, NewService(), log.Discard())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after listener error")
	}
}

func TestServer_RejectsConnectionsWhileClosing(t *testing.T) {
	srv := NewServer(testConfig(), NewService(), log.Discard())
	srv.drain()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDecodeText(t *testing.T) {
	b, err := decodeText([]byte(" 01 02 ff "))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xFF}, b)

	b, err = decodeText([]byte(`{"frame_hex":"0a0b"}`))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x0B}, b)

	_, err = decodeText([]byte(`{"frame_hex":`))
	assert.ErrorIs(t, err, ErrBadRequest)
}
