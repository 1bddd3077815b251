// Package wsclient envía tramas al receptor por WebSocket.
package wsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout es el deadline de escritura cuando no se configura otro.
const DefaultWriteTimeout = 5 * time.Second

// Reply es la respuesta JSON del receptor.
type Reply struct {
	Status         string  `json:"status"`
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	Algorithm      string  `json:"algorithm"`
	Corrections    int     `json:"corrections"`
	ProcessingTime float64 `json:"processing_time"`
}

// Client mantiene una conexión abierta para enviar varias tramas.
type Client struct {
	conn         *websocket.Conn
	WriteTimeout time.Duration
	ReplyTimeout time.Duration
}

// Dial se conecta al receptor en url.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("conectando a %s: %w", url, err)
	}
	return &Client{conn: conn, WriteTimeout: DefaultWriteTimeout, ReplyTimeout: DefaultWriteTimeout}, nil
}

// Send envía la trama como mensaje binario.
func (c *Client) Send(frame []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// ReadReply espera la respuesta del receptor a la última trama.
func (c *Client) ReadReply() (*Reply, error) {
	if c.ReplyTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.ReplyTimeout)); err != nil {
			return nil, err
		}
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("leyendo respuesta: %w", err)
	}
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("respuesta inválida: %w", err)
	}
	return &r, nil
}

// Exchange envía una trama y devuelve la respuesta.
func (c *Client) Exchange(frame []byte) (*Reply, error) {
	if err := c.Send(frame); err != nil {
		return nil, err
	}
	return c.ReadReply()
}

// Close cierra la conexión con un close frame normal.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// SendFrame se conecta al servidor WebSocket en url y envía la trama.
func SendFrame(ctx context.Context, url string, frame []byte) error {
	c, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Send(frame)
}
