package emitter

import (
	"context"
	"sync"
	"time"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/wsclient"
)

// WSTransport transmite por una conexión WebSocket que se abre en el primer
// envío y se reutiliza. Si un envío falla, el siguiente vuelve a conectar.
type WSTransport struct {
	URL          string
	WaitReply    bool
	WriteTimeout time.Duration
	ReplyTimeout time.Duration

	mu     sync.Mutex
	client *wsclient.Client
}

// NewWSTransport crea el transporte a partir de la configuración del emisor.
func NewWSTransport(cfg config.EmitterConfig) *WSTransport {
	return &WSTransport{
		URL:          cfg.URL,
		WaitReply:    cfg.WaitReply,
		WriteTimeout: cfg.WriteTimeout,
		ReplyTimeout: cfg.ReplyTimeout,
	}
}

// Transmit envía la trama y, si WaitReply, espera la respuesta del receptor.
func (t *WSTransport) Transmit(ctx context.Context, frame []byte) (*wsclient.Reply, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		c, err := wsclient.Dial(ctx, t.URL)
		if err != nil {
			return nil, err
		}
		if t.WriteTimeout > 0 {
			c.WriteTimeout = t.WriteTimeout
		}
		if t.ReplyTimeout > 0 {
			c.ReplyTimeout = t.ReplyTimeout
		}
		t.client = c
	}

	var (
		reply *wsclient.Reply
		err   error
	)
	if t.WaitReply {
		reply, err = t.client.Exchange(frame)
	} else {
		err = t.client.Send(frame)
	}
	if err != nil {
		t.client.Close()
		t.client = nil
		return nil, err
	}
	return reply, nil
}

// Close cierra la conexión si está abierta.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
