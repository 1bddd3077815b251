package receiver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
)

// ErrBadRequest marca mensajes de texto sin una trama utilizable.
var ErrBadRequest = errors.New("receiver: bad request")

// Reply es la respuesta JSON que recibe el emisor por cada mensaje.
type Reply struct {
	Status         string         `json:"status"`
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Algorithm      link.Algorithm `json:"algorithm,omitempty"`
	Corrections    int            `json:"corrections"`
	ProcessingTime float64        `json:"processing_time"`
}

// NewReply arma la respuesta de una trama procesada. Si falla, Message
// lleva la causa en lugar del texto recuperado.
func NewReply(res link.Result) Reply {
	r := Reply{
		Status:         "processed",
		Success:        res.Success,
		Message:        res.Message,
		Algorithm:      res.Algorithm,
		Corrections:    res.Corrections(),
		ProcessingTime: res.ProcessingTime.Seconds(),
	}
	if !res.Success {
		r.Message = res.Cause
	}
	return r
}

type textFrame struct {
	FrameHex string `json:"frame_hex"`
}

// decodeText extrae la trama de un mensaje de texto: JSON
// {"frame_hex": ...} o hex plano.
func decodeText(msg []byte) ([]byte, error) {
	s := strings.TrimSpace(string(msg))
	if strings.HasPrefix(s, "{") {
		var tf textFrame
		if err := json.Unmarshal([]byte(s), &tf); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
		}
		if tf.FrameHex == "" {
			return nil, fmt.Errorf("%w: missing frame_hex", ErrBadRequest)
		}
		s = tf.FrameHex
	}
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", ErrBadRequest, err)
	}
	return b, nil
}

// Server expone un Service por WebSocket y HTTP.
type Server struct {
	cfg      config.ReceiverConfig
	svc      *Service
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewServer crea un servidor para svc.
func NewServer(cfg config.ReceiverConfig, svc *Service, logger logrus.FieldLogger) *Server {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		cfg: cfg,
		svc: svc,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler devuelve las rutas HTTP.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/recent", s.handleRecent)
	mux.HandleFunc("/reset", s.handleReset)
	mux.Handle(s.cfg.MetricsPath, s.svc.Metrics().Handler())
	mux.HandleFunc(s.cfg.Path, s.handleWS)
	return mux
}

// Run escucha en la dirección configurada hasta que ctx se cancela.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve acepta conexiones en ln hasta que ctx se cancela y luego cierra
// ordenadamente.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.log.WithFields(logrus.Fields{"addr": ln.Addr().String(), "path": s.cfg.Path}).Info("receiver listening")

	if s.cfg.StatsInterval > 0 && s.track() {
		go s.logStats(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		cancel()
		s.drain()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("stopping receiver")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("receiver shutdown failed: %w", err)
	}
	s.drain()
	s.log.Info("receiver stopped")
	return nil
}

// track registra una conexión nueva. Devuelve false si el servidor ya se
// está cerrando.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

// drain rechaza conexiones nuevas y espera a las abiertas y al logger de
// estadísticas. Shutdown no sigue las conexiones websocket secuestradas.
func (s *Server) drain() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) logStats(ctx context.Context) {
	defer s.wg.Done()
	t := time.NewTicker(s.cfg.StatsInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st := s.svc.Stats()
			if st.Total == 0 {
				continue
			}
			s.log.WithFields(logrus.Fields{
				"total":        st.Total,
				"successful":   st.Successful,
				"failed":       st.Failed,
				"success_rate": fmt.Sprintf("%.1f%%", st.SuccessRate*100),
				"corrected":    st.HammingCorrected,
			}).Info("receiver stats")
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, "receiver shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	m := s.svc.Metrics()
	m.ActiveConnections.Inc()
	defer m.ActiveConnections.Dec()

	logger := s.log.WithField("client", r.RemoteAddr)
	logger.Info("client connected")
	defer logger.Info("client disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	write := func(msgType int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		return conn.WriteMessage(msgType, data)
	}

	// al cerrar, liberar ReadMessage
	go func() {
		<-ctx.Done()
		writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
		writeMu.Unlock()
		conn.Close()
	}()

	if s.cfg.MaxFrameBytes > 0 {
		conn.SetReadLimit(s.cfg.MaxFrameBytes)
	}
	if s.cfg.PingInterval > 0 {
		wait := s.cfg.PingInterval + s.cfg.PongTimeout
		_ = conn.SetReadDeadline(time.Now().Add(wait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wait))
		})
		go s.ping(ctx, write)
	}

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Warn("connection closed unexpectedly")
			}
			return
		}

		var reply any
		switch msgType {
		case websocket.BinaryMessage:
			reply = NewReply(s.svc.Handle(msg))
		case websocket.TextMessage:
			b, err := decodeText(msg)
			if err != nil {
				logger.WithError(err).Warn("discarding text message")
				reply = map[string]string{"status": "error", "message": err.Error()}
				break
			}
			reply = NewReply(s.svc.Handle(b))
		default:
			continue
		}

		data, err := json.Marshal(reply)
		if err != nil {
			logger.WithError(err).Error("encoding reply")
			continue
		}
		if err := write(websocket.TextMessage, data); err != nil {
			logger.WithError(err).Debug("reply not delivered")
			return
		}
	}
}

func (s *Server) ping(ctx context.Context, write func(int, []byte) error) {
	t := time.NewTicker(s.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.svc.Stats())
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, s.svc.Recent(limit))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.svc.Reset()
	s.log.Info("receiver stats reset")
	writeJSON(w, map[string]string{"status": "reset"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
