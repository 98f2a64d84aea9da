package net

import (
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/infinia/server/internal/config"
	"github.com/infinia/server/internal/world"
	"go.uber.org/zap"
)

// Server upgrades HTTP requests to WebSocket sessions.
// New sessions are handed to the game loop via a channel.
type Server struct {
	cfg      config.NetworkConfig
	listener net.Listener
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	log      *zap.Logger
	closeCh  chan struct{}
}

// NewServer binds cfg.BindAddress. Call AcceptLoop to start serving.
func NewServer(cfg config.NetworkConfig, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		listener: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		newConns: make(chan *Session, 64),
		log:      log,
		closeCh:  make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, s)
	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	err := s.httpSrv.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("http serve failed", zap.Error(err))
	}
}

// ServeHTTP upgrades one connection. The client authenticates with the
// token query parameter; its identity is derived from that token.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, world.IdentityFromToken(token), s.cfg, s.log)
	sess.Start()

	s.log.Info("client connected",
		zap.Uint64("session", id),
		zap.String("identity", sess.Identity.Short()),
		zap.String("ip", sess.IP))

	select {
	case s.newConns <- sess:
	case <-s.closeCh:
		sess.Close()
	default:
		s.log.Warn("connection queue full, rejecting")
		sess.Close()
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.httpSrv.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
