package server

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/andresmx/salachat-server/internal/audit"
	"github.com/andresmx/salachat-server/internal/config"
	"github.com/andresmx/salachat-server/internal/core"
)

// Server is the explicit context object every component hangs off:
// registry, session list, admin authority and audit sink, constructed
// once for the process lifetime. No ambient globals.
type Server struct {
	cfg       config.Config
	log       *zerolog.Logger
	registry  *core.Registry
	sessions  *core.SessionList
	authority *core.Authority
	audit     audit.Sink

	ln      net.Listener
	workers *semaphore.Weighted
}

// New builds the server from configuration: built-in rooms seeded at the
// default capacity, admin roster frozen, worker pool sized to
// MaxClients.
func New(cfg config.Config, logger *zerolog.Logger, sink audit.Sink) *Server {
	if sink == nil {
		sink = audit.Discard
	}
	return &Server{
		cfg:       cfg,
		log:       logger,
		registry:  core.NewRegistry(cfg.RoomDefaultCapacity, cfg.RoomMaxCapacity),
		sessions:  core.NewSessionList(),
		authority: core.NewAuthority(cfg.Admins, cfg.AdminPassword),
		audit:     sink,
		workers:   semaphore.NewWeighted(int64(cfg.MaxClients)),
	}
}

// Registry exposes the room registry, for the status API.
func (s *Server) Registry() *core.Registry { return s.registry }

// Sessions exposes the session list, for the status API.
func (s *Server) Sessions() *core.SessionList { return s.sessions }

// Listen binds the TCP socket. Split from Serve so callers (and tests)
// can learn the bound address before accepting.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listen address. Valid after Listen.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Serve accepts connections until ctx is cancelled, handing each to a
// worker bounded by the pool. A full pool delays the accept of the next
// connection rather than rejecting it.
func (s *Server) Serve(ctx context.Context) error {
	s.audit.Record("INICIO DEL SERVIDOR")
	s.log.Info().Str("addr", s.Addr()).Int("max_clients", s.cfg.MaxClients).Msg("server listening")

	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		if err := s.workers.Acquire(ctx, 1); err != nil {
			conn.Close()
			return nil
		}

		sess := newSession(s, conn)
		s.sessions.Add(sess.core)
		s.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")

		go func() {
			defer s.workers.Release(1)
			sess.Run()
		}()
	}
}

// Run binds and serves in one call.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}
