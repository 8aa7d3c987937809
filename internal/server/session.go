package server

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/andresmx/salachat-server/internal/core"
)

// Session drives one connection through its lifetime: login, privilege
// check, initial room join, then one command per line until quit, I/O
// failure or expulsion. It runs to completion on its own worker
// goroutine; all server→client text flows through the core session's
// mailbox, drained by a single write pump.
type Session struct {
	srv  *Server
	conn net.Conn
	core *core.Session
	log  zerolog.Logger

	cleanupOnce sync.Once
}

func newSession(srv *Server, conn net.Conn) *Session {
	cs := core.NewSession()
	return &Session{
		srv:  srv,
		conn: conn,
		core: cs,
		log:  srv.log.With().Str("session", cs.ID).Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

// Run executes the session state machine. The deferred cleanup runs
// exactly once no matter how the loop ends.
func (s *Session) Run() {
	defer s.terminate()

	go s.writePump()

	in := bufio.NewScanner(s.conn)

	if !s.authenticate(in) {
		return
	}
	s.checkPrivilege(in)

	initial := core.LobbyRoom
	if s.core.IsAdmin() {
		initial = core.AdminRoom
	}
	s.joinRoom(initial)

	s.srv.audit.Record("CONEXIÓN: " + s.core.Name())
	s.log.Info().Str("user", s.core.Name()).Bool("admin", s.core.IsAdmin()).Msg("user logged in")

	for in.Scan() {
		line := in.Text()
		if !strings.HasPrefix(line, "/") {
			// Free text is never broadcast directly.
			s.send("Aviso: Usa /mensaje <texto> para hablar en la sala.")
			continue
		}
		if quit := s.dispatch(line); quit {
			return
		}
	}
	// Read failure or peer close: implicit quit.
}

// send queues a reply for this session's own client.
func (s *Session) send(line string) {
	s.core.Out.Send(line)
}

// authenticate repeatedly prompts for a username until the client claims
// a free, non-empty name. Returns false if the client disconnected.
func (s *Session) authenticate(in *bufio.Scanner) bool {
	for {
		s.send("SISTEMA: Introduce tu nombre de usuario:")
		if !in.Scan() {
			return false
		}
		name := strings.TrimSpace(in.Text())
		if name != "" && s.srv.sessions.Claim(s.core, name) {
			return true
		}
		s.send("ERROR: El nombre ya está en uso o es inválido.")
	}
}

// checkPrivilege elevates the session iff the username is on the admin
// roster and the shared password matches. Any mismatch, including a
// disconnect mid-prompt, silently downgrades to the basic role.
func (s *Session) checkPrivilege(in *bufio.Scanner) {
	if !s.srv.authority.IsAdmin(s.core.Name()) {
		return
	}
	s.send("SISTEMA: Usuario Administrador detectado. Introduce contraseña:")
	if in.Scan() && s.srv.authority.CheckPassword(in.Text()) {
		s.core.SetAdmin(true)
		s.send("SISTEMA: Acceso concedido como ADMINISTRADOR.")
		return
	}
	s.send("ERROR: Contraseña incorrecta. Accediendo como usuario BÁSICO.")
}

// joinRoom moves the session into the named room, enforcing the role
// restrictions: admins live in jiuston only, non-admins may never enter
// it. On success the previous room (if any) is left; on failure the
// session's state is unchanged.
func (s *Session) joinRoom(name string) bool {
	name = strings.ToLower(name)

	admin := s.core.IsAdmin()
	if admin && name != core.AdminRoom {
		s.send("Aviso: Los administradores no pueden abandonar Jiuston.")
		return false
	}
	if !admin && name == core.AdminRoom {
		s.send("Aviso: Sala reservada a administradores.")
		return false
	}

	current := s.core.Room()
	if current != nil && current.Name() == name {
		s.send("Aviso: Ya estás en " + name + ".")
		return false
	}

	room := s.srv.registry.Get(name)
	if room == nil || !room.Join(s.core.Name(), s.core.Out) {
		s.send("Aviso: Sala llena o inexistente.")
		return false
	}

	if current != nil {
		current.Leave(s.core.Name())
	}
	s.core.SetRoom(room)
	s.send("SISTEMA: Bienvenido a " + name)
	return true
}

// expel delivers the reason to the target and closes its quit gate. The
// target's write pump drains the notice, closes the socket and thereby
// unblocks its read loop into cleanup.
func (s *Session) expel(target *core.Session, reason string) {
	target.Out.Send("SISTEMA: Has sido expulsado. Motivo: " + reason)
	target.CloseGate()
}

// writePump is the only goroutine writing to the socket. It drains the
// mailbox in order; once the quit gate closes it flushes what is
// buffered and closes the connection.
func (s *Session) writePump() {
	defer s.conn.Close()

	w := bufio.NewWriter(s.conn)
	for {
		select {
		case line := <-s.core.Out.Lines():
			if !s.writeLine(w, line) {
				return
			}
		case <-s.core.Quit():
			for {
				select {
				case line := <-s.core.Out.Lines():
					if !s.writeLine(w, line) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (s *Session) writeLine(w *bufio.Writer, line string) bool {
	if _, err := w.WriteString(line + "\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}

// terminate removes the session from its room and the session list,
// records the disconnection and releases the connection. Runs exactly
// once whether triggered by quit, I/O error or expulsion.
func (s *Session) terminate() {
	s.cleanupOnce.Do(func() {
		name := s.core.Name()
		if room := s.core.Room(); room != nil {
			room.Leave(name)
		}
		s.srv.sessions.Remove(s.core)
		if name != "" {
			s.srv.audit.Record("DESCONEXIÓN: " + name)
			s.log.Info().Str("user", name).Msg("user disconnected")
		}
		s.core.CloseGate()
		s.conn.Close()
	})
}
