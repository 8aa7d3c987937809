package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andresmx/salachat-server/internal/core"
)

// dispatch tokenizes one command line and executes it. The first token
// selects the command, case-insensitively. Every error is reported to
// this session as a notice; only /abandona (and /apaga, fatally) ends
// the loop.
func (s *Session) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		s.send("Comando desconocido.")
		return false
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/ayuda":
		s.cmdHelp()
	case "/quien_soy":
		s.cmdWhoAmI()
	case "/salas":
		s.cmdRooms()
	case "/usuarios":
		s.cmdUsers(args)
	case "/unirse":
		s.cmdJoin(args)
	case "/ping":
		s.cmdPing(args)
	case "/mensaje":
		s.cmdMessage(line, fields)
	case "/abandona":
		s.send("Desconectando...")
		return true

	case "/crea":
		s.asAdmin(func() { s.cmdCreate(args) })
	case "/elimina":
		s.asAdmin(func() { s.cmdDelete(args) })
	case "/elimina_forzado":
		s.asAdmin(func() { s.cmdForceDelete(args) })
	case "/cambia_aforo":
		s.asAdmin(func() { s.cmdResize(args) })
	case "/expulsa":
		s.asAdmin(func() { s.cmdKick(args) })
	case "/info_sala":
		s.asAdmin(func() { s.cmdRoomInfo(args) })
	case "/info_usuario":
		s.asAdmin(func() { s.cmdUserInfo(args) })
	case "/mensaje_todos":
		s.asAdmin(func() { s.cmdBroadcastAll(line, fields) })
	case "/apaga":
		s.asAdmin(s.cmdShutdown)

	default:
		s.send("Comando desconocido.")
	}
	return false
}

// asAdmin runs fn only for elevated sessions.
func (s *Session) asAdmin(fn func()) {
	if !s.core.IsAdmin() {
		s.send("ERROR: Solo admin.")
		return
	}
	fn()
}

func (s *Session) cmdHelp() {
	lines := []string{
		"",
		"=== MANUAL DE USUARIO ===",
		"Uso: <parametro_obligatorio> [parametro_opcional]",
		"-------------------------------------------------",
		"/ayuda                  : Muestra este manual.",
		"/quien_soy              : Muestra información de tu sesión.",
		"/salas                  : Lista las salas disponibles.",
		"/usuarios <sala>        : Lista los usuarios conectados en una sala.",
		"/unirse <sala>          : Te mueve a la sala indicada.",
		"/ping <usuario>         : Comprueba si un usuario está en tu sala.",
		"/mensaje <texto>        : Envía un mensaje PÚBLICO a la sala.",
		"/mensaje <txt> <usu>    : Envía un mensaje PRIVADO al usuario.",
		"/abandona               : Cierra la sesión y desconecta.",
	}
	if s.core.IsAdmin() {
		lines = append(lines,
			"",
			"=== COMANDOS DE ADMINISTRADOR ===",
			fmt.Sprintf("/crea <sala> [aforo]    : Crea una sala nueva (Aforo por defecto: %d).", s.srv.cfg.RoomDefaultCapacity),
			"/elimina <sala>         : Elimina una sala si está vacía.",
			"/elimina_forzado <sala> : Elimina sala y mueve usuarios a Recepción.",
			fmt.Sprintf("/cambia_aforo <sala> <n>: Modifica la capacidad máxima (Max: %d).", s.srv.registry.MaxCapacity()),
			"/expulsa <usu> [motivo] : Expulsa a un usuario del servidor.",
			"/info_sala <sala>       : Muestra datos técnicos de una sala.",
			"/info_usuario <usu>     : Muestra datos técnicos de un usuario.",
			"/mensaje_todos <txt>    : Envía un mensaje global a TODAS las salas.",
			"/apaga                  : Apaga el servidor inmediatamente.",
		)
	}
	lines = append(lines, "=================================================", "")
	for _, l := range lines {
		s.send(l)
	}
}

func (s *Session) cmdWhoAmI() {
	role := "Básico"
	if s.core.IsAdmin() {
		role = "Admin"
	}
	roomName := "-"
	if room := s.core.Room(); room != nil {
		roomName = room.Name()
	}
	s.send(fmt.Sprintf("INFO: %s | Rol: %s | Sala: %s | Tiempo: %ds",
		s.core.Name(), role, roomName, int(s.core.Uptime().Seconds())))
}

func (s *Session) cmdRooms() {
	s.send("Salas disponibles:")
	for _, r := range s.srv.registry.List(s.core.IsAdmin()) {
		s.send(fmt.Sprintf("- %s (%d usu)", r.Name, r.Occupants))
	}
}

func (s *Session) cmdUsers(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}
	room := s.srv.registry.Get(strings.ToLower(args[0]))
	if room == nil {
		s.send("Aviso: La sala no existe.")
		return
	}
	s.send(fmt.Sprintf("Usuarios en %s: [%s]", args[0], strings.Join(room.Occupants(), ", ")))
}

func (s *Session) cmdJoin(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}
	s.joinRoom(args[0])
}

func (s *Session) cmdPing(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <usuario>.")
		return
	}
	room := s.core.Room()
	if room != nil && room.Has(args[0]) {
		s.send("PONG: " + args[0] + " está aquí.")
	} else {
		s.send("Aviso: El usuario no está en tu sala.")
	}
}

// cmdMessage implements the disambiguation rule: if the last token is a
// registered username the text is a private message for it, otherwise
// the whole remainder is broadcast to the sender's room. A registered
// user outside the sender's room is reported exactly like a nonexistent
// one, so its location never leaks.
func (s *Session) cmdMessage(line string, fields []string) {
	args := fields[1:]
	if len(args) == 0 {
		s.send("Aviso: Falta <mensaje>.")
		return
	}
	room := s.core.Room()
	if room == nil {
		s.send("Aviso: No estás en ninguna sala.")
		return
	}

	last := args[len(args)-1]
	if s.srv.sessions.Find(last) == nil {
		// Public: the last word is nobody, broadcast everything.
		room.Broadcast(s.core.Name(), strings.TrimSpace(line[len(fields[0]):]))
		return
	}

	dest := last
	switch {
	case dest == s.core.Name():
		s.send("Aviso: No te escribas a ti mismo.")
	case room.Has(dest):
		if len(args) < 2 {
			s.send("Aviso: Falta <mensaje> para el usuario " + dest)
			return
		}
		text := strings.TrimSpace(line[len(fields[0]):strings.LastIndex(line, dest)])
		if text == "" {
			s.send("Aviso: Falta <mensaje> para el usuario " + dest)
			return
		}
		room.Direct(s.core.Name(), dest, text)
	default:
		s.send("Aviso: El usuario '" + dest + "' no existe en esta sala.")
	}
}

func (s *Session) cmdCreate(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}

	capacity := s.srv.cfg.RoomDefaultCapacity
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			s.send("Aviso: Aforo inválido.")
			return
		}
		capacity = n
	}

	applied, clamped, err := s.srv.registry.Create(strings.ToLower(args[0]), capacity)
	if err != nil {
		s.send("Aviso: La sala ya existía.")
		return
	}
	if clamped {
		s.send(fmt.Sprintf("Aviso: El aforo se ha limitado al máximo permitido (%d).", s.srv.registry.MaxCapacity()))
	}
	s.send(fmt.Sprintf("SISTEMA: Sala creada con aforo %d.", applied))
}

func (s *Session) cmdDelete(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}
	switch err := s.srv.registry.Delete(strings.ToLower(args[0])); err {
	case nil:
		s.send("SISTEMA: Sala eliminada.")
	case core.ErrRoomProtected:
		s.send("Aviso: Sala protegida.")
	default:
		s.send("Aviso: Sala ocupada o inexistente.")
	}
}

func (s *Session) cmdForceDelete(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}
	moved, err := s.srv.registry.ForceDelete(strings.ToLower(args[0]), core.LobbyRoom, s.srv.sessions)
	switch err {
	case nil:
		s.send("SISTEMA: Borrado forzado OK.")
		s.log.Info().Str("room", args[0]).Int("moved", moved).Msg("room force-deleted")
	case core.ErrNoCapacity:
		s.send("Aviso: No caben en recepción.")
	default:
		s.send("Aviso: Sala inexistente o protegida.")
	}
}

func (s *Session) cmdResize(args []string) {
	if len(args) < 2 {
		s.send("Aviso: Faltan datos.")
		return
	}
	room := s.srv.registry.Get(strings.ToLower(args[0]))
	if room == nil {
		s.send("Aviso: La sala no existe.")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		s.send("Aviso: Aforo inválido o menor que usuarios actuales.")
		return
	}
	if max := s.srv.registry.MaxCapacity(); n > max {
		s.send(fmt.Sprintf("Aviso: Limitado al máx (%d).", max))
		n = max
	}
	if room.Resize(n) {
		s.send("SISTEMA: Aforo cambiado.")
	} else {
		s.send("Aviso: Aforo inválido o menor que usuarios actuales.")
	}
}

func (s *Session) cmdKick(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <usuario>.")
		return
	}
	user := args[0]
	reason := "Sin motivo especificado"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	target := s.srv.sessions.Find(user)
	if target == nil || target.IsAdmin() {
		s.send("Aviso: Usuario no encontrado o es Admin.")
		return
	}

	s.expel(target, reason)
	s.send("SISTEMA: Has expulsado a " + user)
	s.srv.audit.Record(fmt.Sprintf("EXPULSIÓN: %s | Motivo: %s", user, reason))
	s.log.Info().Str("user", user).Str("reason", reason).Msg("user expelled")
}

func (s *Session) cmdRoomInfo(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <sala>.")
		return
	}
	room := s.srv.registry.Get(strings.ToLower(args[0]))
	if room == nil {
		s.send("Aviso: No existe.")
		return
	}
	s.send(room.Describe())
}

func (s *Session) cmdUserInfo(args []string) {
	if len(args) < 1 {
		s.send("Aviso: Falta <usuario>.")
		return
	}
	target := s.srv.sessions.Find(args[0])
	if target == nil {
		s.send("Aviso: No conectado.")
		return
	}
	roomName := "-"
	if room := target.Room(); room != nil {
		roomName = room.Name()
	}
	s.send(fmt.Sprintf("INFO %s: Sala=%s, Tiempo=%ds", args[0], roomName, int(target.Uptime().Seconds())))
}

func (s *Session) cmdBroadcastAll(line string, fields []string) {
	if len(fields) < 2 {
		s.send("Aviso: Falta <mensaje>.")
		return
	}
	text := strings.TrimSpace(line[len(fields[0]):])
	for _, room := range s.srv.registry.Rooms() {
		room.Broadcast("ADMIN-GLOBAL", text)
	}
}

// cmdShutdown kills the process on the spot: no notice to other
// sessions, no draining of in-flight messages.
func (s *Session) cmdShutdown() {
	s.log.Info().Str("user", s.core.Name()).Msg("shutdown requested, exiting")
	os.Exit(0)
}
