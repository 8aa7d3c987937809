package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/andresmx/salachat-server/internal/audit"
	"github.com/andresmx/salachat-server/internal/config"
	"github.com/andresmx/salachat-server/internal/log"
)

// startTestServer runs a server on an ephemeral port. "root" and
// "root2" are on the admin roster with the default password.
func startTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.Admins = []string{"root", "root2"}
	if mutate != nil {
		mutate(&cfg)
	}

	srv := New(cfg, log.NewWithWriter("error", io.Discard), audit.Discard)
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx)

	return srv
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialServer(t *testing.T, srv *Server) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("dial %s: %v", srv.Addr(), err)
	}
	t.Cleanup(func() { conn.Close() })

	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if _, err := fmt.Fprintln(c.conn, line); err != nil {
		c.t.Fatalf("send %q: %v", line, err)
	}
}

// expect reads lines until one contains substr and returns it.
func (c *testClient) expect(substr string) string {
	c.t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.conn.SetReadDeadline(deadline)
		line, err := c.r.ReadString('\n')
		if err != nil {
			c.t.Fatalf("waiting for %q: %v", substr, err)
		}
		if strings.Contains(line, substr) {
			return strings.TrimRight(line, "\n")
		}
	}
	c.t.Fatalf("no line containing %q received", substr)
	return ""
}

// collectUntil returns every line read before the first one containing
// substr.
func (c *testClient) collectUntil(substr string) []string {
	c.t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	var out []string
	for {
		c.conn.SetReadDeadline(deadline)
		line, err := c.r.ReadString('\n')
		if err != nil {
			c.t.Fatalf("collecting until %q: %v", substr, err)
		}
		if strings.Contains(line, substr) {
			return out
		}
		out = append(out, strings.TrimRight(line, "\n"))
	}
}

// expectQuiet asserts no line arrives within the window.
func (c *testClient) expectQuiet(window time.Duration) {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(window))
	line, err := c.r.ReadString('\n')
	if err == nil {
		c.t.Fatalf("expected silence, got %q", line)
	}
	if nerr, ok := err.(net.Error); !ok || !nerr.Timeout() {
		c.t.Fatalf("expected read timeout, got %v", err)
	}
}

// expectClosed asserts the server closes the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()

	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, err := c.r.ReadString('\n'); err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				c.t.Fatal("connection still open")
			}
			return
		}
	}
}

// login walks the client through the username prompt (and, for roster
// admins, the password prompt) up to the initial room welcome.
func (c *testClient) login(name, password string) {
	c.t.Helper()

	c.expect("Introduce tu nombre de usuario")
	c.send(name)
	if password != "" {
		c.expect("Introduce contraseña")
		c.send(password)
	}
	c.expect("Bienvenido a")
}

func loginBasic(t *testing.T, srv *Server, name string) *testClient {
	t.Helper()
	c := dialServer(t, srv)
	c.login(name, "")
	return c
}

func loginAdmin(t *testing.T, srv *Server, name string) *testClient {
	t.Helper()
	c := dialServer(t, srv)
	c.login(name, "1234")
	return c
}
