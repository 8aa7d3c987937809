package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresmx/salachat-server/internal/log"
)

const (
	maxAttempts   = 5
	retryInterval = 10 * time.Second
)

// A minimal line client: server lines go to stdout, stdin lines go to
// the server. Connecting retries up to five times at ten-second
// intervals; exhausting them exits with code 1.
func main() {
	addr := flag.String("addr", "127.0.0.1:1234", "server address")
	flag.Parse()

	logger := log.New("info")

	conn := dialWithRetry(*addr, logger)
	if conn == nil {
		logger.Error().Str("addr", *addr).Msg("could not connect, giving up")
		os.Exit(1)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		in := bufio.NewScanner(conn)
		for in.Scan() {
			fmt.Println(in.Text())
		}
	}()

	go func() {
		stdin := bufio.NewScanner(os.Stdin)
		for stdin.Scan() {
			if _, err := fmt.Fprintln(conn, stdin.Text()); err != nil {
				return
			}
		}
		conn.Close()
	}()

	// Server closed the connection (quit acknowledged, expulsion or
	// shutdown): exit cleanly.
	<-done
}

func dialWithRetry(addr string, logger *zerolog.Logger) net.Conn {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			return conn
		}
		logger.Warn().Err(err).Int("attempt", attempt).Str("addr", addr).Msg("connection failed")
		if attempt < maxAttempts {
			time.Sleep(retryInterval)
		}
	}
	return nil
}
