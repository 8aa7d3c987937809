// Package audit records the chat server's event trail: startup,
// connections, disconnections and expulsions. It is separate from
// process logging; audit lines are part of the server's observable
// behavior and survive restarts.
package audit

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink records one event per call.
type Sink interface {
	Record(event string) error
}

// Line renders an event the way it is persisted: "[<timestamp>] <event>".
func Line(at time.Time, event string) string {
	return fmt.Sprintf("[%s] %s", at.Format(time.RFC3339), event)
}

// FileSink appends one line per event to a file. The file is opened per
// record so an externally rotated or removed file never wedges the sink.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink builds a sink appending to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Record appends "[<timestamp>] <event>" to the file.
func (f *FileSink) Record(event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer fh.Close()

	if _, err := fmt.Fprintln(fh, Line(time.Now(), event)); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// Multi fans an event out to every sink. Failures are logged and
// swallowed; auditing must never disturb chat traffic.
type Multi struct {
	log   *zerolog.Logger
	sinks []Sink
}

// NewMulti builds a fan-out sink.
func NewMulti(logger *zerolog.Logger, sinks ...Sink) *Multi {
	return &Multi{log: logger, sinks: sinks}
}

// Record delivers the event to each sink in order.
func (m *Multi) Record(event string) error {
	for _, s := range m.sinks {
		if err := s.Record(event); err != nil && m.log != nil {
			m.log.Warn().Err(err).Str("event", event).Msg("audit sink failed")
		}
	}
	return nil
}

// Discard is a Sink that drops everything, for tests.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(string) error { return nil }
