package core

import (
	"strings"
	"testing"
	"time"
)

// mustLine waits for the next line on a mailbox.
func mustLine(t *testing.T, m *Mailbox) string {
	t.Helper()

	select {
	case line := <-m.Lines():
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("expected a line, mailbox stayed empty")
		return ""
	}
}

// mustLineContaining drains lines until one contains substr.
func mustLineContaining(t *testing.T, m *Mailbox, substr string) string {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case line := <-m.Lines():
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("no line containing %q received", substr)
			return ""
		}
	}
}

// noLine asserts the mailbox stays quiet for a short window.
func noLine(t *testing.T, m *Mailbox) {
	t.Helper()

	select {
	case line := <-m.Lines():
		t.Fatalf("expected silence, got %q", line)
	case <-time.After(100 * time.Millisecond):
	}
}
