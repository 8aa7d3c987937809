package core

// Mailbox is a buffered outbound line queue. Producers (room broadcasts,
// command replies, admin notices) enqueue without blocking; the session's
// write pump is the single consumer.
type Mailbox struct {
	ch chan string
}

// NewMailbox builds a mailbox with the given buffer size.
func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = 32
	}
	return &Mailbox{ch: make(chan string, size)}
}

// Send queues a line. Returns false when the buffer is full and the line
// was dropped.
func (m *Mailbox) Send(line string) bool {
	select {
	case m.ch <- line:
		return true
	default:
		return false
	}
}

// Lines exposes the receive side for the write pump.
func (m *Mailbox) Lines() <-chan string { return m.ch }
