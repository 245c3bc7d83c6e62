package term

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ResetSequence restores a client terminal before disconnect: clear
// attributes, clear screen, cursor home, reset scroll region, show
// cursor. It is sent on every termination path.
var ResetSequence = []byte("\x1b[0m\x1b[2J\x1b[H\x1b[r\x1b[?25h")

const queueDepth = 64

// Forwarder is the single outbound path for one session. Bytes are
// queued FIFO and drained by one worker goroutine issuing at most one
// in-flight write, so output produced in order arrives in order. A full
// queue drops the buffer rather than blocking the caller; callers hold
// the registry guard and must never block on transport I/O.
type Forwarder struct {
	w     io.WriteCloser
	queue chan []byte
	done  chan struct{}
	log   zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewForwarder starts the forwarding worker for the given channel.
func NewForwarder(w io.WriteCloser, log zerolog.Logger) *Forwarder {
	f := &Forwarder{
		w:     w,
		queue: make(chan []byte, queueDepth),
		done:  make(chan struct{}),
		log:   log,
	}
	go f.run()
	return f
}

func (f *Forwarder) run() {
	defer close(f.done)
	defer f.w.Close()

	for buf := range f.queue {
		if _, err := f.w.Write(buf); err != nil {
			f.log.Debug().Err(err).Msg("outbound write failed, forwarding stopped")
			return
		}
	}
}

// Send queues p for delivery. The bytes are copied, so the caller may
// reuse p. Sending to a closed forwarder is a no-op.
func (f *Forwarder) Send(p []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	buf := make([]byte, len(p))
	copy(buf, p)

	select {
	case f.queue <- buf:
	default:
		f.log.Debug().Int("size", len(p)).Msg("outbound queue full, dropping buffer")
	}
}

// Write implements io.Writer so the forwarder can serve as a render
// surface sink. It never fails; transport errors stop the worker and are
// surfaced through logs only.
func (f *Forwarder) Write(p []byte) (int, error) {
	f.Send(p)
	return len(p), nil
}

// Close drains queued buffers, closes the transport channel, and stops
// the worker. It blocks until the worker has exited and is safe to call
// more than once.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	<-f.done
}
