// Package recorder writes per-session asciinema v2 casts of rendered
// output.
package recorder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const eventQueueDepth = 256

// header is the asciinema v2 cast header line.
type header struct {
	Version   int   `json:"version"`
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Timestamp int64 `json:"timestamp"`
}

// event is one asciinema v2 event line: [offset, type, data].
type event struct {
	Offset float64
	Type   string
	Data   string
}

func (e event) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Offset, e.Type, e.Data})
}

// Recorder records one session's output stream in asciinema v2
// JSON-Lines format. It implements io.Writer so it can be teed into the
// session's render sink; Write is an in-memory enqueue drained by one
// worker goroutine, so callers rendering under the registry guard never
// wait on disk. A full queue drops the event.
type Recorder struct {
	w       io.Writer
	file    *os.File // set only when the recorder owns the file
	started time.Time

	queue chan event
	done  chan struct{}

	mu       sync.Mutex
	closed   bool
	writeErr error
}

// New creates a recorder writing to a fresh cast file at path. The
// header records the dimensions the cast was captured at.
func New(path string, width, height int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create cast file: %w", err)
	}

	r, err := start(file, width, height)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewWithWriter creates a recorder writing to w, for tests.
func NewWithWriter(w io.Writer, width, height int) (*Recorder, error) {
	return start(w, width, height)
}

// start writes the header synchronously, then hands the sink to the
// event worker.
func start(w io.Writer, width, height int) (*Recorder, error) {
	r := &Recorder{
		w:       w,
		started: time.Now(),
		queue:   make(chan event, eventQueueDepth),
		done:    make(chan struct{}),
	}
	if err := r.writeHeader(width, height); err != nil {
		return nil, err
	}
	go r.run()
	return r, nil
}

func (r *Recorder) writeHeader(width, height int) error {
	h := header{
		Version:   2,
		Width:     width,
		Height:    height,
		Timestamp: r.started.Unix(),
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal cast header: %w", err)
	}
	if _, err := r.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write cast header: %w", err)
	}
	return nil
}

// run drains queued events onto the sink. A sink error stops the
// recording; the error surfaces through Close.
func (r *Recorder) run() {
	defer close(r.done)

	for e := range r.queue {
		data, err := json.Marshal(e)
		if err != nil {
			r.setWriteErr(fmt.Errorf("failed to marshal cast event: %w", err))
			return
		}
		if _, err := r.w.Write(append(data, '\n')); err != nil {
			r.setWriteErr(fmt.Errorf("failed to write cast event: %w", err))
			return
		}
	}
}

func (r *Recorder) setWriteErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeErr = err
}

// Write queues one output event carrying p. It never blocks and never
// fails; writing to a closed recorder is a no-op.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return len(p), nil
	}

	e := event{
		Offset: time.Since(r.started).Seconds(),
		Type:   "o",
		Data:   string(p),
	}
	select {
	case r.queue <- e:
	default:
	}
	return len(p), nil
}

// Close drains queued events, stops the worker, and closes the cast
// file if the recorder owns one. It returns the first sink error the
// worker hit, if any, and is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done

	r.mu.Lock()
	err := r.writeErr
	r.mu.Unlock()

	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
