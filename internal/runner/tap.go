package runner

import (
	"bytes"
	"io"
	"sync"
)

// recorder accumulates a stream in arrival order. Writes and snapshots
// may come from different goroutines once a run has been abandoned.
type recorder struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int // 0 means unlimited
	truncated bool
}

func newRecorder(limit int) *recorder {
	return &recorder{limit: limit}
}

func (r *recorder) Write(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit <= 0 {
		r.buf.Write(p)
		return
	}
	remaining := r.limit - r.buf.Len()
	if len(p) > remaining {
		r.truncated = true
		if remaining <= 0 {
			return
		}
		p = p[:remaining]
	}
	r.buf.Write(p)
}

// Bytes returns a copy of everything recorded so far.
func (r *recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.buf.Bytes())
}

func (r *recorder) Truncated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.truncated
}

// tap is the writer handed to exec.Cmd for one stream. Each chunk is
// recorded, forwarded unchanged, and reported to the run's event loop.
type tap struct {
	rec      *recorder
	pass     io.Writer
	activity chan<- struct{}
}

func (t *tap) Write(p []byte) (int, error) {
	t.rec.Write(p)
	if _, err := t.pass.Write(p); err != nil {
		return 0, err
	}
	// A pending signal already guarantees a rearm.
	select {
	case t.activity <- struct{}{}:
	default:
	}
	return len(p), nil
}
