package invoker

import "bytes"

// cappedWriter buffers at most max bytes and silently drops the rest.
// It always reports a full write so the child never sees EPIPE-like errors.
type cappedWriter struct {
	buf       bytes.Buffer
	max       int64
	truncated bool
	discarded int64
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := w.max - int64(w.buf.Len())
	if remaining <= 0 {
		w.truncated = true
		w.discarded += int64(n)
		return n, nil
	}
	if int64(n) > remaining {
		w.truncated = true
		w.discarded += int64(n) - remaining
		p = p[:remaining]
	}
	w.buf.Write(p)
	return n, nil
}

func (w *cappedWriter) Bytes() []byte { return w.buf.Bytes() }

func (w *cappedWriter) String() string { return w.buf.String() }
