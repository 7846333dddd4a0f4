package console

import (
	"io"
	"sync"
)

// output writes to the console and, while session logging is on, to the
// session log.
type output struct {
	mu  sync.Mutex
	w   io.Writer
	tee io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tee != nil {
		o.tee.Write(p)
	}
	return o.w.Write(p)
}

func (o *output) setTee(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tee = w
}
