package repl

import (
	"bytes"
	"strings"
	"sync"
)

// Output collects the text printed by evaluated fragments until the REPL
// drains it above the prompt.
type Output struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.buf.Write(p)
}

// Drain returns and discards the collected text without its final newline.
func (o *Output) Drain() string {
	if o == nil {
		return ""
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s := strings.TrimSuffix(o.buf.String(), "\n")
	o.buf.Reset()

	return s
}
