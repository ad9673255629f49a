package ai

import "sync"

// Credentials holds the process-wide scoring API key. It is set by an
// out-of-band configuration call (env at startup, or a per-request
// override) and read by every ranking invocation. Invalidation on a
// classified auth failure is the only other mutation path; last-write
// wins under concurrent requests.
type Credentials struct {
	mu  sync.RWMutex
	key string
}

func NewCredentials(key string) *Credentials {
	return &Credentials{key: key}
}

// Set installs a new key. Empty keys are ignored so a blank override
// cannot clobber a working credential.
func (c *Credentials) Set(key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
}

func (c *Credentials) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// Invalidate clears a known-bad key so subsequent requests stop
// retrying it.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	c.key = ""
	c.mu.Unlock()
}
