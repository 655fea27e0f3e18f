package source

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// CookieFile holds a session cookie persisted to a local file. The source
// rotates the cookie via Set-Cookie, so concurrent page fetches race on the
// refresh; all reads and writes go through one mutex to keep a stale cookie
// from clobbering a newer one.
type CookieFile struct {
	mu    sync.Mutex
	path  string
	value string
}

func NewCookieFile(path string) *CookieFile {
	return &CookieFile{path: path}
}

// Load reads the cookie from disk. Called once at client construction;
// a missing file is a configuration problem, not a transient one.
func (c *CookieFile) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	c.value = strings.TrimSpace(string(data))
	return nil
}

func (c *CookieFile) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set updates the in-memory cookie and persists it back to the file under
// the same lock, so the read-modify-write is atomic across fetchers.
func (c *CookieFile) Set(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	if err := os.WriteFile(c.path, []byte(value), 0600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}
