// Package secrets holds credentials that can be rotated without a restart.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
)

// Source produces the current value of a credential.
type Source func() (string, error)

// FileSource returns a Source that reads a secret from path, such as a
// mounted secret volume. Surrounding whitespace is trimmed.
func FileSource(path string) Source {
	return func() (string, error) {
		b, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(b)), nil
	}
}

// Credential is a secret value that can be reloaded from its Source.
type Credential struct {
	mu     sync.RWMutex
	value  string
	source Source
}

// NewCredential creates a Credential, calling source once for its initial value.
func NewCredential(source Source) (*Credential, error) {
	v, err := source()
	if err != nil {
		return nil, fmt.Errorf("initial credential load: %w", err)
	}
	return &Credential{value: v, source: source}, nil
}

// Value returns the current secret.
func (c *Credential) Value() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Reload fetches a fresh value. On error the previous value is kept.
func (c *Credential) Reload() error {
	v, err := c.source()
	if err != nil {
		return fmt.Errorf("reload credential: %w", err)
	}
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	return nil
}

// Redacted returns a masked form safe for logs: the first two characters
// followed by ****, or just **** for short values.
func (c *Credential) Redacted() string {
	v := c.Value()
	switch {
	case v == "":
		return ""
	case len(v) <= 4:
		return "****"
	default:
		return v[:2] + "****"
	}
}

// ReloadOn reloads c each time one of sigs arrives, until ctx is done.
func ReloadOn(ctx context.Context, c *Credential, name string, sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := c.Reload(); err != nil {
					slog.Error("credential reload failed", "credential", name, "error", err)
					continue
				}
				slog.Info("credential reloaded", "credential", name, "value", c.Redacted())
			}
		}
	}()
}
