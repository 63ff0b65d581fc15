// Package egress manages the pool of outbound network identities used by
// the acquisition client.
package egress

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Identity describes one egress network path. Credentials are optional.
type Identity struct {
	Host     string
	Port     int
	Username string
	Password string
}

// URL renders the identity as an http proxy URL.
func (id Identity) URL() string {
	if id.Username != "" {
		return fmt.Sprintf("http://%s:%s@%s:%d", id.Username, id.Password, id.Host, id.Port)
	}
	return fmt.Sprintf("http://%s:%d", id.Host, id.Port)
}

// Addr renders host:port for Chrome's --proxy-server flag.
func (id Identity) Addr() string {
	return fmt.Sprintf("%s:%d", id.Host, id.Port)
}

// Pool rotates identities round-robin and excludes ones observed to fail.
// The acquisition client is the only writer; the mutex keeps the pool safe
// for the progress server's read path.
type Pool struct {
	mu         sync.Mutex
	identities []Identity
	failed     map[string]struct{}
	cursor     int
}

// NewPool wraps a fixed identity list.
func NewPool(identities []Identity) *Pool {
	return &Pool{
		identities: identities,
		failed:     make(map[string]struct{}),
	}
}

// LoadPool parses a newline-delimited file of host:port or
// host:port:user:pass entries. Malformed lines are logged and skipped.
func LoadPool(path string, logger *zap.Logger) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy list: %w", err)
	}
	defer f.Close()

	var identities []Identity
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		id, err := parseIdentity(raw)
		if err != nil {
			logger.Warn("skipping malformed proxy entry",
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		identities = append(identities, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy list: %w", err)
	}

	logger.Info("loaded egress identities", zap.Int("count", len(identities)))
	return NewPool(identities), nil
}

func parseIdentity(raw string) (Identity, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 4 {
		return Identity{}, fmt.Errorf("expected host:port or host:port:user:pass, got %q", raw)
	}
	host := strings.TrimSpace(parts[0])
	if host == "" {
		return Identity{}, fmt.Errorf("empty host in %q", raw)
	}
	port, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || port <= 0 || port > 65535 {
		return Identity{}, fmt.Errorf("invalid port in %q", raw)
	}
	id := Identity{Host: host, Port: port}
	if len(parts) == 4 {
		id.Username = parts[2]
		id.Password = parts[3]
	}
	if _, err := url.Parse(id.URL()); err != nil {
		return Identity{}, fmt.Errorf("unusable proxy url: %w", err)
	}
	return id, nil
}

// Next returns the next non-failed identity, or nil when the pool is empty
// or fully failed; callers treat nil as a direct connection.
func (p *Pool) Next() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.identities) == 0 {
		return nil
	}
	for range p.identities {
		id := p.identities[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.identities)
		if _, bad := p.failed[id.Addr()]; !bad {
			copied := id
			return &copied
		}
	}
	return nil
}

// MarkFailed excludes an identity from future selection.
func (p *Pool) MarkFailed(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[id.Addr()] = struct{}{}
}

// Size returns the total and usable identity counts.
func (p *Pool) Size() (total, usable int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.identities), len(p.identities) - len(p.failed)
}
