package journey

import (
	"context"
	"time"

	"github.com/sydneyguide/sydneymcp/pkg/cache"
)

// DefaultSessionTTL bounds how long an abandoned session is kept.
const DefaultSessionTTL = 6 * time.Hour

// Directory maps session ids to session records. Implementations must make
// each call atomic: a Get racing a Delete sees the record either fully
// present or fully gone.
type Directory interface {
	// Put stores s under s.ID, replacing any previous record.
	Put(ctx context.Context, s *Session) error
	// Get returns the record for id or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the record for id or returns ErrSessionNotFound.
	Delete(ctx context.Context, id string) error
}

// MemoryDirectory keeps sessions in process memory. Every Put refreshes the
// session's TTL, so only sessions that stop receiving updates expire.
type MemoryDirectory struct {
	sessions *cache.TTLCache[string, *Session]
}

// NewMemoryDirectory creates an in-memory directory. A non-positive ttl
// uses DefaultSessionTTL.
func NewMemoryDirectory(ttl time.Duration) *MemoryDirectory {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 4
	if cleanup > 5*time.Minute {
		cleanup = 5 * time.Minute
	}
	return &MemoryDirectory{
		sessions: cache.NewTTLCache[string, *Session](ttl, cleanup, 0),
	}
}

// Put implements Directory.
func (d *MemoryDirectory) Put(_ context.Context, s *Session) error {
	d.sessions.Set(s.ID, s.Clone())
	return nil
}

// Get implements Directory.
func (d *MemoryDirectory) Get(_ context.Context, id string) (*Session, error) {
	s, ok := d.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Delete implements Directory.
func (d *MemoryDirectory) Delete(_ context.Context, id string) error {
	if !d.sessions.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet
// collected.
func (d *MemoryDirectory) Len() int {
	return d.sessions.Count()
}

// Close stops the expiry janitor and drops every stored session.
func (d *MemoryDirectory) Close() error {
	d.sessions.Stop()
	d.sessions.Clear()
	return nil
}
