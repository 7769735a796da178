package store

import (
	"context"
	"sync"

	"github.com/roach88/cmdvault/internal/record"
)

// Shared lets several owners hold handles to one physical backend.
//
// Each Handle is an independent Backend; calls through any handle are
// serialized on one mutex, and the underlying backend is closed when the
// last handle is closed.
type Shared struct {
	mu      sync.Mutex
	backend Backend
	refs    int
}

// Share wraps b for shared ownership. b must not be used directly afterwards.
func Share(b Backend) *Shared {
	return &Shared{backend: b}
}

// Handle returns a new reference to the shared backend.
func (s *Shared) Handle() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs++
	return &sharedHandle{owner: s}
}

func (s *Shared) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.refs > 0 {
		return nil
	}
	return s.backend.Close()
}

type sharedHandle struct {
	owner  *Shared
	closed sync.Once
}

func (h *sharedHandle) do(fn func(b Backend) error) error {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	return fn(h.owner.backend)
}

func (h *sharedHandle) Add(ctx context.Context, text string) error {
	return h.do(func(b Backend) error { return b.Add(ctx, text) })
}

func (h *sharedHandle) Upsert(ctx context.Context, rec record.Record) error {
	return h.do(func(b Backend) error { return b.Upsert(ctx, rec) })
}

func (h *sharedHandle) InsertOrReplace(ctx context.Context, rec record.Record) error {
	return h.do(func(b Backend) error { return b.InsertOrReplace(ctx, rec) })
}

func (h *sharedHandle) Query(ctx context.Context, f record.Filter) ([]record.Record, error) {
	var out []record.Record
	err := h.do(func(b Backend) error {
		var err error
		out, err = b.Query(ctx, f)
		return err
	})
	return out, err
}

func (h *sharedHandle) Delete(ctx context.Context, rec record.Record) error {
	return h.do(func(b Backend) error { return b.Delete(ctx, rec) })
}

func (h *sharedHandle) Clear(ctx context.Context) error {
	return h.do(func(b Backend) error { return b.Clear(ctx) })
}

func (h *sharedHandle) Summary(ctx context.Context) ([]UsageGroup, error) {
	var out []UsageGroup
	err := h.do(func(b Backend) error {
		var err error
		out, err = b.Summary(ctx)
		return err
	})
	return out, err
}

func (h *sharedHandle) Name() string {
	return h.owner.backend.Name()
}

// Close releases this handle. Closing a handle twice is a no-op.
func (h *sharedHandle) Close() error {
	var err error
	h.closed.Do(func() { err = h.owner.release() })
	return err
}
