package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/logger"
)

// Memory is the default in-memory Store implementation.
type Memory struct {
	mu       sync.RWMutex
	sessions map[int64]*flow.Session
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[int64]*flow.Session)}
}

// Get returns the session for a chat if it exists.
func (m *Memory) Get(_ context.Context, chatID int64) (*flow.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[chatID], nil
}

// Put stores the session, replacing any previous one for the chat.
func (m *Memory) Put(_ context.Context, s *flow.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ChatID] = s
	return nil
}

// Delete removes the session for a chat.
func (m *Memory) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

// Reap evicts sessions with no activity since the deadline.
func (m *Memory) Reap(_ context.Context, idleSince time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for chatID, s := range m.sessions {
		if s.IdleSince(idleSince) {
			delete(m.sessions, chatID)
			evicted++
		}
	}
	return evicted, nil
}

// Len reports the number of active sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reaper periodically evicts idle sessions until the context is done. It is
// not safety-critical; it only bounds store growth.
func Reaper(ctx context.Context, st Store, idleTimeout time.Duration) {
	if idleTimeout <= 0 {
		return
	}
	interval := idleTimeout / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.Reap(ctx, time.Now().UTC().Add(-idleTimeout))
			if err != nil {
				logger.Warn(ctx, "session", "reap.fail", slog.String("err", err.Error()))
				continue
			}
			if n > 0 {
				logger.Info(ctx, "session", "reap",
					slog.Int("evicted", n),
					slog.Duration("idle_timeout", idleTimeout),
				)
			}
		}
	}
}
