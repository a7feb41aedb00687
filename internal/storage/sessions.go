package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xisscag-ops/rr4world/internal/flow"
)

// Sessions is a Postgres-backed session.Store implementation.
type Sessions struct {
	db *sqlx.DB
}

// NewSessions wraps a connected database into a session store.
func NewSessions(db *sqlx.DB) *Sessions {
	return &Sessions{db: db}
}

type sessionRow struct {
	ChatID      int64     `db:"chat_id"`
	CurrentStep string    `db:"current_step"`
	Answers     []byte    `db:"answers"`
	Attachments []byte    `db:"attachments"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toRow(s *flow.Session) (sessionRow, error) {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return sessionRow{}, fmt.Errorf("marshal answers: %w", err)
	}
	attachments, err := json.Marshal(s.Attachments)
	if err != nil {
		return sessionRow{}, fmt.Errorf("marshal attachments: %w", err)
	}
	return sessionRow{
		ChatID:      s.ChatID,
		CurrentStep: string(s.Current),
		Answers:     answers,
		Attachments: attachments,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func (r sessionRow) toSession() (*flow.Session, error) {
	s := &flow.Session{
		ChatID:    r.ChatID,
		Current:   flow.Step(r.CurrentStep),
		Answers:   make(flow.Answers),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	if len(r.Attachments) > 0 {
		if err := json.Unmarshal(r.Attachments, &s.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments: %w", err)
		}
	}
	return s, nil
}

// Get returns the session for a chat, or nil when none exists.
func (p *Sessions) Get(ctx context.Context, chatID int64) (*flow.Session, error) {
	var row sessionRow
	err := p.db.GetContext(ctx, &row,
		`SELECT chat_id, current_step, answers, attachments, created_at, updated_at
		 FROM sessions WHERE chat_id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return row.toSession()
}

// Put stores the session, replacing any previous one for the chat.
func (p *Sessions) Put(ctx context.Context, s *flow.Session) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}
	_, err = p.db.NamedExecContext(ctx,
		`INSERT INTO sessions (chat_id, current_step, answers, attachments, created_at, updated_at)
		 VALUES (:chat_id, :current_step, :answers, :attachments, :created_at, :updated_at)
		 ON CONFLICT (chat_id) DO UPDATE SET
		   current_step = EXCLUDED.current_step,
		   answers = EXCLUDED.answers,
		   attachments = EXCLUDED.attachments,
		   updated_at = EXCLUDED.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete removes the session for a chat.
func (p *Sessions) Delete(ctx context.Context, chatID int64) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Reap evicts sessions with no activity since the deadline.
func (p *Sessions) Reap(ctx context.Context, idleSince time.Time) (int, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, idleSince)
	if err != nil {
		return 0, fmt.Errorf("reap sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}
