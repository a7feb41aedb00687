package flow

import "time"

// Session is the per-chat mutable record of wizard progress: the current
// step, collected answers, and attached photos. At most one session exists
// per chat at any time.
type Session struct {
	ChatID      int64
	Current     Step
	Answers     Answers
	Attachments []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession creates a fresh session positioned at the given step.
func NewSession(chatID int64, first Step) *Session {
	now := time.Now().UTC()
	return &Session{
		ChatID:    chatID,
		Current:   first,
		Answers:   make(Answers),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges accepted field updates into the answers.
func (s *Session) Apply(updates Answers) {
	for f, v := range updates {
		s.Answers[f] = v
	}
	s.Touch()
}

// AddAttachment appends a media reference, respecting the attachment bound.
// It reports whether the reference was actually stored.
func (s *Session) AddAttachment(ref string) bool {
	if len(s.Attachments) >= MaxAttachments {
		return false
	}
	s.Attachments = append(s.Attachments, ref)
	s.Touch()
	return true
}

// Advance moves the session to the given step.
func (s *Session) Advance(next Step) {
	s.Current = next
	s.Touch()
}

// Touch refreshes the idle-timeout clock.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// IdleSince reports whether the session has seen no activity since deadline.
func (s *Session) IdleSince(deadline time.Time) bool {
	return s.UpdatedAt.Before(deadline)
}
