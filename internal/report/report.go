// Package report assembles a finished wizard session into the payloads shown
// to the submitting user and delivered to moderators.
package report

import (
	"github.com/google/uuid"

	"github.com/xisscag-ops/rr4world/internal/flow"
)

// Submitter identifies the Telegram user who filled the wizard.
type Submitter struct {
	ID       int64
	FullName string
	Username string
}

// Report is the ephemeral snapshot of a session at confirmation time. It
// exists only for the review/submit exchange and is never persisted.
type Report struct {
	ID        string
	Submitter Submitter
	Answers   flow.Answers
	Photos    []string
}

// FromSession snapshots the session's answers and attachments into a report
// with a fresh submission id.
func FromSession(s *flow.Session, sub Submitter) Report {
	answers := make(flow.Answers, len(s.Answers))
	for f, v := range s.Answers {
		answers[f] = v
	}
	photos := make([]string, len(s.Attachments))
	copy(photos, s.Attachments)
	return Report{
		ID:        uuid.NewString(),
		Submitter: sub,
		Answers:   answers,
		Photos:    photos,
	}
}

// Value returns an answer and whether it was collected.
func (r Report) Value(f flow.Field) (string, bool) {
	v, ok := r.Answers[f]
	return v, ok
}
