// Package dispatch delivers finalized reports to every configured moderator
// chat. Recipients are independent: one failed delivery never aborts the
// rest, and failures stay operational (logged) rather than user-facing.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xisscag-ops/rr4world/internal/logger"
	"github.com/xisscag-ops/rr4world/internal/report"
)

// Sender is the transport primitive set used for delivery.
type Sender interface {
	SendText(ctx context.Context, recipient int64, text string) error
	SendMediaGroup(ctx context.Context, recipient int64, photos []string, caption string) error
}

// Options tune retry behaviour for a single recipient delivery.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the total time spent on one recipient.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// Dispatcher fans a report out to all recipients concurrently.
type Dispatcher struct {
	sender Sender
	opts   Options
}

// New constructs a dispatcher over the given transport.
func New(sender Sender, opts Options) *Dispatcher {
	return &Dispatcher{sender: sender, opts: opts.withDefaults()}
}

// Outcome records one recipient's delivery result.
type Outcome struct {
	Recipient int64
	Err       error
}

// Result aggregates per-recipient outcomes of a dispatch.
type Result struct {
	Outcomes []Outcome
}

// Delivered counts successful deliveries.
func (r Result) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts failed deliveries.
func (r Result) Failed() int {
	return len(r.Outcomes) - r.Delivered()
}

// Dispatch delivers the report to every recipient, waiting for all attempts
// to finish before returning. The moderator post goes out as a media group
// with the text bound to the first photo, followed by the submitter service
// info; without photos the post is text-only.
func (d *Dispatcher) Dispatch(ctx context.Context, r report.Report, offerURL string, recipients []int64) Result {
	post := report.ModeratorPost(r, offerURL)
	info := report.ServiceInfo(r)

	outcomes := make([]Outcome, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient int64) {
			defer wg.Done()
			err := d.deliver(ctx, recipient, post, info)
			outcomes[i] = Outcome{Recipient: recipient, Err: err}
		}(i, recipient)
	}
	wg.Wait()

	res := Result{Outcomes: outcomes}
	logger.Info(ctx, "dispatch", "dispatch.done",
		slog.String("report_id", r.ID),
		slog.Int("recipients", len(recipients)),
		slog.Int("delivered", res.Delivered()),
		slog.Int("failed", res.Failed()),
	)
	return res
}

func (d *Dispatcher) deliver(ctx context.Context, recipient int64, post report.Payload, info string) error {
	deadlineCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	// A retry resumes from the first undelivered part so the media group is
	// never sent twice to the same recipient.
	parts := make([]func() error, 0, 2)
	if len(post.Photos) > 0 {
		parts = append(parts, func() error {
			return d.sender.SendMediaGroup(deadlineCtx, recipient, post.Photos, post.Text)
		})
	} else {
		parts = append(parts, func() error {
			return d.sender.SendText(deadlineCtx, recipient, post.Text)
		})
	}
	parts = append(parts, func() error {
		return d.sender.SendText(deadlineCtx, recipient, info)
	})

	delivered := 0
	run := func() error {
		for delivered < len(parts) {
			if err := parts[delivered](); err != nil {
				return err
			}
			delivered++
		}
		return nil
	}

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadlineCtx.Err(); err != nil {
			lastErr = err
			break
		}
		if lastErr = run(); lastErr == nil {
			if attempt > 1 {
				logger.Info(ctx, "dispatch", "send.retry.success",
					slog.Int64("recipient", recipient),
					slog.Int("attempt", attempt),
				)
			}
			return nil
		}
		if !shouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			lastErr = deadlineCtx.Err()
		case <-timer.C:
			continue
		}
		break
	}

	logger.Error(ctx, "dispatch", "send.fail",
		slog.Int64("recipient", recipient),
		slog.String("err", logger.SanitizeLimit(lastErr.Error(), 256)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", logger.Took(start)),
	)
	return lastErr
}
