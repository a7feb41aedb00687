package telegram

import (
	"context"
	"strings"
	"sync"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/xisscag-ops/rr4world/internal/dispatch"
	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/logger"
	"github.com/xisscag-ops/rr4world/internal/report"
	"github.com/xisscag-ops/rr4world/internal/session"
	"github.com/xisscag-ops/rr4world/internal/telegram/keyboard"
)

// Outbound abstracts message emission toward a chat so the controller can be
// exercised without a live bot.
type Outbound interface {
	Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error
	SendAlbum(ctx context.Context, chatID int64, photos []string, caption string) error
}

// keyedLocks serializes event handling per chat: telebot runs handlers on
// independent goroutines, but a single conversation's events must be applied
// in arrival order. Entries are refcounted and dropped once the last holder
// releases, so the map does not grow with every chat ever seen.
type keyedLocks struct {
	mu sync.Mutex
	m  map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(id int64) func() {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[int64]*chatLock)
	}
	l, ok := k.m[id]
	if !ok {
		l = &chatLock{}
		k.m[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.m, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}

// Controller drives the wizard: it resolves each inbound event against the
// session and the flow graph and emits the resulting prompt or dispatch.
type Controller struct {
	graph      *flow.Graph
	validator  *flow.Validator
	store      session.Store
	disp       *dispatch.Dispatcher
	out        Outbound
	offerURL   string
	recipients []int64
	locks      keyedLocks
}

// NewController wires the wizard components together.
func NewController(g *flow.Graph, st session.Store, d *dispatch.Dispatcher, out Outbound, recipients []int64, offerURL string) *Controller {
	return &Controller{
		graph:      g,
		validator:  flow.NewValidator(g),
		store:      st,
		disp:       d,
		out:        out,
		offerURL:   offerURL,
		recipients: recipients,
	}
}

// Start creates a fresh session for the chat, discarding any previous one,
// and prompts the first wizard step.
func (ctl *Controller) Start(ctx context.Context, chatID int64) error {
	unlock := ctl.locks.lock(chatID)
	defer unlock()
	return ctl.startLocked(ctx, chatID)
}

func (ctl *Controller) startLocked(ctx context.Context, chatID int64) error {
	sess := flow.NewSession(chatID, ctl.graph.First())
	if err := ctl.store.Put(ctx, sess); err != nil {
		logger.Error(ctx, "flow", "session.put.fail", slog.String("err", err.Error()))
	}
	text, kb := prompt(sess.Current)
	return ctl.out.Send(ctx, chatID, text, kb)
}

// Cancel destroys the chat's session. It is idempotent: cancelling without a
// session acknowledges with a distinct message and changes nothing.
func (ctl *Controller) Cancel(ctx context.Context, chatID int64) error {
	unlock := ctl.locks.lock(chatID)
	defer unlock()
	return ctl.cancelLocked(ctx, chatID)
}

func (ctl *Controller) cancelLocked(ctx context.Context, chatID int64) error {
	sess, err := ctl.store.Get(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "flow", "session.get.fail", slog.String("err", err.Error()))
	}
	if sess == nil {
		return ctl.out.Send(ctx, chatID, msgNothingToDo, keyboard.RemoveKeyboard())
	}
	logger.Info(ctx, "flow", "session.cancel", slog.String("step", string(sess.Current)))
	if err := ctl.store.Delete(ctx, chatID); err != nil {
		logger.Error(ctx, "flow", "session.delete.fail", slog.String("err", err.Error()))
	}
	return ctl.out.Send(ctx, chatID, msgCancelled, keyboard.RemoveKeyboard())
}

// Handle processes one inbound event for a chat in strict per-chat order.
func (ctl *Controller) Handle(ctx context.Context, chatID int64, sub report.Submitter, ev flow.Event) error {
	unlock := ctl.locks.lock(chatID)
	defer unlock()

	// The cancel label short-circuits any step, matching the /cancel command.
	if ev.Kind == flow.EventText && strings.EqualFold(strings.TrimSpace(ev.Text), flow.LabelCancel) {
		return ctl.cancelLocked(ctx, chatID)
	}

	sess, err := ctl.store.Get(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "flow", "session.get.fail", slog.String("err", err.Error()))
	}
	if sess == nil {
		return ctl.out.Send(ctx, chatID, msgNoSession, keyboard.RemoveKeyboard())
	}

	if sess.Current == flow.StepConfirm {
		return ctl.handleConfirm(ctx, sess, sub, ev)
	}

	outcome := ctl.validator.Check(sess.Current, ev, sess)
	switch outcome.Status {
	case flow.Rejected:
		return ctl.out.Send(ctx, chatID, outcome.Hint, nil)

	case flow.Collected:
		if outcome.Media != "" {
			sess.AddAttachment(outcome.Media)
			if err := ctl.store.Put(ctx, sess); err != nil {
				logger.Error(ctx, "flow", "session.put.fail", slog.String("err", err.Error()))
			}
		}
		return ctl.out.Send(ctx, chatID, outcome.Notice, photosKeyboard(len(sess.Attachments) > 0))

	default: // flow.Accepted
		sess.Apply(outcome.Updates)
		next, err := ctl.graph.Next(sess.Current, sess.Answers)
		if err != nil {
			// Validate guarantees totality at startup; reaching here is a bug.
			logger.Error(ctx, "flow", "transition.fail",
				slog.String("step", string(sess.Current)),
				slog.String("err", err.Error()),
			)
			return ctl.out.Send(ctx, chatID, flow.Hint(sess.Current), nil)
		}
		sess.Advance(next)
		if err := ctl.store.Put(ctx, sess); err != nil {
			logger.Error(ctx, "flow", "session.put.fail", slog.String("err", err.Error()))
		}
		logger.Debug(ctx, "flow", "step.advance",
			slog.String("step", string(next)),
		)
		if next == flow.StepConfirm {
			return ctl.sendReview(ctx, sess, sub)
		}
		text, kb := prompt(next)
		return ctl.out.Send(ctx, chatID, text, kb)
	}
}

// sendReview renders the preview at the confirm step: the report text as the
// caption of the first photo, the remaining photos bare, then the action
// keyboard.
func (ctl *Controller) sendReview(ctx context.Context, sess *flow.Session, sub report.Submitter) error {
	rep := report.FromSession(sess, sub)
	preview := report.Preview(rep)
	if len(preview.Photos) > 0 {
		if err := ctl.out.SendAlbum(ctx, sess.ChatID, preview.Photos, preview.Text); err != nil {
			logger.Error(ctx, "flow", "review.album.fail", slog.String("err", err.Error()))
		}
		return ctl.out.Send(ctx, sess.ChatID, msgReviewAction, confirmKeyboard())
	}
	return ctl.out.Send(ctx, sess.ChatID, preview.Text+"\n\n"+msgReviewAction, confirmKeyboard())
}

func (ctl *Controller) handleConfirm(ctx context.Context, sess *flow.Session, sub report.Submitter, ev flow.Event) error {
	if ev.Kind != flow.EventText {
		return ctl.out.Send(ctx, sess.ChatID, flow.Hint(flow.StepConfirm), nil)
	}
	switch ev.Text {
	case flow.LabelSubmit:
		return ctl.submit(ctx, sess, sub)
	case flow.LabelEdit:
		// Editing restarts the wizard from scratch; no prior answers survive.
		return ctl.startLocked(ctx, sess.ChatID)
	default:
		return ctl.out.Send(ctx, sess.ChatID, flow.Hint(flow.StepConfirm), nil)
	}
}

// submit dispatches the report to all recipients and always ends the
// session. Individual delivery failures are operational only: the user sees
// a success acknowledgment as long as the dispatch ran.
func (ctl *Controller) submit(ctx context.Context, sess *flow.Session, sub report.Submitter) error {
	rep := report.FromSession(sess, sub)
	res := ctl.disp.Dispatch(ctx, rep, ctl.offerURL, ctl.recipients)

	if err := ctl.store.Delete(ctx, sess.ChatID); err != nil {
		logger.Error(ctx, "flow", "session.delete.fail", slog.String("err", err.Error()))
	}

	logger.Info(ctx, "flow", "report.submitted",
		slog.String("report_id", rep.ID),
		slog.Int("photos", len(rep.Photos)),
		slog.Int("delivered", res.Delivered()),
		slog.Int("failed", res.Failed()),
	)
	return ctl.out.Send(ctx, sess.ChatID, msgSubmitted, keyboard.RemoveKeyboard())
}
