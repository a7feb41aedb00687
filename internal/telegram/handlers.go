package telegram

import (
	tele "gopkg.in/telebot.v4"

	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/report"
	"github.com/xisscag-ops/rr4world/internal/telegram/helpers"
)

// submitterFrom extracts the identity attached to dispatched reports.
func submitterFrom(c tele.Context) report.Submitter {
	user := c.Sender()
	if user == nil {
		return report.Submitter{}
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return report.Submitter{
		ID:       user.ID,
		FullName: name,
		Username: user.Username,
	}
}

// HandleStart serves /start: it always begins a fresh wizard.
func (ctl *Controller) HandleStart(c tele.Context) error {
	ctx := helpers.WithHandler(c, "start")
	return ctl.Start(ctx, c.Chat().ID)
}

// HandleCancel serves /cancel.
func (ctl *Controller) HandleCancel(c tele.Context) error {
	ctx := helpers.WithHandler(c, "cancel")
	return ctl.Cancel(ctx, c.Chat().ID)
}

// HandleText routes any text message through the wizard.
func (ctl *Controller) HandleText(c tele.Context) error {
	ctx := helpers.WithHandler(c, "wizard_text")
	return ctl.Handle(ctx, c.Chat().ID, submitterFrom(c), flow.TextEvent(c.Text()))
}

// HandlePhoto routes a photo message through the wizard. Telegram sends the
// largest size available; its file id is the opaque attachment reference.
func (ctl *Controller) HandlePhoto(c tele.Context) error {
	ctx := helpers.WithHandler(c, "wizard_photo")
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}
	return ctl.Handle(ctx, c.Chat().ID, submitterFrom(c), flow.PhotoEvent(msg.Photo.FileID))
}
