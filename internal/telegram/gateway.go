package telegram

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// gateway adapts *tele.Bot to the Outbound and dispatch.Sender interfaces.
// All outgoing text uses HTML parse mode, matching the rendered payloads.
type gateway struct {
	bot *tele.Bot
}

func (g *gateway) Send(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	_, err := g.bot.Send(tele.ChatID(chatID), text, opts)
	return err
}

func (g *gateway) SendAlbum(_ context.Context, chatID int64, photos []string, caption string) error {
	_, err := g.bot.SendAlbum(tele.ChatID(chatID), buildAlbum(photos, caption), tele.ModeHTML)
	return err
}

// SendText satisfies dispatch.Sender for moderator deliveries.
func (g *gateway) SendText(ctx context.Context, recipient int64, text string) error {
	return g.Send(ctx, recipient, text, nil)
}

// SendMediaGroup satisfies dispatch.Sender for moderator deliveries.
func (g *gateway) SendMediaGroup(ctx context.Context, recipient int64, photos []string, caption string) error {
	return g.SendAlbum(ctx, recipient, photos, caption)
}

// buildAlbum binds the caption to the first photo and leaves the rest bare.
// The delivery collaborator treats this shape as a contract.
func buildAlbum(photos []string, caption string) tele.Album {
	album := make(tele.Album, 0, len(photos))
	for i, id := range photos {
		p := &tele.Photo{File: tele.File{FileID: id}}
		if i == 0 {
			p.Caption = caption
		}
		album = append(album, p)
	}
	return album
}
