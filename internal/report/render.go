package report

import (
	"fmt"
	"strings"

	"github.com/xisscag-ops/rr4world/internal/flow"
)

// Payload is a rendered report ready for delivery. When Photos is non-empty
// the delivery collaborator binds Text as the caption of the first photo and
// sends the rest bare; otherwise Text is sent on its own.
type Payload struct {
	Text   string
	Photos []string
}

const channelTag = "rr4world"

// Hashtag renders the channel hashtag for a waterbody name.
func Hashtag(waterbody string) string {
	slug, ok := flow.WaterbodySlug(waterbody)
	if !ok {
		return waterbody
	}
	return fmt.Sprintf("#%s@%s", slug, channelTag)
}

// body renders the labeled report lines in wizard step order, omitting every
// field that was skipped or never prompted for.
func body(r Report, nickLabel string) string {
	var b strings.Builder
	if wb, ok := r.Value(flow.FieldWaterbody); ok {
		fmt.Fprintf(&b, "<b>Локация:</b> %s\n", Hashtag(wb))
	}
	if coords, ok := r.Value(flow.FieldCoordinates); ok {
		fmt.Fprintf(&b, "<b>Координаты:</b> %s\n", coords)
	}
	if clip, ok := r.Value(flow.FieldClip); ok {
		fmt.Fprintf(&b, "<b>Клипса:</b> %s\n", clip)
	}
	if depth, ok := r.Value(flow.FieldDepth); ok {
		fmt.Fprintf(&b, "<b>Глубина:</b> %s\n", depth)
	}
	if temp, ok := r.Value(flow.FieldTemperature); ok {
		fmt.Fprintf(&b, "<b>Температура:</b> %s\n", temp)
	}
	if comment, ok := r.Value(flow.FieldComment); ok {
		fmt.Fprintf(&b, "<b>Комментарий:</b>\n<blockquote>%s</blockquote>\n", comment)
	}
	if nick, ok := r.Value(flow.FieldNickname); ok {
		fmt.Fprintf(&b, "<b>%s:</b> %s", nickLabel, nick)
	}
	return b.String()
}

// Preview renders the review shown to the submitting user before dispatch.
func Preview(r Report) Payload {
	return Payload{
		Text:   "<b>Предпросмотр:</b>\n\n" + body(r, "Ник"),
		Photos: r.Photos,
	}
}

// ModeratorPost renders the payload delivered to every moderator chat,
// including the channel offer link.
func ModeratorPost(r Report, offerURL string) Payload {
	text := body(r, "Игровой ник") +
		"\n\n🎁 Автору отправлено 200 кофе\n" +
		fmt.Sprintf("<a href='%s'>ПРЕДЛОЖИТЬ ПОСТ</a>", offerURL)
	return Payload{Text: text, Photos: r.Photos}
}

// ServiceInfo renders the follow-up message identifying the submitter for
// moderators.
func ServiceInfo(r Report) string {
	userLink := fmt.Sprintf("<a href='tg://user?id=%d'>%s</a>", r.Submitter.ID, r.Submitter.FullName)
	contact := fmt.Sprintf("ID: %d", r.Submitter.ID)
	if r.Submitter.Username != "" {
		contact = "@" + r.Submitter.Username
	}
	return fmt.Sprintf("<b>👤 Отправитель:</b> %s (%s)\n<b>Заявка:</b> <code>%s</code>", userLink, contact, r.ID)
}
