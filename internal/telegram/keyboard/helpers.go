// Package keyboard builds the reply keyboards the wizard drives users with.
package keyboard

import tele "gopkg.in/telebot.v4"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Grid splits a flat list of labels into rows with up to n labels per row
// and builds a reply keyboard from them.
func Grid(labels []string, n int) *tele.ReplyMarkup {
	if n <= 1 {
		rows := make([][]string, 0, len(labels))
		for _, l := range labels {
			rows = append(rows, []string{l})
		}
		return ReplyButtons(rows...)
	}
	var rows [][]string
	for i := 0; i < len(labels); i += n {
		end := i + n
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return ReplyButtons(rows...)
}
