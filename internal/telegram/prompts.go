package telegram

import (
	tele "gopkg.in/telebot.v4"

	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/telegram/keyboard"
)

// Fixed user-facing messages outside the step prompts.
const (
	msgCancelled    = "Отменено. Начните заново с /start."
	msgNothingToDo  = "Вы не в процессе создания поста."
	msgNoSession    = "Начните создание поста с /start."
	msgSubmitted    = "Отправлено на модерацию!"
	msgReviewAction = "Проверьте информацию выше и выберите действие:"
)

func waterbodyKeyboard() *tele.ReplyMarkup {
	return keyboard.Grid(flow.WaterbodyNames(), 2)
}

func tackleKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		flow.Tackles[:3],
		flow.Tackles[3:],
	)
}

func clipKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{flow.LabelSkipClip})
}

func commentChoiceKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{flow.LabelAddComment},
		[]string{flow.LabelSkipComment},
	)
}

func photosKeyboard(hasPhotos bool) *tele.ReplyMarkup {
	if !hasPhotos {
		return keyboard.RemoveKeyboard()
	}
	return keyboard.ReplyButtons([]string{flow.LabelPhotosDone})
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{flow.LabelSubmit},
		[]string{flow.LabelEdit},
		[]string{flow.LabelCancel},
	)
}

// prompt returns the message and keyboard shown when a step becomes current.
func prompt(s flow.Step) (string, *tele.ReplyMarkup) {
	switch s {
	case flow.StepWaterbody:
		return "Привет! <b>1. Выберите водоем:</b>", waterbodyKeyboard()
	case flow.StepCoordinates:
		return "<b>2. Введите координаты:</b>", keyboard.RemoveKeyboard()
	case flow.StepTackle:
		return "<b>3. Выберите снасть:</b>", tackleKeyboard()
	case flow.StepClip:
		return "<b>4. Укажите клипсу:</b>", clipKeyboard()
	case flow.StepDepth:
		return "<b>4. Укажите глубину:</b>", keyboard.RemoveKeyboard()
	case flow.StepTemperature:
		return "<b>5. Укажите температуру воды:</b>", keyboard.RemoveKeyboard()
	case flow.StepCommentChoice:
		return "<b>5. Добавить комментарий?</b>", commentChoiceKeyboard()
	case flow.StepComment:
		return "Введите комментарий:", keyboard.RemoveKeyboard()
	case flow.StepNickname:
		return "<b>6. Ваш игровой ник:</b>", keyboard.RemoveKeyboard()
	case flow.StepPhotos:
		return "<b>7. Прикрепите фото улова</b> (обязательно):\nЗагрузите фото и нажмите '" + flow.LabelPhotosDone + "'.", photosKeyboard(false)
	default:
		return "", nil
	}
}
