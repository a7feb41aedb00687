package flow

import (
	"fmt"
	"strings"
)

// Status classifies the outcome of checking an event against a step.
type Status int

const (
	// Accepted means the event matched: merge Updates, append Media if set,
	// and advance to the next step.
	Accepted Status = iota
	// Rejected means the event did not match: the session is unchanged and
	// the user is re-prompted with Hint.
	Rejected
	// Collected means a photo was taken in (or the limit was hit): Notice is
	// shown and the session stays on the current step.
	Collected
)

// Outcome is the result of validating one inbound event at one step.
type Outcome struct {
	Status  Status
	Updates Answers
	Media   string
	Hint    string
	Notice  string
}

func accepted(updates Answers) Outcome {
	return Outcome{Status: Accepted, Updates: updates}
}

func rejected(hint string) Outcome {
	return Outcome{Status: Rejected, Hint: hint}
}

// Per-step guidance shown when an event is rejected. Users never see
// internal errors; these fixed strings are the whole vocabulary.
var hints = map[Step]string{
	StepWaterbody:     "Выберите водоем кнопкой.",
	StepCoordinates:   "Пожалуйста, введите координаты текстом.",
	StepTackle:        "Выберите снасть кнопкой: " + strings.Join(Tackles, ", ") + ".",
	StepClip:          "Укажите клипсу текстом или нажмите '" + LabelSkipClip + "'.",
	StepDepth:         "Пожалуйста, укажите глубину текстом.",
	StepTemperature:   "Пожалуйста, укажите температуру воды текстом.",
	StepCommentChoice: "Нажмите '" + LabelAddComment + "' или '" + LabelSkipComment + "'.",
	StepComment:       "Пожалуйста, введите комментарий текстом.",
	StepNickname:      "Пожалуйста, введите игровой ник текстом.",
	StepPhotos:        "Пожалуйста, присылайте фотографии или нажмите '" + LabelPhotosDone + "'.",
	StepConfirm:       "Пожалуйста, выберите действие на клавиатуре: '" + LabelSubmit + "', '" + LabelEdit + "' или '" + LabelCancel + "'.",
}

// Hint returns the fixed re-prompt guidance for a step.
func Hint(s Step) string {
	return hints[s]
}

// reservedLabels are keyboard labels that must never be swallowed as
// free-text answers when pressed at the wrong step.
var reservedLabels = map[string]struct{}{
	LabelPhotosDone:  {},
	LabelSubmit:      {},
	LabelEdit:        {},
	LabelAddComment:  {},
	LabelSkipComment: {},
	LabelSkipClip:    {},
}

// Validator checks inbound events against the graph's step declarations and
// produces the data mutation each accepted event performs.
type Validator struct {
	graph *Graph
}

// NewValidator binds a validator to its graph.
func NewValidator(g *Graph) *Validator {
	return &Validator{graph: g}
}

// Check validates one event at the session's current step. The session is
// never mutated here; the caller applies the outcome.
func (v *Validator) Check(step Step, ev Event, sess *Session) Outcome {
	if step == StepPhotos {
		return v.checkPhotos(ev, sess)
	}

	if !v.graph.Accepts(step, ev) {
		return rejected(Hint(step))
	}

	// The clip skip label advances without writing the field: a skipped
	// optional answer stays absent instead of becoming a sentinel value.
	if step == StepClip && ev.Text == LabelSkipClip {
		return accepted(nil)
	}

	if len(v.graph.Options(step)) == 0 {
		if _, reserved := reservedLabels[ev.Text]; reserved {
			return rejected(Hint(step))
		}
		if strings.TrimSpace(ev.Text) == "" {
			return rejected(Hint(step))
		}
	}

	field, ok := v.graph.Field(step)
	if !ok {
		return accepted(nil)
	}
	return accepted(Answers{field: ev.Text})
}

func (v *Validator) checkPhotos(ev Event, sess *Session) Outcome {
	switch {
	case ev.Kind == EventPhoto:
		if len(sess.Attachments) >= MaxAttachments {
			return Outcome{
				Status: Collected,
				Notice: fmt.Sprintf("Вы уже прикрепили максимальное количество фотографий (%d). Нажмите '%s', чтобы завершить.", MaxAttachments, LabelPhotosDone),
			}
		}
		return Outcome{
			Status: Collected,
			Media:  ev.MediaRef,
			Notice: fmt.Sprintf("Фото добавлено (%d/%d).", len(sess.Attachments)+1, MaxAttachments),
		}
	case ev.Kind == EventText && ev.Text == LabelPhotosDone:
		if len(sess.Attachments) == 0 {
			return rejected("Нужно хотя бы одно фото!")
		}
		return accepted(nil)
	default:
		return rejected(Hint(StepPhotos))
	}
}
