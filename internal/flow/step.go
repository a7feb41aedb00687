// Package flow implements the report wizard: a directed graph of dialogue
// steps with answer-dependent branching, per-chat sessions, and the
// validation rules each step applies to inbound events.
package flow

// Step identifies a single point in the wizard dialogue.
type Step string

const (
	StepWaterbody     Step = "waterbody"
	StepCoordinates   Step = "coordinates"
	StepTackle        Step = "tackle"
	StepClip          Step = "clip"
	StepDepth         Step = "depth"
	StepTemperature   Step = "temperature"
	StepCommentChoice Step = "comment_choice"
	StepComment       Step = "comment"
	StepNickname      Step = "nickname"
	StepPhotos        Step = "photos"
	StepConfirm       Step = "confirm"
)

// Field names a collected answer. A skipped optional field is simply absent
// from the answers map; no sentinel values are stored.
type Field string

const (
	FieldWaterbody     Field = "waterbody"
	FieldCoordinates   Field = "coordinates"
	FieldTackle        Field = "tackle"
	FieldClip          Field = "clip"
	FieldDepth         Field = "depth"
	FieldTemperature   Field = "temperature"
	FieldCommentChoice Field = "comment_choice"
	FieldComment       Field = "comment"
	FieldNickname      Field = "nickname"
)

// Answers maps collected fields to their raw values.
type Answers map[Field]string

// EventKind classifies an inbound update for the wizard.
type EventKind string

const (
	EventText  EventKind = "text"
	EventPhoto EventKind = "photo"
)

// Event is the transport-agnostic inbound message the wizard consumes.
type Event struct {
	Kind     EventKind
	Text     string
	MediaRef string
}

// TextEvent builds a text event.
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// PhotoEvent builds a photo event carrying an opaque media reference.
func PhotoEvent(ref string) Event {
	return Event{Kind: EventPhoto, MediaRef: ref}
}

// MaxAttachments bounds the number of photos collected per report.
const MaxAttachments = 10

// Reply-keyboard labels recognized by the wizard.
const (
	LabelSkipClip    = "Пропустить клипсу"
	LabelAddComment  = "Добавить комментарий"
	LabelSkipComment = "Пропустить комментарий"
	LabelPhotosDone  = "Готово"
	LabelSubmit      = "Отправить пост"
	LabelEdit        = "Редактировать"
	LabelCancel      = "Отмена"
	TackleMakh       = "Мах"
	TackleMatch      = "Матч"
	WaterbodyMednoye = "оз.Медное"
)

// Tackles is the fixed tackle option set in keyboard order.
var Tackles = []string{"Мах", "Спиннинг", "Донка", "Матч", "Морская ловля"}

// Waterbodies maps the visible waterbody name to its channel hashtag slug,
// in keyboard order.
var Waterbodies = []struct {
	Name string
	Slug string
}{
	{"оз.Комариное", "комариное"},
	{"оз.Лосиное", "лосиное"},
	{"р.Вьюнок", "вьюнок"},
	{"оз.Старый Острог", "старый_острог"},
	{"р.Белая", "белая"},
	{"оз.Куори", "куори"},
	{"оз.Медвежье", "медвежье"},
	{"р.Волхов", "волхов"},
	{"р.Северный Донец", "северный_донец"},
	{"р.Сура", "сура"},
	{"Ладожское оз.", "ладожское"},
	{"оз.Янтарное", "янтарное"},
	{"Ладожский архипелаг", "ладожский_архипелаг"},
	{"р.Ахтуба", "ахтуба"},
	{"оз.Медное", "медное"},
	{"р.Нижняя Тунгуска", "нижняя_тунгуска"},
	{"р.Яма", "яма"},
	{"Норвежское море", "норвежское_море"},
}

// WaterbodyNames returns the visible option set in keyboard order.
func WaterbodyNames() []string {
	names := make([]string, len(Waterbodies))
	for i, w := range Waterbodies {
		names[i] = w.Name
	}
	return names
}

// WaterbodySlug resolves a waterbody name to its hashtag slug.
func WaterbodySlug(name string) (string, bool) {
	for _, w := range Waterbodies {
		if w.Name == name {
			return w.Slug, true
		}
	}
	return "", false
}
