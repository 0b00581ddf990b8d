// Package domain defines the core domain models for the form bot.
package domain

// State is one position in the fixed questionnaire sequence.
type State string

const (
	StateStart          State = "start"
	StateSelectCategory State = "select_category"
	StateQ1             State = "q1"
	StateQ2             State = "q2"
	StateQ3             State = "q3"
	StateQ4             State = "q4"
	StateQ5             State = "q5"
	StateQ6             State = "q6"
	StateQ7             State = "q7"
	// StateQ8 is the voice prompt relay. It is entered and left inside the
	// transition out of StateQ7 and never waits for user input.
	StateQ8  State = "q8"
	StateQ9  State = "q9"
	StateQ10 State = "q10"
	StateQ11 State = "q11"
	StateQ12 State = "q12"
	StateQ13 State = "q13"
	StateQ14 State = "q14"
	StateQ15 State = "q15"
	StateQ16 State = "q16"
	StateQ17 State = "q17"
	StateQ18 State = "q18"
	StateQ19 State = "q19"
	StateQ20 State = "q20"
	StateQ21 State = "q21"
	StateQ22 State = "q22"
)

// States lists every state in sequence order.
var States = []State{
	StateStart, StateSelectCategory,
	StateQ1, StateQ2, StateQ3, StateQ4, StateQ5, StateQ6, StateQ7, StateQ8,
	StateQ9, StateQ10, StateQ11, StateQ12, StateQ13, StateQ14, StateQ15,
	StateQ16, StateQ17, StateQ18, StateQ19, StateQ20, StateQ21, StateQ22,
}

// EventKind classifies an inbound event.
type EventKind string

const (
	EventStart     EventKind = "start"
	EventSelection EventKind = "selection"
	EventText      EventKind = "text"
	EventContact   EventKind = "contact"
	EventVoice     EventKind = "voice"
	EventVideo     EventKind = "video"
	EventVideoNote EventKind = "video_note"
	EventDocument  EventKind = "document"
)

// IsMedia reports whether the event carries an attachment handle.
func (k EventKind) IsMedia() bool {
	switch k {
	case EventVoice, EventVideo, EventVideoNote, EventDocument:
		return true
	}
	return false
}

// SelectionKind names the keyboard a structured selection came from.
type SelectionKind string

const (
	SelectionCategory     SelectionKind = "category"
	SelectionEducation    SelectionKind = "education"
	SelectionMarital      SelectionKind = "marital"
	SelectionRussianLevel SelectionKind = "russianLevel"
	SelectionConsent      SelectionKind = "consent"
)

// AnswerKind is the representation of a recorded answer.
type AnswerKind string

const (
	AnswerText   AnswerKind = "text"
	AnswerChoice AnswerKind = "choice"
	AnswerMedia  AnswerKind = "media"
)

// MediaKey identifies a prerecorded clip in the media reference store.
type MediaKey string

const (
	MediaStartVideo  MediaKey = "start_video"
	MediaVoicePrompt MediaKey = "q9_voice_prompt"
	MediaVideoPrompt MediaKey = "q11_video_prompt"
)

// MediaKeys lists the keys accepted by the media reference store.
var MediaKeys = []MediaKey{MediaStartVideo, MediaVoicePrompt, MediaVideoPrompt}

// ParseMediaKey validates a capture or lookup key.
func ParseMediaKey(s string) (MediaKey, error) {
	for _, k := range MediaKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownMediaKey
}

// KeyboardKind selects the input affordance attached to an outbound message.
type KeyboardKind string

const (
	KeyboardInline  KeyboardKind = "inline"
	KeyboardContact KeyboardKind = "contact"
	KeyboardRemove  KeyboardKind = "remove"
)

// ParseMode values understood by the messaging channel.
const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)
