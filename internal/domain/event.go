package domain

import "strings"

// Selection is a decoded keyboard press.
type Selection struct {
	Kind  SelectionKind
	Value string
}

// legacy prefixes are still emitted by keyboards rendered before the rename.
var selectionPrefixes = map[string]SelectionKind{
	"category":     SelectionCategory,
	"job":          SelectionCategory,
	"education":    SelectionEducation,
	"edu":          SelectionEducation,
	"marital":      SelectionMarital,
	"russianLevel": SelectionRussianLevel,
	"rus":          SelectionRussianLevel,
	"consent":      SelectionConsent,
}

// ParseSelection decodes "kind|value" button data.
func ParseSelection(data string) (Selection, error) {
	prefix, value, ok := strings.Cut(data, "|")
	if !ok {
		return Selection{}, ErrInvalidSelection
	}
	kind, ok := selectionPrefixes[prefix]
	if !ok {
		return Selection{}, ErrInvalidSelection
	}
	return Selection{Kind: kind, Value: value}, nil
}

// Data encodes the selection as button callback data.
func (s Selection) Data() string {
	return string(s.Kind) + "|" + s.Value
}

// Event is one inbound message from the messaging channel.
type Event struct {
	Kind EventKind
	From User

	// Text carries the body of EventText.
	Text string
	// Phone carries the shared number of EventContact.
	Phone string
	// FileID is the opaque attachment handle of media events.
	FileID string

	Selection   Selection
	SelectionID string
	// MessageID is the message the pressed keyboard was attached to.
	MessageID MessageRef
}
