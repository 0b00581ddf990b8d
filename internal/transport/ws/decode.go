package ws

import (
	"encoding/json"
	"fmt"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/protocol"
)

var mediaKinds = map[string]domain.EventKind{
	protocol.TypeVoice:     domain.EventVoice,
	protocol.TypeVideo:     domain.EventVideo,
	protocol.TypeVideoNote: domain.EventVideoNote,
	protocol.TypeDocument:  domain.EventDocument,
}

// decodeEvent maps a client frame onto a domain event. Selection data is
// decoded here, once.
func decodeEvent(msgType string, data []byte) (domain.Event, error) {
	switch msgType {
	case protocol.TypeStart:
		return domain.Event{Kind: domain.EventStart}, nil

	case protocol.TypeText:
		var msg protocol.TextMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return domain.Event{}, fmt.Errorf("invalid text message")
		}
		return domain.Event{Kind: domain.EventText, Text: msg.Text}, nil

	case protocol.TypeSelect:
		var msg protocol.SelectMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return domain.Event{}, fmt.Errorf("invalid select message")
		}
		sel, err := domain.ParseSelection(msg.Data)
		if err != nil {
			return domain.Event{}, fmt.Errorf("invalid selection data %q", msg.Data)
		}
		return domain.Event{
			Kind:        domain.EventSelection,
			Selection:   sel,
			SelectionID: msg.SelectionID,
			MessageID:   domain.MessageRef(msg.MessageID),
		}, nil

	case protocol.TypeContact:
		var msg protocol.ContactMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return domain.Event{}, fmt.Errorf("invalid contact message")
		}
		return domain.Event{Kind: domain.EventContact, Phone: msg.PhoneNumber}, nil
	}

	if kind, ok := mediaKinds[msgType]; ok {
		var msg protocol.MediaMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return domain.Event{}, fmt.Errorf("invalid %s message", msgType)
		}
		return domain.Event{Kind: kind, FileID: msg.FileID}, nil
	}

	return domain.Event{}, fmt.Errorf("unknown message type: %s", msgType)
}
