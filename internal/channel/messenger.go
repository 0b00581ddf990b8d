// Package channel delivers bot output to chat clients over the WebSocket hub.
package channel

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/protocol"
)

// Hub is the subset of the WebSocket hub the messenger needs.
type Hub interface {
	SendJSONToUser(userID domain.UserID, v interface{}) error
}

// HubMessenger implements domain.Messenger on top of the WebSocket hub.
type HubMessenger struct {
	hub Hub
	now func() time.Time
}

// NewHubMessenger creates a new HubMessenger.
func NewHubMessenger(h Hub) *HubMessenger {
	return &HubMessenger{hub: h, now: time.Now}
}

func (m *HubMessenger) base(msgType string) protocol.BaseMessage {
	return protocol.BaseMessage{Type: msgType, Ts: m.now().UnixMilli()}
}

// SendText sends a text message and returns its id.
func (m *HubMessenger) SendText(_ context.Context, to domain.UserID, text string, opts domain.SendOptions) (domain.MessageRef, error) {
	id := "msg_" + uuid.New().String()[:8]
	msg := protocol.OutboundMessage{
		BaseMessage: m.base(protocol.TypeMessage),
		MessageID:   id,
		Text:        text,
		ParseMode:   opts.ParseMode,
		Keyboard:    opts.Keyboard,
	}
	if err := m.hub.SendJSONToUser(to, msg); err != nil {
		return "", fmt.Errorf("send text to %s: %w", to, err)
	}
	return domain.MessageRef(id), nil
}

func (m *HubMessenger) SendVoice(ctx context.Context, to domain.UserID, ref, caption string) error {
	return m.sendMedia(ctx, protocol.TypeVoice, to, ref, caption)
}

func (m *HubMessenger) SendVideo(ctx context.Context, to domain.UserID, ref, caption string) error {
	return m.sendMedia(ctx, protocol.TypeVideo, to, ref, caption)
}

// sendMedia streams local files inline and passes other references through.
func (m *HubMessenger) sendMedia(_ context.Context, msgType string, to domain.UserID, ref, caption string) error {
	msg := protocol.OutboundMediaMessage{
		BaseMessage: m.base(msgType),
		MessageID:   "msg_" + uuid.New().String()[:8],
		Caption:     caption,
	}
	if IsLocalFile(ref) {
		data, err := os.ReadFile(ref)
		if err != nil {
			return fmt.Errorf("read media file: %w", err)
		}
		msg.Data = base64.StdEncoding.EncodeToString(data)
	} else {
		msg.FileID = ref
	}
	if err := m.hub.SendJSONToUser(to, msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", msgType, to, err)
	}
	return nil
}

func (m *HubMessenger) AnswerSelection(_ context.Context, to domain.UserID, selectionID, text string, alert bool) error {
	return m.hub.SendJSONToUser(to, protocol.SelectionAckMessage{
		BaseMessage: m.base(protocol.TypeSelectionAck),
		SelectionID: selectionID,
		Text:        text,
		Alert:       alert,
	})
}

func (m *HubMessenger) DeleteMessage(_ context.Context, to domain.UserID, ref domain.MessageRef) error {
	return m.hub.SendJSONToUser(to, protocol.DeleteMessage{
		BaseMessage: m.base(protocol.TypeDelete),
		MessageID:   string(ref),
	})
}

// IsLocalFile reports whether ref names an existing regular file.
func IsLocalFile(ref string) bool {
	if ref == "" {
		return false
	}
	info, err := os.Stat(ref)
	return err == nil && info.Mode().IsRegular()
}
