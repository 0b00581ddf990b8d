// Package protocol defines the WebSocket message protocol between chat clients and the bot.
package protocol

import "github.com/xiaot623/anketa/internal/domain"

// Message types from client to bot
const (
	TypeHello     = "hello"
	TypeStart     = "start"
	TypeText      = "text"
	TypeSelect    = "select"
	TypeContact   = "contact"
	TypeVoice     = "voice"
	TypeVideo     = "video"
	TypeVideoNote = "video_note"
	TypeDocument  = "document"
)

// Message types from bot to client. TypeVoice and TypeVideo are used in
// both directions.
const (
	TypeHelloAck     = "hello_ack"
	TypeMessage      = "message"
	TypeSelectionAck = "selection_ack"
	TypeDelete       = "delete"
	TypeError        = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
}

// HelloMessage is sent by client to bind the connection to a user. Token
// is the user token issued for UserID.
type HelloMessage struct {
	BaseMessage
	UserID   string `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token"`
}

// HelloAckMessage is sent by the bot after a successful hello.
type HelloAckMessage struct {
	BaseMessage
	UserID string `json:"user_id"`
}

// TextMessage carries free text or a slash command.
type TextMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// SelectMessage is a keyboard button press.
type SelectMessage struct {
	BaseMessage
	SelectionID string `json:"selection_id"`
	Data        string `json:"data"`
	MessageID   string `json:"message_id,omitempty"`
}

// ContactMessage shares the client's phone number.
type ContactMessage struct {
	BaseMessage
	PhoneNumber string `json:"phone_number"`
}

// MediaMessage carries an attachment handle (voice, video, video_note, document).
type MediaMessage struct {
	BaseMessage
	FileID string `json:"file_id"`
}

// OutboundMessage is a text message from the bot.
type OutboundMessage struct {
	BaseMessage
	MessageID string           `json:"message_id"`
	Text      string           `json:"text"`
	ParseMode string           `json:"parse_mode,omitempty"`
	Keyboard  *domain.Keyboard `json:"keyboard,omitempty"`
}

// OutboundMediaMessage is a voice or video from the bot. Local files go
// out inline as base64 Data; remote handles as FileID.
type OutboundMediaMessage struct {
	BaseMessage
	MessageID string `json:"message_id"`
	FileID    string `json:"file_id,omitempty"`
	Data      string `json:"data,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

// SelectionAckMessage answers a button press.
type SelectionAckMessage struct {
	BaseMessage
	SelectionID string `json:"selection_id"`
	Text        string `json:"text,omitempty"`
	Alert       bool   `json:"alert,omitempty"`
}

// DeleteMessage removes a previously sent message.
type DeleteMessage struct {
	BaseMessage
	MessageID string `json:"message_id"`
}

// ErrorMessage is sent by the bot when an error occurs.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeUnauthorized   = "unauthorized"
	ErrorCodeHelloRequired  = "hello_required"
	ErrorCodeBusy           = "busy"
)
