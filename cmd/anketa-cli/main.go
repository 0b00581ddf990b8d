// Package main provides a terminal chat client for the anketa WebSocket channel.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	flag "github.com/spf13/pflag"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/protocol"
)

// Client represents a WebSocket client.
type Client struct {
	conn   *websocket.Conn
	userID string
	done   chan struct{}

	mu          sync.Mutex
	keyboard    *domain.Keyboard
	keyboardMsg string
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendHello binds the connection to a user and waits for hello_ack.
func (c *Client) SendHello(hello protocol.HelloMessage) error {
	hello.BaseMessage = base(protocol.TypeHello)
	if err := c.conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}

	var msg protocol.BaseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	if msg.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}
	if msg.Type != protocol.TypeHelloAck {
		return fmt.Errorf("expected hello_ack, got: %s", msg.Type)
	}

	var ack protocol.HelloAckMessage
	json.Unmarshal(data, &ack)
	c.userID = ack.UserID
	return nil
}

// Send writes one client frame.
func (c *Client) Send(frame interface{}) error {
	return c.conn.WriteJSON(frame)
}

// lastKeyboard returns the most recent inline keyboard and its message id.
func (c *Client) lastKeyboard() (*domain.Keyboard, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyboard, c.keyboardMsg
}

// ReadMessages reads and prints messages from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}
			c.print(data)
		}
	}
}

func (c *Client) print(data []byte) {
	var msg protocol.BaseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Unmarshal error: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeMessage:
		var out protocol.OutboundMessage
		json.Unmarshal(data, &out)
		fmt.Printf("\n%s\n", out.Text)
		if out.Keyboard != nil {
			c.remember(out.Keyboard, out.MessageID)
			fmt.Print(renderKeyboard(out.Keyboard))
		}

	case protocol.TypeVoice, protocol.TypeVideo:
		var out protocol.OutboundMediaMessage
		json.Unmarshal(data, &out)
		ref := out.FileID
		if ref == "" {
			ref = fmt.Sprintf("<%d bytes inline>", len(out.Data))
		}
		fmt.Printf("\n[%s] %s %s\n", msg.Type, ref, out.Caption)

	case protocol.TypeSelectionAck:
		var ack protocol.SelectionAckMessage
		json.Unmarshal(data, &ack)
		if ack.Text != "" {
			fmt.Printf("\n(%s)\n", ack.Text)
		}

	default:
		var pretty map[string]interface{}
		json.Unmarshal(data, &pretty)
		formatted, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Printf("\n[%s] Received:\n%s\n", msg.Type, string(formatted))
	}
}

func (c *Client) remember(kb *domain.Keyboard, messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kb.Kind {
	case domain.KeyboardInline:
		c.keyboard, c.keyboardMsg = kb, messageID
	case domain.KeyboardRemove:
		c.keyboard, c.keyboardMsg = nil, ""
	}
}

func renderKeyboard(kb *domain.Keyboard) string {
	var b strings.Builder
	n := 0
	for _, row := range kb.Rows {
		for _, btn := range row {
			n++
			fmt.Fprintf(&b, "  #%d %s\n", n, btn.Text)
		}
	}
	if kb.Kind == domain.KeyboardContact {
		b.WriteString("  (@contact <phone>)\n")
	}
	return b.String()
}

func base(msgType string) protocol.BaseMessage {
	return protocol.BaseMessage{Type: msgType, Ts: time.Now().UnixMilli()}
}

// parseInput turns one input line into a client frame. "#n" presses
// button n of kb; "@kind arg" sends a non-text frame; anything else is text.
func parseInput(line string, kb *domain.Keyboard, keyboardMsg string) (interface{}, error) {
	switch {
	case strings.HasPrefix(line, "#"):
		n, err := strconv.Atoi(strings.TrimPrefix(line, "#"))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid button %q", line)
		}
		if kb == nil {
			return nil, errors.New("no keyboard to press")
		}
		for _, row := range kb.Rows {
			for _, btn := range row {
				if n--; n == 0 {
					return protocol.SelectMessage{
						BaseMessage: base(protocol.TypeSelect),
						SelectionID: "sel_" + uuid.New().String()[:8],
						Data:        btn.Data,
						MessageID:   keyboardMsg,
					}, nil
				}
			}
		}
		return nil, fmt.Errorf("no button %s", line)

	case strings.HasPrefix(line, "@"):
		kind, arg, _ := strings.Cut(strings.TrimPrefix(line, "@"), " ")
		arg = strings.TrimSpace(arg)
		switch kind {
		case protocol.TypeStart:
			return base(protocol.TypeStart), nil
		case protocol.TypeContact:
			if arg == "" {
				return nil, errors.New("usage: @contact <phone>")
			}
			return protocol.ContactMessage{BaseMessage: base(protocol.TypeContact), PhoneNumber: arg}, nil
		case protocol.TypeVoice, protocol.TypeVideo, protocol.TypeVideoNote, protocol.TypeDocument:
			return protocol.MediaMessage{BaseMessage: base(kind), FileID: arg}, nil
		}
		return nil, fmt.Errorf("unknown frame @%s", kind)
	}

	return protocol.TextMessage{BaseMessage: base(protocol.TypeText), Text: line}, nil
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket server address")
	token := flag.String("token", "", "User token issued by POST /v1/tokens")
	userID := flag.String("user", "", "User id to bind the connection to")
	fullName := flag.String("name", "", "Display name")
	username := flag.String("username", "", "Username")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *userID == "" {
		log.Fatalf("--user is required")
	}

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if err := client.SendHello(protocol.HelloMessage{
		UserID:   *userID,
		FullName: *fullName,
		Username: *username,
		Token:    *token,
	}); err != nil {
		log.Fatalf("Hello failed: %v", err)
	}

	fmt.Printf("Connected as %s\n", client.userID)
	fmt.Println("\nType a message and press Enter to send.")
	fmt.Println("#n presses button n, @start @contact @voice @video @video_note @document send frames, /quit exits")

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if input == "/quit" {
				fmt.Println("Bye!")
				return
			}

			kb, msgID := client.lastKeyboard()
			frame, err := parseInput(input, kb, msgID)
			if err != nil {
				log.Printf("%v", err)
				continue
			}
			if err := client.Send(frame); err != nil {
				log.Printf("Send error: %v", err)
			}
		}
	}
}
