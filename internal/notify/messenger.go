package notify

import (
	"context"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// ButtonStyle mirrors the platform button styles without importing the
// platform package into the core.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSuccess
	ButtonDanger
)

// Button is an interactive component attached to an alert message.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// Message is the platform-agnostic payload of an outbound alert.
type Message struct {
	Content string
	Buttons []Button
}

// Messenger is the chat-platform boundary consumed by the core.
// Implementations must treat Delete as best-effort and report Exists
// errors distinctly from "message is gone".
type Messenger interface {
	Send(ctx context.Context, channelID string, msg Message) (domain.MessageRef, error)
	Exists(ctx context.Context, ref domain.MessageRef) (bool, error)
	Delete(ctx context.Context, ref domain.MessageRef) error
}
