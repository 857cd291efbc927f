package llm

import (
	"context"
	"fmt"
	"time"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message
type Message struct {
	Role      string    `json:"role"`      // "system", "user", "assistant"
	Content   string    `json:"content"`   // The message content
	Timestamp time.Time `json:"timestamp"` // When the message was created
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}

// StreamChunk represents a chunk of streaming response
type StreamChunk struct {
	Content string
	Error   error
	Done    bool
}

// LLMAdapter defines the interface for LLM providers
type LLMAdapter interface {
	// Send sends messages and returns the complete response
	Send(ctx context.Context, messages []Message) (*Message, error)

	// Stream sends messages and streams the response via the provided channel.
	// Implementations close chunks before returning.
	Stream(ctx context.Context, messages []Message, chunks chan<- StreamChunk) error

	// GetModelName returns the current model name
	GetModelName() string

	// IsAvailable checks if the adapter is properly configured and available
	IsAvailable() bool
}

// AdapterConfig contains common configuration for LLM adapters
type AdapterConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration // zero means no timeout
}

// APIError is a non-success HTTP answer from a provider
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
