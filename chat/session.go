package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"devai/llm"
	"devai/security"

	"github.com/google/uuid"
)

const transcriptExt = ".jsonl"

// Session holds the conversation for one CLI run. Messages are only ever
// appended; the backend always sees the full history.
type Session struct {
	id          string
	messages    []llm.Message
	historyFile string // empty disables the transcript
	redactor    *security.SecretDetector
}

// NewSession creates a session seeded with systemPrompt. When historyDir is
// non-empty every message is also appended to a JSONL transcript there.
func NewSession(systemPrompt, historyDir string) *Session {
	id := fmt.Sprintf("%s-%s", time.Now().Format("2006-01-02-150405"), uuid.NewString()[:8])

	s := &Session{
		id:       id,
		messages: make([]llm.Message, 0, 16),
		redactor: security.NewSecretDetector(),
	}
	if historyDir != "" {
		s.historyFile = filepath.Join(historyDir, id+transcriptExt)
	}
	if systemPrompt != "" {
		// The transcript is best effort; a failed write only loses history.
		_ = s.AddMessage(llm.NewMessage(llm.RoleSystem, systemPrompt))
	}
	return s
}

// ID returns the session identifier, which also names its transcript.
func (s *Session) ID() string {
	return s.id
}

// HistoryFile returns the transcript path, or "" when history is disabled.
func (s *Session) HistoryFile() string {
	return s.historyFile
}

// AddMessage appends a message and writes it to the transcript.
// The message is kept even when the transcript write fails.
func (s *Session) AddMessage(message llm.Message) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	s.messages = append(s.messages, message)

	if s.historyFile == "" {
		return nil
	}
	return s.saveToFile(message)
}

// AddUser appends a user message.
func (s *Session) AddUser(content string) error {
	return s.AddMessage(llm.NewMessage(llm.RoleUser, content))
}

// AddAssistant appends an assistant message.
func (s *Session) AddAssistant(content string) error {
	return s.AddMessage(llm.NewMessage(llm.RoleAssistant, content))
}

// GetMessages returns a copy of all messages in order.
func (s *Session) GetMessages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Session) Len() int {
	return len(s.messages)
}

// saveToFile appends a message to the history file. Credentials are
// redacted on disk only; the in-memory history keeps the original text.
func (s *Session) saveToFile(message llm.Message) error {
	// Ensure history directory exists
	historyDir := filepath.Dir(s.historyFile)
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	file, err := os.OpenFile(s.historyFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	message.Content, _ = s.redactor.Redact(message.Content)
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = file.Write(append(data, '\n'))
	return err
}

// ListSessions returns the transcript IDs in historyDir, newest first.
// A missing directory yields an empty list.
func ListSessions(historyDir string) ([]string, error) {
	files, err := os.ReadDir(historyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	sessions := []string{}
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), transcriptExt) {
			sessions = append(sessions, strings.TrimSuffix(file.Name(), transcriptExt))
		}
	}

	// IDs start with a timestamp, so name order is time order
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i] > sessions[j]
	})

	return sessions, nil
}

// LoadTranscript reads the messages of session id from historyDir.
// Lines that are not valid messages are skipped.
func LoadTranscript(historyDir, id string) ([]llm.Message, error) {
	path := filepath.Join(historyDir, id+transcriptExt)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, err
	}
	defer file.Close()

	var messages []llm.Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var message llm.Message
		if err := json.Unmarshal([]byte(line), &message); err != nil {
			continue // Skip invalid lines
		}
		messages = append(messages, message)
	}

	return messages, scanner.Err()
}
