package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ConversationLogger records chat transcripts.
type ConversationLogger interface {
	Log(event ConversationLogEvent)
	Close() error
}

// ConversationLogConfig controls NDJSON transcript logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// ConversationLogEvent is one transcript line.
type ConversationLogEvent struct {
	Timestamp      time.Time      `json:"ts"`
	ConversationID string         `json:"conversation_id"`
	Channel        string         `json:"channel"`
	Direction      string         `json:"direction"`
	EventType      string         `json:"event_type"`
	ContentRaw     string         `json:"content_raw"`
	Content        string         `json:"content"`
	Meta           map[string]any `json:"meta,omitempty"`
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

type fileConversationLogger struct {
	cfg    ConversationLogConfig
	logger *slog.Logger
	queue  chan ConversationLogEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	global *os.File
}

// NewConversationLogger creates a transcript logger. When logging is disabled
// it returns a logger that drops every event.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled {
		return noopConversationLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	l := &fileConversationLogger{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan ConversationLogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	if cfg.GlobalEnabled {
		if err := os.MkdirAll(filepath.Dir(cfg.GlobalPath), 0755); err != nil {
			return nil, fmt.Errorf("create global conversation log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.GlobalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open global conversation log: %w", err)
		}
		l.global = f
	}

	go l.run()
	return l, nil
}

// Log enqueues an event. Events are dropped when the queue is full.
func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Content == "" {
		event.Content = cleanForReadability(event.ContentRaw)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}

	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"conversation_id", event.ConversationID, "event_type", event.EventType)
	}
}

// Close drains the queue and closes open files.
func (l *fileConversationLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	if l.global != nil {
		if err := l.global.Close(); err != nil {
			return fmt.Errorf("close global conversation log: %w", err)
		}
	}
	return nil
}

func (l *fileConversationLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		line, err := json.Marshal(event)
		if err != nil {
			l.logger.Warn("failed to encode conversation log event", "error", err)
			continue
		}
		line = append(line, '\n')

		if err := l.appendToConversation(event.ConversationID, line); err != nil {
			l.logger.Warn("failed to write conversation log", "conversation_id", event.ConversationID, "error", err)
		}
		if l.global != nil {
			if _, err := l.global.Write(line); err != nil {
				l.logger.Warn("failed to write global conversation log", "error", err)
			}
		}
	}
}

func (l *fileConversationLogger) appendToConversation(conversationID string, line []byte) error {
	path := filepath.Join(l.cfg.Dir, safeFileName(conversationID)+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var (
	plainFileName   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// safeFileName keeps client-supplied conversation ids inside the log dir.
// Ids made only of [A-Za-z0-9_-] map to themselves; any other id gets a
// sanitized prefix plus a hash suffix after a '.', which no plain id contains,
// so distinct ids never share a file.
func safeFileName(id string) string {
	if plainFileName.MatchString(id) {
		return id
	}
	prefix := unsafeFileChars.ReplaceAllString(id, "_")
	if len(prefix) > 64 {
		prefix = prefix[:64]
	}
	sum := sha256.Sum256([]byte(id))
	return prefix + "." + hex.EncodeToString(sum[:8])
}

// cleanForReadability normalizes line endings and drops control characters
// other than newlines and tabs.
func cleanForReadability(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
