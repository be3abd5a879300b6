// Package notify defines user-facing notification types shared by the
// event bus and the TUI toast display.
package notify

import (
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	Level     Level
	Title     string
	Message   string
	CreatedAt time.Time
}

// Buffer keeps the most recent notifications in memory so the TUI can
// show a history after toasts expire.
type Buffer struct {
	mu      sync.Mutex
	max     int
	entries []Notification
}

// NewBuffer creates a buffer that retains up to max notifications.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 100
	}
	return &Buffer{max: max}
}

// Add appends a notification, evicting the oldest entry when full.
func (b *Buffer) Add(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	b.entries = append(b.entries, n)
	if len(b.entries) > b.max {
		b.entries = b.entries[len(b.entries)-b.max:]
	}
}

// All returns the buffered notifications in chronological order.
func (b *Buffer) All() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.entries))
	copy(out, b.entries)
	return out
}

// Clear drops all buffered notifications.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}
